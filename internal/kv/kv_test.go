package kv

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestOpenMemoryDriver(t *testing.T) {
	t.Setenv("GARAGECORE_KV_DRIVER", "memory")
	s, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.Driver() != DriverMemory {
		t.Fatalf("driver = %q", s.Driver())
	}
}

func TestOpenMemoryDriverWithLimit(t *testing.T) {
	ctx := context.Background()
	t.Setenv("GARAGECORE_KV_DRIVER", "memory")
	t.Setenv("GARAGECORE_KV_MEMORY_LIMIT_BYTES", "4")
	s, err := Open(ctx)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set(ctx, "k", []byte("12345")); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}

	t.Setenv("GARAGECORE_KV_MEMORY_LIMIT_BYTES", "not a number")
	if _, err := Open(ctx); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestOpenFilesystemDriver(t *testing.T) {
	t.Setenv("GARAGECORE_KV_DRIVER", "fs")
	t.Setenv("GARAGECORE_KV_FS_ROOT", t.TempDir())
	s, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.Driver() != DriverFilesystem {
		t.Fatalf("driver = %q", s.Driver())
	}
}

func TestOpenSQLiteDriverDefault(t *testing.T) {
	t.Setenv("GARAGECORE_KV_DRIVER", "")
	t.Setenv("GARAGECORE_KV_SQLITE_PATH", filepath.Join(t.TempDir(), "state.db"))
	s, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.Driver() != DriverSQLite {
		t.Fatalf("default driver = %q", s.Driver())
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Setenv("GARAGECORE_KV_DRIVER", "carrier-pigeon")
	if _, err := Open(context.Background()); err == nil {
		t.Fatal("expected unknown driver error")
	}
}
