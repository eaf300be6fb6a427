package sqlite

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"garagecore/internal/kv/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	value := []byte(`{"fleet":true}`)
	if err := s.Set(ctx, "garagecore/fleet/v1", value); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := s.Get(ctx, "garagecore/fleet/v1")
	if err != nil || !bytes.Equal(got, value) {
		t.Fatalf("get = %q, %v", got, err)
	}

	// Upsert semantics on the same key.
	if err := s.Set(ctx, "garagecore/fleet/v1", []byte("{}")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, _ = s.Get(ctx, "garagecore/fleet/v1")
	if !bytes.Equal(got, []byte("{}")) {
		t.Fatalf("upsert lost: %q", got)
	}

	if err := s.Delete(ctx, "garagecore/fleet/v1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "garagecore/fleet/v1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if s.Driver() != core.DriverSQLite {
		t.Fatalf("driver = %q", s.Driver())
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := New(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Get(ctx, "k")
	if err != nil || !bytes.Equal(got, []byte("v")) {
		t.Fatalf("get after reopen = %q, %v", got, err)
	}
}

func TestIsFullDetection(t *testing.T) {
	if !isFull(errors.New("database or disk is full (13)")) {
		t.Fatal("expected disk-full message to map to quota")
	}
	if !isFull(errors.New("SQLITE_FULL: insert failed")) {
		t.Fatal("expected SQLITE_FULL to map to quota")
	}
	if isFull(errors.New("syntax error")) {
		t.Fatal("unrelated errors must not map to quota")
	}
	if isFull(nil) {
		t.Fatal("nil is not a quota condition")
	}
}
