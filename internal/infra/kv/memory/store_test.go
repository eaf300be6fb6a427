package memory

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"garagecore/internal/kv/core"
)

func TestGetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || !bytes.Equal(got, []byte("v1")) {
		t.Fatalf("get = %q, %v", got, err)
	}

	// Stored bytes must not alias caller slices.
	got[0] = 'X'
	again, _ := s.Get(ctx, "k")
	if !bytes.Equal(again, []byte("v1")) {
		t.Fatalf("stored value mutated: %q", again)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete of absent key must be a no-op, got %v", err)
	}
}

func TestByteBudget(t *testing.T) {
	ctx := context.Background()
	s := NewWithLimit(10)

	if err := s.Set(ctx, "a", []byte("12345")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "b", []byte("123456")); !errors.Is(err, core.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
	// Overwriting a key only counts the delta.
	if err := s.Set(ctx, "a", []byte("1234567890")); err != nil {
		t.Fatalf("overwrite within budget: %v", err)
	}
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Set(ctx, "b", []byte("123456")); err != nil {
		t.Fatalf("set after delete must fit again: %v", err)
	}
	if s.Driver() != core.DriverMemory {
		t.Fatalf("driver = %q", s.Driver())
	}
}
