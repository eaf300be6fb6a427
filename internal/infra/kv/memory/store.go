// Package memory provides an in-memory key-value store with an optional
// byte budget, used for tests and ephemeral sessions.
package memory

import (
	"context"
	"fmt"
	"sync"

	"garagecore/internal/kv/core"
)

// Store implements core.Store over a map. A positive limit caps the total
// stored bytes so quota failure paths can be exercised deterministically.
type Store struct {
	mu    sync.RWMutex
	data  map[string][]byte
	used  int
	limit int
}

// New returns an unbounded in-memory store.
func New() *Store { return NewWithLimit(0) }

// NewWithLimit returns a store rejecting writes once total stored bytes would
// exceed limit. A non-positive limit means unbounded.
func NewWithLimit(limit int) *Store {
	return &Store{data: make(map[string][]byte), limit: limit}
}

// Driver returns the memory driver tag.
func (s *Store) Driver() core.Driver { return core.DriverMemory }

// Get retrieves a stored blob.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[key]
	if !ok {
		return nil, core.ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set replaces the blob at key, enforcing the byte budget.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.used - len(s.data[key]) + len(value)
	if s.limit > 0 && next > s.limit {
		return fmt.Errorf("write of %d bytes over %d byte limit: %w", len(value), s.limit, core.ErrQuotaExceeded)
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[key] = cp
	s.used = next
	return nil
}

// Delete removes the key if present.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.used -= len(s.data[key])
	delete(s.data, key)
	return nil
}
