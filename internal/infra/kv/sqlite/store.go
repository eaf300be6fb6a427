// Package sqlite provides a key-value store persisted to a single SQLite
// table, using the pure Go driver so no cgo toolchain is required.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"garagecore/internal/kv/core"
)

// Store implements core.Store over a state table keyed by text.
type Store struct {
	db   *sql.DB
	path string
}

// New opens (or creates) the SQLite file at path and ensures the state table exists.
func New(path string) (*Store, error) {
	if path == "" {
		path = "garagecore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		key TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Driver returns the sqlite driver tag.
func (s *Store) Driver() core.Driver { return core.DriverSQLite }

// Get retrieves the blob stored at key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select state: %w", err)
	}
	return payload, nil
}

// Set upserts the blob at key, mapping SQLITE_FULL onto the quota sentinel.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO state(key,payload) VALUES(?,?) ON CONFLICT(key) DO UPDATE SET payload=excluded.payload`,
		key, value)
	if err != nil {
		if isFull(err) {
			return fmt.Errorf("upsert %s: %v: %w", key, err, core.ErrQuotaExceeded)
		}
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// Delete removes the key's row if present.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// isFull detects SQLITE_FULL, which modernc surfaces by message.
func isFull(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_FULL") || strings.Contains(msg, "database or disk is full")
}
