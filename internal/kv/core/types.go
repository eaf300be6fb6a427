// Package core defines the persistent key-value contract shared by all
// garagecore storage backends.
package core

import (
	"context"
	"errors"
)

// Driver identifies a concrete key-value backend implementation.
type Driver string

const (
	DriverMemory     Driver = "memory"   // in-memory (tests / ephemeral)
	DriverFilesystem Driver = "fs"       // local filesystem, one file per key
	DriverSQLite     Driver = "sqlite"   // embedded sqlite file (default)
	DriverPostgres   Driver = "postgres" // PostgreSQL server
	DriverRedis      Driver = "redis"    // Redis server
)

// ErrNotFound is returned by Get for an absent key.
var ErrNotFound = errors.New("kv: key not found")

// ErrQuotaExceeded is returned by Set when the backend rejects a write
// because it is out of space. Each backend maps its native "storage full"
// condition onto this sentinel so callers can match with errors.Is.
var ErrQuotaExceeded = errors.New("kv: storage quota exceeded")

// Store is a minimal persistent key-value abstraction: one key holds one
// opaque blob. Writes either fully replace the value or fail.
type Store interface {
	// Get retrieves the blob stored at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value at key, replacing any previous blob. Returns
	// ErrQuotaExceeded (possibly wrapped) when the backend is full.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Driver returns the configured backend driver.
	Driver() Driver
}
