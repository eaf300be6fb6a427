// Package kv re-exports the key-value contract and selects a backend from
// the environment.
package kv

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"garagecore/internal/infra/kv/fs"
	"garagecore/internal/infra/kv/memory"
	"garagecore/internal/infra/kv/postgres"
	"garagecore/internal/infra/kv/redis"
	"garagecore/internal/infra/kv/sqlite"
	"garagecore/internal/kv/core"
)

type (
	// Driver identifies a key-value backend driver.
	Driver = core.Driver
	// Store is the interface for key-value backends.
	Store = core.Store
)

const (
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverSQLite is the embedded sqlite driver.
	DriverSQLite = core.DriverSQLite
	// DriverPostgres is the PostgreSQL driver.
	DriverPostgres = core.DriverPostgres
	// DriverRedis is the Redis driver.
	DriverRedis = core.DriverRedis
)

// ErrNotFound indicates an absent key.
var ErrNotFound = core.ErrNotFound

// ErrQuotaExceeded indicates a write rejected because the backend is full.
var ErrQuotaExceeded = core.ErrQuotaExceeded

// NewMemory returns an in-memory store suitable for tests.
func NewMemory() Store { return memory.New() }

// NewMemoryWithLimit returns an in-memory store that enforces a byte budget.
func NewMemoryWithLimit(limit int) Store { return memory.NewWithLimit(limit) }

// Open selects a kv.Store implementation using environment variables.
//
//	GARAGECORE_KV_DRIVER: memory|fs|sqlite|postgres|redis (default sqlite)
//	GARAGECORE_KV_FS_ROOT: directory root when driver=fs (default ./kvdata)
//	GARAGECORE_KV_SQLITE_PATH: path to sqlite file (default ./garagecore.db)
//	GARAGECORE_KV_POSTGRES_DSN: postgres DSN when driver=postgres
//	GARAGECORE_KV_REDIS_URL: redis URL when driver=redis
//	GARAGECORE_KV_MEMORY_LIMIT_BYTES: optional byte cap when driver=memory
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("GARAGECORE_KV_DRIVER")
	if driver == "" {
		driver = string(DriverSQLite)
	}
	switch Driver(driver) {
	case DriverMemory:
		if raw := os.Getenv("GARAGECORE_KV_MEMORY_LIMIT_BYTES"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("parse memory limit: %w", err)
			}
			return memory.NewWithLimit(limit), nil
		}
		return memory.New(), nil
	case DriverFilesystem:
		return fs.New(os.Getenv("GARAGECORE_KV_FS_ROOT"))
	case DriverSQLite:
		return sqlite.New(os.Getenv("GARAGECORE_KV_SQLITE_PATH"))
	case DriverPostgres:
		return postgres.New(ctx, os.Getenv("GARAGECORE_KV_POSTGRES_DSN"))
	case DriverRedis:
		return redis.New(ctx, os.Getenv("GARAGECORE_KV_REDIS_URL"))
	default:
		return nil, fmt.Errorf("unknown kv driver %s", driver)
	}
}
