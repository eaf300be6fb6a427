// Package redis provides a key-value store backed by a Redis server. A Redis
// instance running with maxmemory answers writes with an OOM reply, which
// this adapter maps onto the shared quota sentinel.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"garagecore/internal/kv/core"
)

// Store implements core.Store over a Redis client.
type Store struct {
	rdb *redis.Client
}

// New connects to the Redis instance described by url (redis://...) and
// verifies the connection with a ping.
func New(ctx context.Context, url string) (*Store, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Store{rdb: rdb}, nil
}

// Driver returns the redis driver tag.
func (s *Store) Driver() core.Driver { return core.DriverRedis }

// Get retrieves the blob stored at key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return data, nil
}

// Set stores the blob at key without expiry, mapping OOM replies onto the
// quota sentinel.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		if strings.HasPrefix(err.Error(), "OOM") {
			return fmt.Errorf("set %s: %v: %w", key, err, core.ErrQuotaExceeded)
		}
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes the key if present.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// Close releases the client's connection pool.
func (s *Store) Close() error { return s.rdb.Close() }
