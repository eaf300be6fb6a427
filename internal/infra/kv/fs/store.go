// Package fs provides a filesystem-backed key-value store. Keys map to
// relative file paths under a root directory; writes go through a temp file
// and rename so a partial write never replaces a good blob.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"garagecore/internal/kv/core"
)

// Store implements core.Store on the local filesystem.
type Store struct {
	root  string
	limit int64
}

// New returns a filesystem store rooted at path, creating it if needed.
func New(root string) (*Store, error) { return NewWithLimit(root, 0) }

// NewWithLimit returns a store that rejects writes once the total bytes under
// the root would exceed limit. A non-positive limit disables the cap; ENOSPC
// from the operating system is always mapped to the quota sentinel.
func NewWithLimit(root string, limit int64) (*Store, error) {
	if root == "" {
		root = "./kvdata"
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, err
	}
	return &Store{root: root, limit: limit}, nil
}

// Driver returns the filesystem driver tag.
func (s *Store) Driver() core.Driver { return core.DriverFilesystem }

// sanitizeKey forbids traversal and absolute paths so keys stay under root.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key contains '..'")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key")
	}
	return filepath.ToSlash(filepath.Clean(key)), nil
}

func (s *Store) pathFor(key string) (string, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, k), nil
}

// Get retrieves the blob stored at key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set writes the blob through a temp file and renames it into place.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if s.limit > 0 {
		used, err := s.usageExcept(path)
		if err != nil {
			return err
		}
		if used+int64(len(value)) > s.limit {
			return fmt.Errorf("write of %d bytes over %d byte limit: %w", len(value), s.limit, core.ErrQuotaExceeded)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return mapWriteErr(err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return mapWriteErr(err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return mapWriteErr(err)
	}
	if err := tmp.Close(); err != nil {
		return mapWriteErr(err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

// Delete removes the key's file if present.
func (s *Store) Delete(_ context.Context, key string) error {
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// usageExcept sums the sizes of stored files, skipping the path about to be replaced.
func (s *Store) usageExcept(skip string) (int64, error) {
	var total int64
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path == skip {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}

// mapWriteErr converts an out-of-space OS error into the quota sentinel.
func mapWriteErr(err error) error {
	if errors.Is(err, syscall.ENOSPC) {
		return fmt.Errorf("%v: %w", err, core.ErrQuotaExceeded)
	}
	return err
}
