// Package cache is a timestamped file-per-key response cache. Entries expire
// by age on read; nothing evicts stale files beyond overwriting on the next
// refresh.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"time"
)

var ErrMiss = errors.New("cache miss")

type FileCache struct {
	dir string
	ttl time.Duration
}

func New(dir string, ttl time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, ttl: ttl}, nil
}

// Get returns the cached payload for key, or ErrMiss if absent or older than
// the TTL.
func (fc *FileCache) Get(key string) ([]byte, error) {
	path := fc.path(key)

	info, err := os.Stat(path)
	if err != nil {
		return nil, ErrMiss
	}
	if time.Since(info.ModTime()) > fc.ttl {
		return nil, ErrMiss
	}
	return os.ReadFile(path)
}

// Put writes the payload for key. The write is atomic (temp file + rename) so
// a concurrent Get never sees a partial entry.
func (fc *FileCache) Put(key string, payload []byte) error {
	path := fc.path(key)

	tmp, err := os.CreateTemp(fc.dir, "entry-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (fc *FileCache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(fc.dir, hex.EncodeToString(sum[:16])+".cache")
}
