package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileCache keeps one JSON envelope per key under a directory. Filenames
// are SHA-256 digests of the key, fanned out by their first two hex digits.
type FileCache struct {
	dir string
	now func() time.Time
}

type envelope struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// NewFileCache creates dir if needed and returns a cache rooted there.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// Get implements [Cache]. Corrupt and expired entries are removed and
// reported as misses.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if !env.ExpiresAt.IsZero() && c.now().After(env.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return env.Data, true, nil
}

// Set implements [Cache]. The entry is written to a temporary file and
// renamed into place so readers never see a partial write.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	env := envelope{Data: data}
	if ttl > 0 {
		env.ExpiresAt = c.now().Add(ttl)
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
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

// Delete implements [Cache].
func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close does nothing for the file cache.
func (c *FileCache) Close() error { return nil }

// Clear removes every entry and returns how many were deleted.
func (c *FileCache) Clear() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	count := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		files, _ := filepath.Glob(filepath.Join(c.dir, e.Name(), "*.json"))
		count += len(files)
		if err := os.RemoveAll(filepath.Join(c.dir, e.Name())); err != nil {
			return count, err
		}
	}
	return count, nil
}

func (c *FileCache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	h := hex.EncodeToString(sum[:])
	return filepath.Join(c.dir, h[:2], h[2:]+".json")
}

var _ Cache = (*FileCache)(nil)
