// Package cache stores opaque byte payloads with a time-to-live.
//
// Backends:
//   - [NullCache]: never stores anything; the default
//   - [FileCache]: JSON envelopes under a directory, for CLI use
//   - [RedisCache]: a shared redis instance, for multi-instance servers
//
// Callers namespace keys with [Scoped] so different payload types never
// collide:
//
//	templates := cache.Scoped(c, "template:")
//	templates.Set(ctx, "42", body, time.Hour)
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/motorrutas/pkg/observability"
)

// Cache is implemented by every backend.
type Cache interface {
	// Get returns the payload for key. A miss is (nil, false, nil);
	// expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Scoped returns a view of c that prefixes every key with prefix and
// reports hits, misses and writes to the cache hooks under that prefix.
func Scoped(c Cache, prefix string) Cache {
	return &scoped{inner: c, prefix: prefix}
}

type scoped struct {
	inner  Cache
	prefix string
}

func (s *scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := s.inner.Get(ctx, s.prefix+key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, s.prefix)
		} else {
			observability.Cache().OnCacheMiss(ctx, s.prefix)
		}
	}
	return data, ok, err
}

func (s *scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := s.inner.Set(ctx, s.prefix+key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, s.prefix, len(data))
	return nil
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

func (s *scoped) Close() error { return s.inner.Close() }
