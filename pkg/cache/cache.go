// Package cache provides byte-level caches for registry responses.
//
// Fetching package metadata is a single uncached request by default. A
// [Cache] can be attached to the PyPI client when a caller looks up many
// packages or repeats lookups across runs:
//
//   - [FileCache]: entries persisted under the user cache directory
//   - [MemoryCache]: bounded in-process LRU with expiry
//   - [NullCache]: stores nothing
//
// Cache events are reported to [observability.Cache] hooks.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads under string keys.
type Cache interface {
	// Get returns the payload for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
