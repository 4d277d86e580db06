package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/matzehuels/pipoke/pkg/observability"
)

// MemoryCache is a bounded in-process cache. Least recently used entries are
// evicted once size is reached; every entry expires after the cache-wide TTL
// given to [NewMemoryCache].
type MemoryCache struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemoryCache creates a cache holding at most size entries, each living
// for at most ttl (0 disables expiry).
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = 256
	}
	return &MemoryCache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok := c.lru.Get(key)
	if ok {
		observability.Cache().OnCacheHit(ctx, "memory")
	} else {
		observability.Cache().OnCacheMiss(ctx, "memory")
	}
	return data, ok, nil
}

// Set stores a value. The per-call ttl is ignored in favour of the
// cache-wide TTL.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.lru.Add(key, data)
	observability.Cache().OnCacheSet(ctx, "memory", len(data))
	return nil
}

// Delete removes a value.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// Len returns the number of live entries.
func (c *MemoryCache) Len() int { return c.lru.Len() }

// Close purges all entries.
func (c *MemoryCache) Close() error {
	c.lru.Purge()
	return nil
}

var _ Cache = (*MemoryCache)(nil)
