// Package cache provides reference implementations of workflow.Cache.
//
// Only the workflow.Cache contract is core to the engine; these backends
// (in-memory, SQLite, MySQL, a singleflight-coalescing decorator) are
// collaborators a caller wires in at construction time via
// workflow.WithCache, mirroring how the teacher repo's graph package
// depends only on store.Store[S] while concrete backends live in the
// separate graph/store package.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/groundswell-dev/groundswell/workflow"
)

// MemCache is an in-memory workflow.Cache (grounded on the teacher's
// store.MemStore). Suitable for tests, development, and single-process
// workflows; data does not survive process restart.
type MemCache struct {
	mu      sync.RWMutex
	entries map[string]memEntry
	hits    int64
	misses  int64
}

type memEntry struct {
	value    any
	expireAt time.Time // zero means never
}

// NewMemCache returns an empty MemCache.
func NewMemCache() *MemCache {
	return &MemCache{entries: make(map[string]memEntry)}
}

func (c *MemCache) Get(_ context.Context, key string) (any, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || (!e.expireAt.IsZero() && time.Now().After(e.expireAt)) {
		c.mu.Lock()
		c.misses++
		c.mu.Unlock()
		return nil, workflow.ErrCacheMiss
	}
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
	return e.value, nil
}

func (c *MemCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	var expireAt time.Time
	if ttl > 0 {
		expireAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memEntry{value: value, expireAt: expireAt}
	return nil
}

func (c *MemCache) Stats() workflow.CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return workflow.CacheStats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}

var _ workflow.Cache = (*MemCache)(nil)
