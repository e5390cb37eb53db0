package workflow

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Cache.Get when key is not present.
var ErrCacheMiss = errors.New("workflow: cache miss")

// CacheStats reports point-in-time counters for a Cache (spec.md §12).
type CacheStats struct {
	Entries int
	Hits    int64
	Misses  int64
}

// Cache is the contract a cache-aware step depends on. Only this interface
// is core to the workflow package; concrete backends (in-memory, SQLite,
// MySQL, singleflight-coalesced) are reference implementations living in
// the separate workflow/cache package, mirroring how the teacher's graph
// package depends only on store.Store[S] while concrete stores live in
// graph/store.
type Cache interface {
	// Get returns the cached value for key, or ErrCacheMiss if absent or
	// expired.
	Get(ctx context.Context, key string) (any, error)

	// Set stores value under key with the given time-to-live. A zero ttl
	// means "never expires".
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Stats reports current cache counters.
	Stats() CacheStats
}

// Cached runs body under w, instrumented as a Step, but first checks cache
// for key; on a hit whose value has type T it returns that value without
// calling body. A cached value of any other type (for example a number a
// JSON-backed cache decoded as float64 when T is int) is treated as a miss.
// On a miss, body's result is stored into cache with the given ttl before
// being returned (spec.md §12, "cache-aware execution"). Cached does not
// coalesce concurrent callers: every caller that misses runs body, even when
// the Cache is wrapped with the coalescing decorator in workflow/cache.
func Cached[T any](w *Workflow, self any, key string, ttl time.Duration, opts StepOptions, body func() (T, error)) (T, error) {
	return Step(w, self, opts, func() (T, error) {
		var zero T
		if w.cache == nil {
			return body()
		}

		if v, err := w.cache.Get(context.Background(), key); err == nil {
			if typed, ok := v.(T); ok {
				return typed, nil
			}
		}

		value, err := body()
		if err != nil {
			return zero, err
		}
		_ = w.cache.Set(context.Background(), key, value, ttl)
		return value, nil
	})
}
