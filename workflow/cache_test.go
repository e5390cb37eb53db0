package workflow

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type stubCache struct {
	store map[string]any
}

func newStubCache() *stubCache { return &stubCache{store: map[string]any{}} }

func (c *stubCache) Get(_ context.Context, key string) (any, error) {
	if v, ok := c.store[key]; ok {
		return v, nil
	}
	return nil, ErrCacheMiss
}

func (c *stubCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.store[key] = value
	return nil
}

func (c *stubCache) Stats() CacheStats { return CacheStats{Entries: len(c.store)} }

func TestCachedFillsOnMiss(t *testing.T) {
	w := NewWorkflow("w", nil)
	w.cache = newStubCache()

	var calls int32
	body := func() (int, error) {
		atomic.AddInt32(&calls, 1)
		return 99, nil
	}

	v1, err := Cached(w, w, "key", time.Minute, StepOptions{Name: "fetch"}, body)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	v2, err := Cached(w, w, "key", time.Minute, StepOptions{Name: "fetch"}, body)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if v1 != 99 || v2 != 99 {
		t.Errorf("v1=%d v2=%d, want 99 both", v1, v2)
	}
	if calls != 1 {
		t.Errorf("body called %d times, want 1 (second call should hit cache)", calls)
	}
}

func TestCachedWithoutCacheAlwaysCallsBody(t *testing.T) {
	w := NewWorkflow("w", nil)

	var calls int32
	body := func() (int, error) {
		atomic.AddInt32(&calls, 1)
		return 1, nil
	}

	if _, err := Cached(w, w, "key", time.Minute, StepOptions{}, body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := Cached(w, w, "key", time.Minute, StepOptions{}, body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("body called %d times, want 2 (no cache configured)", calls)
	}
}
