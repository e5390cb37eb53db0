package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/groundswell-dev/groundswell/workflow"
)

func TestMemCacheGetSetAndMiss(t *testing.T) {
	c := NewMemCache()
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, workflow.ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}

	if err := c.Set(ctx, "key", "value", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != "value" {
		t.Errorf("Get = %v, want value", v)
	}

	stats := c.Stats()
	if stats.Entries != 1 || stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want Entries=1 Hits=1 Misses=1", stats)
	}
}

func TestMemCacheExpires(t *testing.T) {
	c := NewMemCache()
	ctx := context.Background()

	if err := c.Set(ctx, "key", "value", time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(time.Millisecond)

	if _, err := c.Get(ctx, "key"); !errors.Is(err, workflow.ErrCacheMiss) {
		t.Errorf("expected expired entry to miss, got %v", err)
	}
}

func TestSQLiteCacheRoundTrip(t *testing.T) {
	c, err := NewSQLiteCache(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteCache: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "key", map[string]any{"n": float64(1)}, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	m, ok := v.(map[string]any)
	if !ok || m["n"] != float64(1) {
		t.Errorf("Get = %v, want map[n:1]", v)
	}
}
