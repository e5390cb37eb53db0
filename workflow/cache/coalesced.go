package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/groundswell-dev/groundswell/workflow"
)

// Coalesced wraps a workflow.Cache so that overlapping Get calls for the
// same key share a single underlying Get, and overlapping Set calls for the
// same key share a single underlying Set (the value of the call that started
// it is the one written). It coalesces only these cache calls: callers of
// workflow.Cached that all miss still each run their own body.
type Coalesced struct {
	inner workflow.Cache
	group singleflight.Group
}

// NewCoalesced wraps inner with singleflight request coalescing.
func NewCoalesced(inner workflow.Cache) *Coalesced {
	return &Coalesced{inner: inner}
}

func (c *Coalesced) Get(ctx context.Context, key string) (any, error) {
	v, err, _ := c.group.Do("get:"+key, func() (any, error) {
		return c.inner.Get(ctx, key)
	})
	return v, err
}

func (c *Coalesced) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	_, err, _ := c.group.Do("set:"+key, func() (any, error) {
		return nil, c.inner.Set(ctx, key, value, ttl)
	})
	return err
}

func (c *Coalesced) Stats() workflow.CacheStats { return c.inner.Stats() }

var _ workflow.Cache = (*Coalesced)(nil)
