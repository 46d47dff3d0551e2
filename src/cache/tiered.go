package cache

import (
	"context"
	"time"
)

// Tiered puts a per-process cache (L1) in front of a shared one (L2) so that
// every API instance sees a breed list fetched by any of them.
//
// L2 is best effort: a failing L2 read counts as a miss and the caller falls
// through to its own source. L1 entries never outlive l1TTL, which bounds how
// long an instance can serve a value that was replaced or deleted in L2.
type Tiered struct {
	local  Cache
	shared Cache
	l1TTL  time.Duration
}

func NewTiered(local, shared Cache, l1TTL time.Duration) *Tiered {
	return &Tiered{local: local, shared: shared, l1TTL: l1TTL}
}

func (c *Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if val, ok, err := c.local.Get(ctx, key); err == nil && ok {
		return val, true, nil
	}

	val, ok, err := c.shared.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, nil
	}
	_ = c.local.Set(ctx, key, val, c.l1TTL)
	return val, true, nil
}

// Set stores value in both tiers. The L1 copy expires after the shorter of
// ttl and l1TTL. An L2 error is returned after L1 has been written.
func (c *Tiered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	localTTL := c.l1TTL
	if ttl > 0 && (localTTL <= 0 || ttl < localTTL) {
		localTTL = ttl
	}
	if err := c.local.Set(ctx, key, value, localTTL); err != nil {
		return err
	}
	return c.shared.Set(ctx, key, value, ttl)
}

func (c *Tiered) Delete(ctx context.Context, key string) error {
	localErr := c.local.Delete(ctx, key)
	if err := c.shared.Delete(ctx, key); err != nil {
		return err
	}
	return localErr
}
