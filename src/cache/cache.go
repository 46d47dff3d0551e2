// Package cache provides the byte-oriented caches used by the service: an
// in-process tier backed by ristretto, a Redis tier, and a two-level
// combination of both.
package cache

import (
	"context"
	"time"
)

// Cache is a TTL key/value store. Get reports ok=false on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
