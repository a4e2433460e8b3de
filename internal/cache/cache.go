// Package cache provides a small time-expiring key-value store used for
// whole-page caching. Two backends exist: Redis for deployments that run
// one, and an in-process map for everything else. Entries expire by TTL
// only; writers never invalidate, so readers may observe stale values for
// up to one TTL window.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key is absent or expired.
var ErrCacheMiss = errors.New("cache: key not found")

// Store is a TTL key-value store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
