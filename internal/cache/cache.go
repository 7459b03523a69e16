package cache

import (
	"context"
	"time"
)

// Store is a byte-oriented TTL cache.
type Store interface {
	// Get returns found=false on a miss or an expired entry.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}
