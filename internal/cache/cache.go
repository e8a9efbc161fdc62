package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key is not found in the cache
var ErrCacheMiss = errors.New("cache miss")

// Cache stores rendered pages and feeds
type Cache interface {
	// Get retrieves a value, ErrCacheMiss when it is absent
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given expiration
	// If ttl is 0, the value will not be cached
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Close releases any resources used by the cache
	Close() error
}
