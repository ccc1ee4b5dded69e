package cache

import (
	"context"
	"time"
)

// Loader computes the value for a missing key.
type Loader[K comparable, V any] func(ctx context.Context, key K) (V, error)

// LoadingCache is a bounded key-value cache filled on demand.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use, and must
//     collapse concurrent loads of the same missing key into one loader call.
//   - Errors: loader errors propagate to the caller and are never cached.
//   - Eviction: entries may disappear at any time; a miss is always safe.
type LoadingCache[K comparable, V any] interface {
	// Get returns the cached value for key, invoking load to fill a miss.
	Get(ctx context.Context, key K, load Loader[K, V]) (V, error)

	// GetIfPresent returns the cached value without loading.
	GetIfPresent(key K) (V, bool)

	// Put stores a value, overwriting any existing entry for key.
	Put(key K, value V)

	// Len returns the number of currently stored entries.
	Len() int

	// Purge discards all entries.
	Purge()
}

// Spec bounds a loading cache. The zero value is an unbounded, non-expiring
// cache. Spec is comparable; a lookup's identity includes its cache specs.
type Spec struct {
	// MaximumSize is the entry count above which least-recently-used
	// entries are evicted. Zero or negative means unbounded.
	MaximumSize int64

	// ExpireAfterAccess evicts entries unread for this duration.
	// Zero or negative means entries never expire.
	ExpireAfterAccess time.Duration
}
