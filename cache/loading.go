package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loading is the in-memory LoadingCache implementation: a map for O(1) key
// lookup plus a doubly-linked list for recency ordering. Front = most
// recently used, back = least recently used.
//
// Expiry is lazy: an entry past its access window is dropped when touched.
// Concurrent misses on one key are collapsed through a singleflight group so
// a cold key costs one loader call, not a thundering herd.
type Loading[K comparable, V any] struct {
	spec Spec

	mu    sync.Mutex
	items map[K]*list.Element
	lru   *list.List

	group singleflight.Group
}

// lruEntry is the value stored in the LRU list elements. The key lives here
// because eviction starts from list nodes.
type lruEntry[K comparable, V any] struct {
	key        K
	value      V
	lastAccess time.Time
}

// NewLoading constructs a loading cache bounded by spec.
func NewLoading[K comparable, V any](spec Spec) *Loading[K, V] {
	return &Loading[K, V]{
		spec:  spec,
		items: make(map[K]*list.Element),
		lru:   list.New(),
	}
}

// Get returns the cached value for key, filling a miss via load. Losers of a
// concurrent miss share the winner's result, including its error.
func (c *Loading[K, V]) Get(ctx context.Context, key K, load Loader[K, V]) (V, error) {
	if v, ok := c.GetIfPresent(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(fmt.Sprint(key), func() (any, error) {
		// The winner may have stored the value while this caller queued.
		if v, ok := c.GetIfPresent(key); ok {
			return v, nil
		}
		value, err := load(ctx, key)
		if err != nil {
			return nil, err
		}
		c.Put(key, value)
		return value, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// GetIfPresent returns the cached value without loading. An entry past its
// access window is removed and reported as a miss.
func (c *Loading[K, V]) GetIfPresent(key K) (V, bool) {
	var zero V
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return zero, false
	}

	e := el.Value.(*lruEntry[K, V])
	if c.expired(e, now) {
		c.removeLocked(key, el)
		return zero, false
	}

	e.lastAccess = now
	c.lru.MoveToFront(el)
	return e.value, true
}

// Put stores a value, overwriting any existing entry. Storing counts as an
// access.
func (c *Loading[K, V]) Put(key K, value V) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		e := el.Value.(*lruEntry[K, V])
		e.value = value
		e.lastAccess = now
		c.lru.MoveToFront(el)
		return
	}

	el := c.lru.PushFront(&lruEntry[K, V]{key: key, value: value, lastAccess: now})
	c.items[key] = el
	c.evictLocked(now)
}

// Len returns the number of stored entries, including any not yet reaped by
// lazy expiry.
func (c *Loading[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Purge discards all entries.
func (c *Loading[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]*list.Element)
	c.lru.Init()
}

func (c *Loading[K, V]) expired(e *lruEntry[K, V], now time.Time) bool {
	return c.spec.ExpireAfterAccess > 0 && now.Sub(e.lastAccess) >= c.spec.ExpireAfterAccess
}

// evictLocked enforces MaximumSize. Expired entries are reclaimed first so
// live keys keep their LRU standing.
func (c *Loading[K, V]) evictLocked(now time.Time) {
	if c.spec.MaximumSize <= 0 || int64(len(c.items)) <= c.spec.MaximumSize {
		return
	}

	for el := c.lru.Back(); el != nil && int64(len(c.items)) > c.spec.MaximumSize; {
		prev := el.Prev()
		e := el.Value.(*lruEntry[K, V])
		if c.expired(e, now) {
			c.removeLocked(e.key, el)
		}
		el = prev
	}

	for int64(len(c.items)) > c.spec.MaximumSize {
		el := c.lru.Back()
		if el == nil {
			return
		}
		e := el.Value.(*lruEntry[K, V])
		c.removeLocked(e.key, el)
	}
}

func (c *Loading[K, V]) removeLocked(key K, el *list.Element) {
	delete(c.items, key)
	c.lru.Remove(el)
}

var _ LoadingCache[string, string] = (*Loading[string, string])(nil)
