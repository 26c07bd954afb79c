package cache

import (
	"sync"
	"time"
)

// Entry is a cached value and the instant after which it must not be returned
type Entry[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// TTLCache is a concurrency-safe key to entry map with lazy, read-time expiry.
// Set always replaces the whole entry, so readers never observe a value being built.
type TTLCache[V any] struct {
	mu    sync.RWMutex
	items map[string]Entry[V]
	now   func() time.Time
}

// NewTTLCache creates an empty cache using the wall clock
func NewTTLCache[V any]() *TTLCache[V] {
	return NewTTLCacheWithClock[V](time.Now)
}

// NewTTLCacheWithClock creates an empty cache reading time from now
func NewTTLCacheWithClock[V any](now func() time.Time) *TTLCache[V] {
	return &TTLCache[V]{
		items: make(map[string]Entry[V]),
		now:   now,
	}
}

// Get returns the value for key unless it is absent or expired.
// Expired entries are evicted on the way out.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	var zero V

	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return zero, false
	}

	if c.now().After(entry.ExpiresAt) {
		c.mu.Lock()
		// Another writer may have refreshed the key meanwhile
		if current, still := c.items[key]; still && current.ExpiresAt.Equal(entry.ExpiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return zero, false
	}

	return entry.Value, true
}

// Set stores value under key for ttl
func (c *TTLCache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = Entry[V]{Value: value, ExpiresAt: c.now().Add(ttl)}
}

// Delete removes key
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len returns the number of stored entries, expired ones included
func (c *TTLCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
