package cache

import (
	"log/slog"
	"time"
)

// LayeredCache checks a TTLCache before a DiskCache and promotes disk hits
// into memory for their remaining lifetime.
type LayeredCache[V any] struct {
	memory *TTLCache[V]
	disk   *DiskCache[V]
}

// NewLayeredCache creates a memory + disk cache rooted at diskDir
func NewLayeredCache[V any](diskDir string, logger *slog.Logger) *LayeredCache[V] {
	return &LayeredCache[V]{
		memory: NewTTLCache[V](),
		disk:   NewDiskCache[V](diskDir, logger),
	}
}

// Get retrieves a value from the cache (checks memory first, then disk)
func (c *LayeredCache[V]) Get(key string) (V, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}

	entry, found := c.disk.entry(key)
	if !found {
		var zero V
		return zero, false
	}

	if remaining := entry.ExpiresAt.Sub(c.memory.now()); remaining > 0 {
		c.memory.Set(key, entry.Value, remaining)
	}
	return entry.Value, true
}

// Set stores a value in both layers
func (c *LayeredCache[V]) Set(key string, value V, ttl time.Duration) {
	c.memory.Set(key, value, ttl)
	c.disk.Set(key, value, ttl)
}

// Delete removes a value from both layers
func (c *LayeredCache[V]) Delete(key string) {
	c.memory.Delete(key)
	c.disk.Delete(key)
}
