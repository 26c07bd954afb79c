package cache

import (
	"encoding/json"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/phishlens/internal/util"
)

// DiskCache persists entries as one JSON file per key, so short-lived CLI
// processes can reuse large downloads such as threat feeds.
type DiskCache[V any] struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

// NewDiskCache creates a new disk cache rooted at dir
func NewDiskCache[V any](dir string, logger *slog.Logger) *DiskCache[V] {
	if logger == nil {
		logger = slog.Default()
	}
	return &DiskCache[V]{dir: dir, now: time.Now, logger: logger}
}

// Get retrieves a value from the disk cache
func (c *DiskCache[V]) Get(key string) (V, bool) {
	entry, ok := c.entry(key)
	return entry.Value, ok
}

// entry returns the stored entry, removing it when expired or corrupt
func (c *DiskCache[V]) entry(key string) (Entry[V], bool) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		return Entry[V]{}, false
	}

	var entry Entry[V]
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(path)
		return Entry[V]{}, false
	}

	if c.now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return Entry[V]{}, false
	}

	return entry, true
}

// Set stores a value. Write failures are logged and otherwise ignored
// since the disk layer only saves re-downloads.
func (c *DiskCache[V]) Set(key string, value V, ttl time.Duration) {
	data, err := json.Marshal(Entry[V]{Value: value, ExpiresAt: c.now().Add(ttl)})
	if err != nil {
		c.logger.Debug("disk cache marshal failed", "key", key, "error", err)
		return
	}
	if err := util.WriteFileAtomic(c.path(key), data, 0o644); err != nil {
		c.logger.Debug("disk cache write failed", "key", key, "error", err)
	}
}

// Delete removes a value from the disk cache
func (c *DiskCache[V]) Delete(key string) {
	_ = os.Remove(c.path(key))
}

// Clear removes all cached files
func (c *DiskCache[V]) Clear() error {
	return os.RemoveAll(c.dir)
}

// path generates the file path for a cache key
func (c *DiskCache[V]) path(key string) string {
	return filepath.Join(c.dir, url.PathEscape(key)+".cache.json")
}
