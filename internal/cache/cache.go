package cache

import "time"

// Store is a keyed value store with per-entry expiry
type Store[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V, ttl time.Duration)
	Delete(key string)
}
