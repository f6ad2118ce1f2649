// Package cache holds fixture lists, matched pairs and odds books between
// scheduled refreshes.
package cache

import "time"

// Cache is a key/value store with per-entry TTL.
type Cache interface {
	// Get returns (value, true) if the key is present and not expired.
	Get(key string) (any, bool)

	// Set stores a value with a TTL. It may be dropped by the admission
	// policy, in which case it returns false.
	Set(key string, value any, ttl time.Duration) bool

	Delete(key string)
	Clear()
	Close()
}

// GetAs returns the cached value for key when it has type T.
func GetAs[T any](c Cache, key string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}

	value, found := c.Get(key)
	if !found {
		return zero, false
	}

	typed, ok := value.(T)
	if !ok {
		return zero, false
	}

	return typed, true
}
