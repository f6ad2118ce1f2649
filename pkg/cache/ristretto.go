package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"
)

const defaultCacheName = "default"

// RistrettoCache is a Cache backed by Ristretto. Every entry costs 1, so
// MaxCost is the item capacity.
type RistrettoCache struct {
	name   string
	cache  *ristretto.Cache
	logger *zap.Logger
}

// RistrettoConfig holds configuration for Ristretto cache.
type RistrettoConfig struct {
	Name        string // metrics label
	NumCounters int64  // keys tracked for admission, ~10x MaxCost
	MaxCost     int64
	BufferItems int64
	Logger      *zap.Logger
}

// NewRistrettoCache creates a new Ristretto-backed cache.
func NewRistrettoCache(cfg *RistrettoConfig) (*RistrettoCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        cfg.NumCounters,
		MaxCost:            cfg.MaxCost,
		BufferItems:        cfg.BufferItems,
		Metrics:            true,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}

	name := cfg.Name
	if name == "" {
		name = defaultCacheName
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RistrettoCache{
		name:   name,
		cache:  c,
		logger: logger,
	}, nil
}

// Get retrieves a value from the cache.
func (r *RistrettoCache) Get(key string) (any, bool) {
	value, found := r.cache.Get(key)
	if found {
		CacheHitsTotal.WithLabelValues(r.name).Inc()
	} else {
		CacheMissesTotal.WithLabelValues(r.name).Inc()
	}
	r.logger.Debug("cache-get",
		zap.String("cache", r.name),
		zap.String("key", key),
		zap.Bool("hit", found))

	return value, found
}

// Set stores a value in the cache with a TTL.
func (r *RistrettoCache) Set(key string, value any, ttl time.Duration) bool {
	ok := r.cache.SetWithTTL(key, value, 1, ttl)
	if ok {
		CacheSetsTotal.WithLabelValues(r.name).Inc()
		r.logger.Debug("cache-set",
			zap.String("cache", r.name),
			zap.String("key", key),
			zap.Duration("ttl", ttl))
	}

	return ok
}

// Delete removes a value from the cache.
func (r *RistrettoCache) Delete(key string) {
	r.cache.Del(key)
	CacheDeletesTotal.WithLabelValues(r.name).Inc()
}

// Clear removes all values from the cache.
func (r *RistrettoCache) Clear() {
	r.cache.Clear()
	r.logger.Info("cache-cleared", zap.String("cache", r.name))
}

// Close closes the cache and releases resources.
func (r *RistrettoCache) Close() {
	r.cache.Close()
}

// Metrics returns Ristretto's internal metrics.
func (r *RistrettoCache) Metrics() *ristretto.Metrics {
	return r.cache.Metrics
}

// Wait blocks until pending writes are applied.
func (r *RistrettoCache) Wait() {
	r.cache.Wait()
}
