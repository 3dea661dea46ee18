package common

import (
	"time"

	"infinite-experiment/gazetteer/internal/logging"
)

// CacheInterface defines the contract for cache implementations.
// Values are stored as JSON so both backends round-trip into typed values.
type CacheInterface interface {
	// Set stores a value in cache with the given key and duration
	Set(key string, value interface{}, duration time.Duration)

	// Get decodes the cached value for key into dest.
	// Returns false on a miss or if the stored value does not decode.
	Get(key string, dest interface{}) bool

	// Delete removes a value from cache by key
	Delete(key string)

	// DeletePrefix removes every key starting with prefix
	DeletePrefix(prefix string)

	// Close closes any underlying connections (for Redis, etc.)
	Close() error
}

// GetOrSet returns the cached value for key, or loads, stores and returns it.
// Loader errors are not cached.
func GetOrSet[T any](c CacheInterface, key string, duration time.Duration, loader func() (T, error)) (T, error) {
	var cached T
	if c.Get(key, &cached) {
		return cached, nil
	}

	val, err := loader()
	if err != nil {
		return val, err
	}

	c.Set(key, val, duration)
	return val, nil
}

// NewCache builds the configured backend. An unreachable Redis falls back to
// the in-memory cache so the read API keeps serving.
func NewCache(backend string, redisClient RedisClientProvider, ttlSeconds int) CacheInterface {
	if backend == "redis" && redisClient != nil {
		svc, err := NewRedisCacheService(redisClient.Client())
		if err == nil {
			return svc
		}
		logging.Warn("Redis cache unavailable, falling back to memory", "error", err)
	}
	return NewCacheService(ttlSeconds, ttlSeconds*2)
}
