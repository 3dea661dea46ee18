package common

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"infinite-experiment/gazetteer/internal/logging"
)

// CacheService is the in-memory cache implementation
type CacheService struct {
	cache *cache.Cache
}

// Ensure CacheService implements CacheInterface
var _ CacheInterface = (*CacheService)(nil)

func NewCacheService(defaultExpirationSeconds, cleanUpIntervalSeconds int) *CacheService {
	defaultExpiration := time.Duration(defaultExpirationSeconds) * time.Second
	cleanUpInterval := time.Duration(cleanUpIntervalSeconds) * time.Second
	if cleanUpInterval <= 0 {
		cleanUpInterval = time.Minute
	}
	c := cache.New(defaultExpiration, cleanUpInterval)
	return &CacheService{cache: c}
}

func (cs *CacheService) Set(key string, value interface{}, duration time.Duration) {
	// stored encoded so callers never share a value with the cache
	data, err := json.Marshal(value)
	if err != nil {
		logging.Warn("Memory cache: failed to marshal value", "key", key, "error", err)
		return
	}
	cs.cache.Set(key, data, duration)
}

func (cs *CacheService) Get(key string, dest interface{}) bool {
	val, found := cs.cache.Get(key)
	if !found {
		return false
	}
	data, ok := val.([]byte)
	if !ok {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (cs *CacheService) Delete(key string) {
	cs.cache.Delete(key)
}

func (cs *CacheService) DeletePrefix(prefix string) {
	for key := range cs.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			cs.cache.Delete(key)
		}
	}
}

// Close closes the cache (no-op for in-memory cache)
func (cs *CacheService) Close() error {
	return nil
}
