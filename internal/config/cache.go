package config

import "time"

// CacheConfig controls the Redis cache in front of the events provider.
// A zero TTL or a missing Redis client disables caching.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads CACHE_ENABLED, EVENTS_CACHE_TTL and CACHE_PREFIX.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled: envBool("CACHE_ENABLED", true),
		TTL:     envDur("EVENTS_CACHE_TTL", 5*time.Minute),
		Prefix:  envStr("CACHE_PREFIX", "fyd"),
	}
	if !cfg.Enabled || cfg.TTL < 0 {
		cfg.TTL = 0
	}
	return cfg
}
