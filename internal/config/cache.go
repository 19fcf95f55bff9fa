package config

import (
	"strings"
	"time"
)

// CacheConfig configures the Redis cache in front of GET /api/search.
// Without a Redis client the cache is bypassed whatever Enabled says.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string // route_query (default), route, method_route or method_route_query
	Prefix       string
	MaxBodyBytes int // larger responses are served but not stored
}

// LoadCacheConfig reads SEARCH_CACHE_* variables.
func LoadCacheConfig() CacheConfig {
	c := CacheConfig{
		Enabled:      envBool("SEARCH_CACHE_ENABLED", true),
		Methods:      methodSet(envStr("SEARCH_CACHE_METHODS", "GET")),
		TTL:          envDur("SEARCH_CACHE_TTL", 30*time.Second),
		KeyStrategy:  envStr("SEARCH_CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envStr("SEARCH_CACHE_PREFIX", "kiddeo:search"),
		MaxBodyBytes: envInt("SEARCH_CACHE_MAX_BODY_BYTES", 1<<20),
	}
	if c.TTL <= 0 {
		c.TTL = time.Second
	}
	return c
}

// methodSet turns "get, head" into {"GET", "HEAD"}.
func methodSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, m := range strings.Split(list, ",") {
		if m = strings.ToUpper(strings.TrimSpace(m)); m != "" {
			set[m] = true
		}
	}
	return set
}
