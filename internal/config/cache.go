package config

import (
	"net/http"
	"strings"
	"time"
)

// CacheConfig configures the Redis response cache.  Only room listings and
// the dashboard sit behind it; availability and booking decisions always
// read the database.  Any write through the API flushes every key under
// Prefix.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string // route | route_query | method_route | method_route_query
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads the CACHE_* variables.  Only GET and HEAD may be
// listed in CACHE_METHODS; anything else is ignored.
func LoadCacheConfig() CacheConfig {
	c := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      cacheableMethods(envStr("CACHE_METHODS", http.MethodGet)),
		TTL:          envDur("CACHE_TTL", 15*time.Second),
		KeyStrategy:  strings.ToLower(envStr("CACHE_KEY_STRATEGY", "route_query")),
		Prefix:       envStr("CACHE_PREFIX", "inn:cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
	switch c.KeyStrategy {
	case "route", "route_query", "method_route", "method_route_query":
	default:
		c.KeyStrategy = "route_query"
	}
	if c.TTL <= 0 {
		c.TTL = 15 * time.Second
	}
	return c
}

func cacheableMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		switch p = strings.ToUpper(strings.TrimSpace(p)); p {
		case http.MethodGet, http.MethodHead:
			m[p] = true
		}
	}
	return m
}
