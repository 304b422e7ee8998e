package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching will be disabled.
// Methods is a comma separated list of HTTP methods to cache (e.g. "GET,HEAD").
// TTL defines the lifetime of cache entries.  KeyStrategy determines which
// parts of the request contribute to the cache key.  Prefix and MaxBodyBytes
// allow control over namespacing and the maximum size of responses to cache.
type CacheConfig struct {
	Enabled      bool          `koanf:"enabled"`
	Methods      string        `koanf:"methods"`
	TTL          time.Duration `koanf:"ttl"`
	KeyStrategy  string        `koanf:"key_strategy" validate:"omitempty,oneof=route method_route method_route_query route_query"`
	Prefix       string        `koanf:"prefix"`
	MaxBodyBytes int           `koanf:"max_body_bytes"`
}

// DefaultCacheConfig caches GET responses for 30 seconds.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      true,
		Methods:      "GET",
		TTL:          30 * time.Second,
		KeyStrategy:  "route_query",
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}
}

// MethodSet returns the cached methods upper-cased.
func (c CacheConfig) MethodSet() map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(c.Methods, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
