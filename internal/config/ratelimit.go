package config

import "time"

// RateLimitConfig configures the Redis token bucket.  Capacity tokens are
// available per key and RefillTokens are added every RefillInterval.
type RateLimitConfig struct {
	Enabled        bool          `koanf:"enabled"`
	Capacity       int           `koanf:"capacity"`
	RefillTokens   int           `koanf:"refill_tokens"`
	RefillInterval time.Duration `koanf:"refill_interval"`
	TTL            time.Duration `koanf:"ttl"`
	KeyStrategy    string        `koanf:"key_strategy" validate:"omitempty,oneof=ip route ip_route"`
	Prefix         string        `koanf:"prefix"`
	Debug          bool          `koanf:"debug"`
}

// DefaultRateLimitConfig allows a burst of 60 requests refilled one per second.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:        true,
		Capacity:       60,
		RefillTokens:   1,
		RefillInterval: time.Second,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
}

// normalize clamps values the limiter script cannot work with.  Keys must
// outlive at least five refill intervals.
func (c RateLimitConfig) normalize() RateLimitConfig {
	if c.Capacity < 1 {
		c.Capacity = 1
	}
	if c.RefillTokens < 1 {
		c.RefillTokens = 1
	}
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	if minTTL := 5 * c.RefillInterval; c.TTL < minTTL {
		c.TTL = minTTL
	}
	return c
}
