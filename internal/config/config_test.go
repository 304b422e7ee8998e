package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("THEATER_DB_HOST", "localhost")
	t.Setenv("THEATER_DB_USER", "root")
	t.Setenv("THEATER_DB_NAME", "theaters")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 10*time.Second, cfg.App.ShutdownTimeout)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, "3306", cfg.DB.Port)
	assert.Equal(t, "theaters", cfg.DB.Name)
	assert.Equal(t, "theater.changed", cfg.AMQP.Queue)
	assert.False(t, cfg.AMQP.Enabled)
	assert.True(t, cfg.Cache.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("THEATER_APP_PORT", "9090")
	t.Setenv("THEATER_APP_LOG_LEVEL", "debug")
	t.Setenv("THEATER_APP_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("THEATER_DB_DRIVER", "sqlite")
	t.Setenv("THEATER_DB_PATH", ":memory:")
	t.Setenv("THEATER_DB_AUTO_SCHEMA", "true")
	t.Setenv("THEATER_REDIS_ENABLED", "true")
	t.Setenv("THEATER_REDIS_DB", "2")
	t.Setenv("THEATER_CACHE_TTL", "1m")
	t.Setenv("THEATER_RATELIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("THEATER_RATELIMIT_TTL", "1s")
	t.Setenv("THEATER_AMQP_ENABLED", "true")
	t.Setenv("THEATER_AMQP_LOG_DIR", "/var/log/theater")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.App.ShutdownTimeout)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, ":memory:", cfg.DB.Path)
	assert.True(t, cfg.DB.AutoSchema)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 2*time.Second, cfg.RateLimit.RefillInterval)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.TTL, "ttl is raised to five refill intervals")
	assert.True(t, cfg.AMQP.Enabled)
	assert.Equal(t, "/var/log/theater", cfg.AMQP.LogDir)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"THEATER_DB_DRIVER": "oracle"}},
		{"mysql without host", map[string]string{"THEATER_DB_DRIVER": "mysql"}},
		{"sqlite without path", map[string]string{"THEATER_DB_DRIVER": "sqlite"}},
		{"bad log level", map[string]string{"THEATER_DB_DRIVER": "memory", "THEATER_APP_LOG_LEVEL": "loud"}},
		{"bad key strategy", map[string]string{"THEATER_DB_DRIVER": "memory", "THEATER_RATELIMIT_KEY_STRATEGY": "user"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.ErrorContains(t, err, "invalid config")
		})
	}
}

func TestNormalize(t *testing.T) {
	got := RateLimitConfig{}.normalize()

	assert.Equal(t, 1, got.Capacity)
	assert.Equal(t, 1, got.RefillTokens)
	assert.Equal(t, time.Second, got.RefillInterval)
	assert.Equal(t, 5*time.Second, got.TTL)
}

func TestMethodSet(t *testing.T) {
	cfg := CacheConfig{Methods: " get, head ,,"}

	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.MethodSet())
}

func TestNewRedisClient_Disabled(t *testing.T) {
	assert.Nil(t, NewRedisClient(RedisConfig{}))
}
