package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, 10, cfg.DefaultPageSize)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout())
	assert.Equal(t, 15*time.Second, cfg.BackendTimeout())
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)
	assert.Equal(t, Development, cfg.Environment())
	assert.Equal(t, language.English, cfg.Language())
	assert.Equal(t, 3, cfg.Redis.ReadTimeout)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("STORAGE_DRIVER", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("REDIS_KEY_TTL", "24h")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("DEFAULT_PAGE_SIZE", "20")
	t.Setenv("LOCALE", "de")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.True(t, cfg.Environment().IsProduction())
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, 24*time.Hour, cfg.Redis.KeyTTL)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout())
	assert.Equal(t, 20, cfg.DefaultPageSize)
	assert.Equal(t, language.German, cfg.Language())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestFromEnvRejectsBadSettings(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unknown driver", key: "STORAGE_DRIVER", val: "sqlite"},
		{name: "redis without url", key: "STORAGE_DRIVER", val: "redis"},
		{name: "zero page size", key: "DEFAULT_PAGE_SIZE", val: "0"},
		{name: "non numeric timeout", key: "BACKEND_TIMEOUT_SECONDS", val: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestParseEnvironment(t *testing.T) {
	assert.Equal(t, Production, ParseEnvironment("Production"))
	assert.Equal(t, Staging, ParseEnvironment("staging"))
	assert.Equal(t, Development, ParseEnvironment("qa"))
}
