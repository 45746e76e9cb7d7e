package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable LoadFromEnv reads for the duration of a test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"KUBERNETES_SERVICE_HOST",
		"STOREFRONT_NAME", "STOREFRONT_ADDRESS", "STOREFRONT_PORT",
		"STOREFRONT_API_URL", "API_URL", "NEXT_PUBLIC_API_URL", "STOREFRONT_API_TIMEOUT",
		"STOREFRONT_SESSION_PROVIDER", "STOREFRONT_REDIS_URL", "REDIS_URL",
		"STOREFRONT_SESSION_TTL", "STOREFRONT_LOG_LEVEL", "STOREFRONT_LOG_FORMAT",
		"STOREFRONT_TELEMETRY_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT",
		"STOREFRONT_DEV_MODE", "STOREFRONT_STRIPE_PUBLISHABLE_KEY", "NEXT_PUBLIC_STRIPE_PUBLISHABLE_KEY",
	} {
		if v, ok := os.LookupEnv(name); ok {
			_ = os.Unsetenv(name)
			t.Cleanup(func() { _ = os.Setenv(name, v) })
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	clearEnv(t)
	cfg := DefaultConfig()

	assert.Equal(t, "storefront", cfg.Name)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "localhost", cfg.Address)
	assert.Equal(t, "http://localhost:8000", cfg.API.URL)
	assert.Zero(t, cfg.API.Timeout, "no client-side timeout by default")

	assert.Equal(t, "memory", cfg.Session.Provider)
	assert.Equal(t, "storefront_session", cfg.Session.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.False(t, cfg.Telemetry.Enabled)

	require.NoError(t, cfg.Validate())
}

func TestDetectEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("KUBERNETES_SERVICE_HOST", "10.0.0.1")

	cfg := DefaultConfig()
	assert.Equal(t, "0.0.0.0", cfg.Address)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Session.CookieSecure)
}

func TestLoadFromEnv(t *testing.T) {
	t.Run("API origin fallbacks", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NEXT_PUBLIC_API_URL", "http://public:8000")
		cfg := DefaultConfig()
		require.NoError(t, cfg.LoadFromEnv())
		assert.Equal(t, "http://public:8000", cfg.API.URL)

		t.Setenv("API_URL", "http://api:8000")
		require.NoError(t, cfg.LoadFromEnv())
		assert.Equal(t, "http://api:8000", cfg.API.URL)

		t.Setenv("STOREFRONT_API_URL", "http://dedicated:8000")
		require.NoError(t, cfg.LoadFromEnv())
		assert.Equal(t, "http://dedicated:8000", cfg.API.URL)
	})

	t.Run("redis url selects redis provider", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("REDIS_URL", "redis://cache:6379")
		cfg := DefaultConfig()
		require.NoError(t, cfg.LoadFromEnv())
		assert.Equal(t, "redis", cfg.Session.Provider)
		assert.Equal(t, "redis://cache:6379", cfg.Session.RedisURL)
	})

	t.Run("explicit provider is kept", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("REDIS_URL", "redis://cache:6379")
		t.Setenv("STOREFRONT_SESSION_PROVIDER", "memory")
		cfg := DefaultConfig()
		require.NoError(t, cfg.LoadFromEnv())
		assert.Equal(t, "memory", cfg.Session.Provider)
	})

	t.Run("otel endpoint enables telemetry", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel-collector:4317")
		cfg := DefaultConfig()
		require.NoError(t, cfg.LoadFromEnv())
		assert.True(t, cfg.Telemetry.Enabled)
	})

	t.Run("invalid port", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STOREFRONT_PORT", "not-a-number")
		cfg := DefaultConfig()
		err := cfg.LoadFromEnv()
		require.Error(t, err)
		assert.True(t, IsConfigurationError(err))
	})

	t.Run("invalid duration", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STOREFRONT_API_TIMEOUT", "soon")
		cfg := DefaultConfig()
		assert.Error(t, cfg.LoadFromEnv())
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
		message string
	}{
		{"port out of range", func(c *Config) { c.Port = 70000 }, ErrInvalidConfiguration, "invalid port: 70000"},
		{"missing api url", func(c *Config) { c.API.URL = "" }, ErrMissingConfiguration, "API URL is required"},
		{"relative api url", func(c *Config) { c.API.URL = "/api" }, ErrInvalidConfiguration, `invalid API URL: "/api"`},
		{"redis without url", func(c *Config) { c.Session.Provider = "redis" }, ErrMissingConfiguration, "redis URL is required for the Redis session provider"},
		{"unknown provider", func(c *Config) { c.Session.Provider = "etcd" }, ErrInvalidConfiguration, `unknown session provider: "etcd"`},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, ErrInvalidConfiguration, `unknown log format: "xml"`},
		{"telemetry without endpoint", func(c *Config) { c.Telemetry.Enabled = true }, ErrMissingConfiguration, "telemetry endpoint is required when telemetry is enabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
			assert.Equal(t, tt.message, err.Error())

			var opErr *OpError
			require.True(t, errors.As(err, &opErr))
			assert.Equal(t, "Config.Validate", opErr.Op)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "storefront.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
port: 4000
api:
  url: http://shop-api:8000
  timeout: 5s
session:
  provider: redis
  redis_url: redis://cache:6379
`), 0o600))

		cfg := DefaultConfig()
		require.NoError(t, cfg.LoadFromFile(path))
		assert.Equal(t, 4000, cfg.Port)
		assert.Equal(t, "http://shop-api:8000", cfg.API.URL)
		assert.Equal(t, 5*time.Second, cfg.API.Timeout)
		assert.Equal(t, "redis", cfg.Session.Provider)
		assert.Equal(t, "storefront_session", cfg.Session.CookieName, "fields absent from the file keep their value")
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "storefront.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"name":"shop","logging":{"format":"json"}}`), 0o600))

		cfg := DefaultConfig()
		require.NoError(t, cfg.LoadFromFile(path))
		assert.Equal(t, "shop", cfg.Name)
		assert.Equal(t, "json", cfg.Logging.Format)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		cfg := DefaultConfig()
		err := cfg.LoadFromFile(filepath.Join(dir, "storefront.toml"))
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "broken.yml")
		require.NoError(t, os.WriteFile(path, []byte("port: [1, 2"), 0o600))
		cfg := DefaultConfig()
		assert.ErrorIs(t, cfg.LoadFromFile(path), ErrInvalidConfiguration)
	})
}

func TestNewConfigOptionPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("STOREFRONT_API_URL", "http://from-env:8000")
	t.Setenv("STOREFRONT_PORT", "5000")

	cfg, err := NewConfig(
		WithAPIURL("http://from-option:8000/"),
		WithLogFormat("JSON"),
	)
	require.NoError(t, err)

	assert.Equal(t, "http://from-option:8000", cfg.API.URL, "options override env and trailing slash is trimmed")
	assert.Equal(t, 5000, cfg.Port, "env overrides defaults")
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestNewConfigValidates(t *testing.T) {
	clearEnv(t)
	_, err := NewConfig(WithPort(0))
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
}

func TestDevelopmentMode(t *testing.T) {
	clearEnv(t)
	cfg, err := NewConfig(WithDevelopmentMode(true), WithOTELEndpoint(""))
	require.NoError(t, err, "stdout tracing satisfies telemetry in development")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Development.TraceToStdout)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("STOREFRONT_NAME=dotenv-shop\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("STOREFRONT_NAME") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "dotenv-shop", os.Getenv("STOREFRONT_NAME"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "nope.env")), "missing files are ignored")
}
