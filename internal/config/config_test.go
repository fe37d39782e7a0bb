package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/colloquy/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.FlowsDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, config.BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 30*time.Second, cfg.Lock.TTL)
	assert.Equal(t, "colloquy", cfg.Metrics.Namespace)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colloquy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
flows_dir: ./flows
ndu_enabled: true
store:
  backend: redis
  session_ttl: 10m
  durable: sqlite
  path: sessions.db
`), 0o644))

	t.Setenv("COLLOQUY_LOG_LEVEL", "debug")
	t.Setenv("COLLOQUY_HTTP_ADDR", ":9090")

	cfg, err := config.Load(config.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "./flows", cfg.FlowsDir)
	assert.True(t, cfg.NDUEnabled)
	assert.Equal(t, config.BackendRedis, cfg.Store.Backend)
	assert.Equal(t, 10*time.Minute, cfg.Store.SessionTTL)
	assert.Equal(t, config.BackendSQLite, cfg.Store.Durable)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() config.Config {
		cfg, err := config.Load(config.New(), "")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		errMsg string
	}{
		{"unknown backend", func(c *config.Config) { c.Store.Backend = "mongo" }, "unknown backend"},
		{"redis is not durable", func(c *config.Config) { c.Store.Durable = config.BackendRedis }, "unsupported durable"},
		{"postgres needs url", func(c *config.Config) { c.Store.Backend = config.BackendPostgres }, "database_url"},
		{"tiers differ", func(c *config.Config) {
			c.Store.Backend = config.BackendFile
			c.Store.Durable = config.BackendFile
		}, "must differ"},
		{"key is base64", func(c *config.Config) { c.Store.EncryptionKey = "not base64!" }, "invalid base64"},
		{"key is 32 bytes", func(c *config.Config) { c.Store.FallbackKeys = []string{"c2hvcnQ="} }, "32 bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDecodeKey(t *testing.T) {
	key, err := config.DecodeKey("MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY=")
	require.NoError(t, err)
	assert.Len(t, key, 32)
}
