// Package config loads colloquy settings from defaults, an optional YAML file,
// COLLOQUY_* environment variables and bound command-line flags.
package config

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "COLLOQUY"

// Store backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	FlowsDir string `mapstructure:"flows_dir"`
	// FlowBundle is a YAML file holding every flow. It replaces FlowsDir when set.
	FlowBundle  string        `mapstructure:"flow_bundle"`
	DefaultFlow string        `mapstructure:"default_flow"`
	NDUEnabled  bool          `mapstructure:"ndu_enabled"`
	LogLevel    string        `mapstructure:"log_level"`
	HTTP        HTTPConfig    `mapstructure:"http"`
	Store       StoreConfig   `mapstructure:"store"`
	Metrics     MetricsConfig `mapstructure:"metrics"`
	Lock        LockConfig    `mapstructure:"lock"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type StoreConfig struct {
	Backend     string        `mapstructure:"backend"`
	Path        string        `mapstructure:"path"`
	RedisAddr   string        `mapstructure:"redis_addr"`
	RedisPrefix string        `mapstructure:"redis_prefix"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
	DatabaseURL string        `mapstructure:"database_url"`
	// Durable names an optional second tier that receives forced and flushed saves.
	Durable       string        `mapstructure:"durable"`
	DurablePath   string        `mapstructure:"durable_path"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
	// EncryptionKey is a base64 AES-256 key. When set, persistent stores hold sealed sessions.
	EncryptionKey string   `mapstructure:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys"`
	// RedactSlots are slot name patterns masked in the durable tier.
	RedactSlots []string `mapstructure:"redact_slots"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

type LockConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// New returns a viper instance with defaults and environment binding applied.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers every known key so environment overrides are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("flows_dir", ".")
	v.SetDefault("flow_bundle", "")
	v.SetDefault("default_flow", "")
	v.SetDefault("ndu_enabled", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("store.backend", BackendMemory)
	v.SetDefault("store.path", ".colloquy/sessions")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_prefix", "colloquy:session:")
	v.SetDefault("store.session_ttl", time.Duration(0))
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.durable", "")
	v.SetDefault("store.durable_path", ".colloquy/durable")
	v.SetDefault("store.flush_interval", 30*time.Second)
	v.SetDefault("store.encryption_key", "")
	v.SetDefault("store.fallback_keys", []string{})
	v.SetDefault("store.redact_slots", []string{})
	v.SetDefault("metrics.namespace", "colloquy")
	v.SetDefault("lock.ttl", 30*time.Second)
}

// Load reads the optional config file into v and decodes the result.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown backends and incomplete backend settings.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendSQLite, BackendPostgres:
	default:
		return fmt.Errorf("store.backend: unknown backend %q", c.Store.Backend)
	}
	switch c.Store.Durable {
	case "", BackendFile, BackendSQLite, BackendPostgres:
	default:
		return fmt.Errorf("store.durable: unsupported durable backend %q", c.Store.Durable)
	}
	if (c.Store.Backend == BackendPostgres || c.Store.Durable == BackendPostgres) && strings.TrimSpace(c.Store.DatabaseURL) == "" {
		return fmt.Errorf("store.database_url is required for the postgres backend")
	}
	if c.Store.Durable != "" && c.Store.Durable == c.Store.Backend {
		return fmt.Errorf("store.durable must differ from store.backend")
	}
	for _, key := range append([]string{c.Store.EncryptionKey}, c.Store.FallbackKeys...) {
		if key == "" {
			continue
		}
		if _, err := DecodeKey(key); err != nil {
			return fmt.Errorf("store encryption key: %w", err)
		}
	}
	return nil
}

// DecodeKey decodes a base64 AES-256 key.
func DecodeKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
