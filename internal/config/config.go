// Package config loads agentflow.yaml.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "agentflow.yaml"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config is the decoded agentflow.yaml.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Catalog string        `mapstructure:"catalog"`
	Store   StoreConfig   `mapstructure:"store"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Auth    AuthConfig    `mapstructure:"auth"`
	History HistoryConfig `mapstructure:"history"`
}

// LogConfig selects the slog level and handler format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StoreConfig picks the flow store backend and its middleware.
type StoreConfig struct {
	Backend string        `mapstructure:"backend"`
	Dir     string        `mapstructure:"dir"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Secrets SecretsConfig `mapstructure:"secrets"`

	// Redact lists config key patterns masked before saving.
	Redact []string `mapstructure:"redact"`
}

// SecretsConfig seals credential config values at rest. Keys are base64
// encoded 32 byte AES keys.
type SecretsConfig struct {
	Key          string   `mapstructure:"key"`
	PreviousKeys []string `mapstructure:"previous_keys"`
}

// RedisConfig configures the redis backend. TTL zero keeps flows forever.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// HTTPConfig is the listen address for serve.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// AuthConfig overrides which apps require credentials on their triggers.
type AuthConfig struct {
	// NeedsAuth replaces the built-in allowlist when non-empty.
	NeedsAuth []string `mapstructure:"needs_auth"`
}

// HistoryConfig bounds the editor undo history. Zero uses the editor default.
type HistoryConfig struct {
	Limit int `mapstructure:"limit"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Log:     LogConfig{Level: "info", Format: "text"},
		Store:   StoreConfig{Backend: BackendMemory, Dir: ".agentflow/flows", Redis: RedisConfig{Addr: "localhost:6379", Prefix: "agentflow:"}},
		HTTP:    HTTPConfig{Addr: ":8080"},
		History: HistoryConfig{Limit: 100},
	}
}

// Load reads path over the defaults. A missing file yields the defaults;
// an empty path means DefaultFile.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML config data over the defaults and validates it.
func Parse(data []byte) (Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("failed to parse config yaml: %w", err)
	}

	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values no component can act on.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.History.Limit < 0 {
		return fmt.Errorf("history.limit must not be negative, got %d", c.History.Limit)
	}
	if c.Store.Redis.TTL < 0 {
		return fmt.Errorf("store.redis.ttl must not be negative")
	}
	if c.Store.Secrets.Key == "" && len(c.Store.Secrets.PreviousKeys) > 0 {
		return fmt.Errorf("store.secrets.previous_keys requires store.secrets.key")
	}
	for _, k := range append([]string{c.Store.Secrets.Key}, c.Store.Secrets.PreviousKeys...) {
		if k == "" {
			continue
		}
		if raw, err := base64.StdEncoding.DecodeString(k); err != nil || len(raw) != 32 {
			return fmt.Errorf("store.secrets keys must be base64 encoded 32 byte keys")
		}
	}
	return nil
}
