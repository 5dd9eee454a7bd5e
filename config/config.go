// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Minify MinifyConfig `mapstructure:"minify"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port      string `mapstructure:"port"`
	BodyLimit string `mapstructure:"body_limit"`
}

// CacheConfig selects and configures the storage backend
type CacheConfig struct {
	// Backend is one of: memory, local, redis, sqlite
	Backend    string `mapstructure:"backend"`
	Dir        string `mapstructure:"dir"`
	Compress   bool   `mapstructure:"compress"`
	RedisURL   string `mapstructure:"redis_url"`
	RedisTTL   string `mapstructure:"redis_ttl"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// MinifyConfig holds pipeline tuning
type MinifyConfig struct {
	MaxInputBytes int      `mapstructure:"max_input_bytes"`
	Exclude       []string `mapstructure:"exclude"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

var validBackends = map[string]bool{
	"memory": true,
	"local":  true,
	"redis":  true,
	"sqlite": true,
}

// Load reads configuration from file and environment. Precedence, lowest
// first: built-in defaults, an optional pressmin.yaml, then PRESSMIN_*
// environment variables (a .env file in the working directory is loaded
// into the environment first, without overriding variables already set).
func Load() (*Config, error) {
	// Load .env file (optional, won't fail if not found)
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.body_limit", "4M")
	v.SetDefault("cache.backend", "local")
	v.SetDefault("cache.dir", "./cache")
	v.SetDefault("cache.compress", false)
	v.SetDefault("cache.redis_ttl", "0")
	v.SetDefault("cache.sqlite_path", "./pressmin.db")
	v.SetDefault("minify.max_input_bytes", 0) // 0 means the built-in limit
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetConfigName("pressmin")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/pressmin")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("PRESSMIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field requirements that viper cannot express.
func (c *Config) Validate() error {
	if !validBackends[c.Cache.Backend] {
		return fmt.Errorf("unknown cache backend %q (expected memory, local, redis or sqlite)", c.Cache.Backend)
	}
	switch c.Cache.Backend {
	case "local":
		if c.Cache.Dir == "" {
			return fmt.Errorf("cache.dir is required for the local backend")
		}
	case "redis":
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache.redis_url is required for the redis backend")
		}
	case "sqlite":
		if c.Cache.SQLitePath == "" {
			return fmt.Errorf("cache.sqlite_path is required for the sqlite backend")
		}
	}
	if c.Minify.MaxInputBytes < 0 {
		return fmt.Errorf("minify.max_input_bytes must not be negative")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q (expected json or text)", c.Log.Format)
	}
	return nil
}
