// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config is the server configuration
type Config struct {
	Host string `env:"HOST"`
	Port int    `env:"PORT" envDefault:"8080"`

	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"committy.db"`

	// AdminKeyHash is a bcrypt hash; empty disables the admin endpoints
	AdminKeyHash string `env:"ADMIN_KEY_HASH"`

	// SeedCatalog inserts starter cards into an empty catalog. SeedCatalogFile
	// replaces the built-in starter cards with a TOML file.
	SeedCatalog     bool   `env:"SEED_CATALOG" envDefault:"true"`
	SeedCatalogFile string `env:"SEED_CATALOG_FILE"`

	WordListFile      string        `env:"WORD_LIST_FILE"`
	ImageCheckTimeout time.Duration `env:"IMAGE_CHECK_TIMEOUT" envDefault:"5s"`
	StrictSeedTokens  bool          `env:"STRICT_SEED_TOKENS"`

	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config and validates it
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that depend on each other
func (c Config) Validate() error {
	switch c.StorageType {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL required when STORAGE_TYPE=%s", StorageRedis)
		}
	case StorageSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH required when STORAGE_TYPE=%s", StorageSQLite)
		}
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q: must be %s, %s or %s", c.StorageType, StorageMemory, StorageRedis, StorageSQLite)
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel returns the configured log level
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}
