package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StorageMemory, cfg.StorageType)
	assert.Equal(t, "committy.db", cfg.SQLitePath)
	assert.True(t, cfg.SeedCatalog)
	assert.Equal(t, 5*time.Second, cfg.ImageCheckTimeout)
	assert.False(t, cfg.StrictSeedTokens)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_TYPE", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SEED_CATALOG", "false")
	t.Setenv("IMAGE_CHECK_TIMEOUT", "250ms")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, StorageRedis, cfg.StorageType)
	assert.False(t, cfg.SeedCatalog)
	assert.Equal(t, 250*time.Millisecond, cfg.ImageCheckTimeout)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestRedisRequiresURL(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "redis")
	_, err := Load()
	assert.ErrorContains(t, err, "REDIS_URL")
}

func TestUnknownStorageType(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "postgres")
	_, err := Load()
	assert.ErrorContains(t, err, "STORAGE_TYPE")
}

func TestBadValues(t *testing.T) {
	t.Setenv("PORT", "eighty")
	_, err := Load()
	assert.ErrorContains(t, err, "parse env")
}

func TestBadLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "chatty")
	_, err := Load()
	assert.ErrorContains(t, err, "LOG_LEVEL")
}
