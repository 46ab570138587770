package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "STORAGE", "MONGO_URI", "MONGO_DATABASE", "REDIS_URI", "PORT",
		"JWT_SECRET", "OWNER_USERNAME", "OWNER_PASSWORD", "DRAFT_TTL", "RESULTS_TTL",
		"CORS_ALLOWED_ORIGINS", "CORS_ALLOWED_METHODS", "CORS_ALLOWED_HEADERS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	payload := `storage: memory
http_port: "9090"
draft_ttl: 30m
redis_addr: cache:6379
`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	clearEnv(t)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7070")
	t.Setenv("REDIS_URI", "redis://other:6380")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, 30*time.Minute, cfg.DraftTTL)
	assert.Equal(t, "7070", cfg.HTTPPort, "environment wins over the file")
	assert.Equal(t, "other:6380", cfg.RedisAddr)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	t.Run("missing file", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("unknown key", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("colour: red\n"), 0o644))
		t.Setenv("CONFIG_FILE", path)
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("DRAFT_TTL", "soon")
		_, err := Load()
		assert.ErrorContains(t, err, "DRAFT_TTL")
	})

	t.Run("unknown storage", func(t *testing.T) {
		t.Setenv("STORAGE", "floppy")
		_, err := Load()
		assert.ErrorContains(t, err, "floppy")
	})
}

func TestTrimRedisScheme(t *testing.T) {
	assert.Equal(t, "redis:6379", trimRedisScheme("redis://redis:6379"))
	assert.Equal(t, "localhost:6379", trimRedisScheme("localhost:6379"))
}
