package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Hour, cfg.RedisTTL)
	assert.Equal(t, "devices", cfg.MQTTTopicPrefix)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "http://localhost:8080", cfg.APIBaseURL)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.MQTTBroker)
	assert.Zero(t, cfg.RandomSeed)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("RANDOM_SEED", "42")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_TTL", "10m")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, http://example.com")

	cfg, err := load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, uint64(42), cfg.RandomSeed)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 10*time.Minute, cfg.RedisTTL)
	assert.Equal(t, []string{"http://localhost:5173", "http://example.com"}, cfg.CORSOrigins)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "HTTP_ADDR: \":7000\"\nMQTT_BROKER: tcp://broker:1883\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := load(dir)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.HTTPAddr)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTTBroker)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("LOG_LEVEL: warn\n"), 0o644))
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestRejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("REDIS_TTL", "0s")

	_, err := load(t.TempDir())

	assert.ErrorContains(t, err, "REDIS_TTL")
}
