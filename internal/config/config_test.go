package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 2, cfg.DefaultMaxBans)
	assert.Equal(t, 3, cfg.DefaultPoolSize)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DEFAULT_MAX_BANS", "5")
	t.Setenv("DEFAULT_POOL_SIZE", "4")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5, cfg.DefaultMaxBans)
	assert.Equal(t, 4, cfg.DefaultPoolSize)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
}

func TestLoadRejectsInvalidDefaults(t *testing.T) {
	t.Setenv("DEFAULT_MAX_BANS", "-1")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsZeroPoolSize(t *testing.T) {
	t.Setenv("DEFAULT_POOL_SIZE", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetIntEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("DEFAULT_POOL_SIZE", "banana")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.DefaultPoolSize)
}
