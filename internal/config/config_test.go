package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.ServerPort)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "http://localhost:8090", cfg.RentalAPIHost)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "ws://localhost:9000", cfg.ChatWSHost)
	assert.Equal(t, "rentdeck.db", cfg.LocalStorePath)
	assert.False(t, cfg.DefaultDarkMode)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "8123")
	t.Setenv("DEBUG", "true")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("DEFAULT_DARK_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8123", cfg.ServerPort)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.DefaultDarkMode)
}

func TestBadEnvValuesFallBack(t *testing.T) {
	t.Setenv("DEBUG", "maybe")
	t.Setenv("REQUEST_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Debug)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}
