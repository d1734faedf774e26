package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, "inklane.db", cfg.SQLitePath)
	assert.Equal(t, "inklane", cfg.JWTIssuer)
	assert.Equal(t, 30*24*time.Hour, cfg.SigningTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9000")
	t.Setenv("SIGNING_TOKEN_TTL", "720h")
	t.Setenv("BASE_URL", "https://contracts.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 720*time.Hour, cfg.SigningTokenTTL)
	assert.Equal(t, "https://contracts.example.com", cfg.BaseURL)
}

func TestValidate(t *testing.T) {
	t.Run("requires a token verification source", func(t *testing.T) {
		cfg := &Config{Port: 8080, SigningTokenTTL: time.Hour}
		require.Error(t, cfg.Validate())

		cfg.JWKSURL = "https://idp.example.com/jwks"
		require.NoError(t, cfg.Validate())
	})

	t.Run("rejects bad port", func(t *testing.T) {
		cfg := &Config{JWTSecret: "s", Port: 0, SigningTokenTTL: time.Hour}
		require.Error(t, cfg.Validate())
	})

	t.Run("rejects non-positive token ttl", func(t *testing.T) {
		cfg := &Config{JWTSecret: "s", Port: 8080}
		require.Error(t, cfg.Validate())
	})
}
