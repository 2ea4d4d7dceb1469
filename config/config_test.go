package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 300, cfg.App.QRSize)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 24, cfg.JWT.ExpireHours)
	assert.Equal(t, 15, cfg.AWS.PresignExpireMinutes)
	assert.Empty(t, cfg.AI.BaseURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PUBLIC_BASE_URL", "https://events.cyberlab.example/")
	t.Setenv("QR_SIZE_PX", "512")
	t.Setenv("AI_BASE_URL", "https://api.openai.com/v1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	// Trailing slash is stripped so QR URLs join cleanly.
	assert.Equal(t, "https://events.cyberlab.example", cfg.App.PublicBaseURL)
	assert.Equal(t, 512, cfg.App.QRSize)
	assert.Equal(t, "https://api.openai.com/v1", cfg.AI.BaseURL)
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{
		Host: "db", Port: "5432", User: "app", Password: "pw",
		DBName: "cyberlab", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://app:pw@db:5432/cyberlab?sslmode=disable", db.DSN())

	db.URL = "postgres://elsewhere:5432/other"
	assert.Equal(t, "postgres://elsewhere:5432/other", db.DSN())
}
