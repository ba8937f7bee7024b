// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 8*time.Hour, cfg.SessionTTL)
	assert.Empty(t, cfg.OTLPEndpoint)
	assert.True(t, cfg.SeedDemoUsers)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/biblioteca")
	t.Setenv("SESSION_TTL_HOURS", "2")
	t.Setenv("OTLP_ENDPOINT", "collector:4318")
	t.Setenv("SEED_DEMO_USERS", "false")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres://localhost/biblioteca", cfg.DatabaseURL)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "collector:4318", cfg.OTLPEndpoint)
	assert.False(t, cfg.SeedDemoUsers)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SESSION_TTL_HOURS", "soon")
	t.Setenv("SEED_DEMO_USERS", "maybe")

	cfg := Load()

	assert.Equal(t, 8*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.SeedDemoUsers)
}
