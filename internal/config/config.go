// Package config loads process configuration from the environment once
// at startup. The resulting struct is passed explicitly into the
// constructors that need it; there is no global configuration state.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the full server configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port string

	// DatabaseURL selects the Postgres stores when set; when empty the
	// server runs on the in-memory stores.
	DatabaseURL string

	// SessionTTL is the sliding session lifetime.
	SessionTTL time.Duration

	// OTLPEndpoint enables trace export when set (host:port of an
	// OTLP/HTTP collector).
	OTLPEndpoint string

	// SeedDemoUsers controls whether the demo accounts are created on
	// startup when missing.
	SeedDemoUsers bool
}

// Load reads the configuration from environment variables, applying
// defaults for anything unset.
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		SessionTTL:    time.Duration(getEnvInt("SESSION_TTL_HOURS", 8)) * time.Hour,
		OTLPEndpoint:  getEnv("OTLP_ENDPOINT", ""),
		SeedDemoUsers: getEnvBool("SEED_DEMO_USERS", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
