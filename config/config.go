// Package config collects the environment settings the server reads at boot.
package config

import (
	"os"
	"strconv"
)

// Config holds the runtime settings for the backend.
type Config struct {
	Port        string
	DatabaseURL string
	NATSPort    int
	Env         string
}

// Load reads configuration from the environment with development defaults.
func Load() Config {
	cfg := Config{
		Port:        getenv("PORT", "3001"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		NATSPort:    getenvInt("NATS_PORT", 4233),
		Env:         getenv("ENV", "development"),
	}
	return cfg
}

// Production reports whether the deployment is a real one. Dashboard browsers
// only get the one-day date-skew correction against production data; local
// development shares the server's clock and must never be shifted.
func (c Config) Production() bool {
	return c.Env == "production"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
