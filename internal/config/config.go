// Package config loads client and daemon settings from the environment.
package config

import (
	"os"
	"strconv"
)

// Config carries every tunable. Unset variables fall back to defaults that
// match a local single-machine setup.
type Config struct {
	// Daemon settings.
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds

	// Client settings.
	ServiceURL  string
	HTTPTimeout int // seconds
}

// Load reads the configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "3000"),
		ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
		ServiceURL:   getEnv("ANNOTATED_URL", "http://localhost:3000"),
		HTTPTimeout:  getEnvAsInt("HTTP_TIMEOUT", 15),
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}
