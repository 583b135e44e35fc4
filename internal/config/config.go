// Package config loads application configuration from the environment.
//
// Configuration is read once at startup and passed down explicitly — nothing
// in this package (or anywhere else) keeps process-wide mutable state. A .env
// file in the working directory is loaded if present, so local development
// doesn't need exported variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment values recognized in APP_ENV. Anything other than
// "development" is treated as production for cookie hardening.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds everything the server needs, read from environment variables.
type Config struct {
	Port           int      // PORT — HTTP listen port
	DBPath         string   // DB_PATH — SQLite database file
	JWTSecret      string   // JWT_USER_SECRET — HMAC key for session tokens
	Environment    string   // APP_ENV — development or production
	AllowedOrigins []string // ALLOWED_ORIGINS — comma-separated CORS origins
}

// Load reads configuration from the environment, loading a .env file first
// if one exists. It returns an error if a required value is missing or
// malformed; the caller is expected to exit.
func Load() (*Config, error) {
	// Missing .env is fine — real deployments export variables directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        8080,
		DBPath:      getEnv("DB_PATH", "data/credcloud.db"),
		JWTSecret:   os.Getenv("JWT_USER_SECRET"),
		Environment: getEnv("APP_ENV", EnvDevelopment),
		AllowedOrigins: splitOrigins(getEnv("ALLOWED_ORIGINS",
			"http://localhost:3000,http://localhost:3001")),
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("config: invalid PORT value %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_USER_SECRET must be set")
	}

	return cfg, nil
}

// IsDevelopment reports whether the server runs with relaxed cookie
// attributes (Secure off, SameSite=Lax).
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitOrigins(s string) []string {
	var origins []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
