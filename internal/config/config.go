// Package config reads the process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every runtime knob of the API process.
type Config struct {
	DatabaseURL     string
	Port            string
	JWTSecret       string
	RootUsername    string
	RootPassword    string
	Workers         int
	RateLimitMax    int
	RateLimitWindow time.Duration
	TokenTTL        time.Duration
}

// FromEnv loads the configuration. JWT_SECRET is mandatory; DATABASE_URL
// may be empty, in which case the process runs on the in-memory store.
func FromEnv() (Config, error) {
	cfg := Config{
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		Port:            getEnv("PORT", "8080"),
		JWTSecret:       strings.TrimSpace(os.Getenv("JWT_SECRET")),
		RootUsername:    getEnv("ROOT_USERNAME", "root"),
		RootPassword:    strings.TrimSpace(os.Getenv("ROOT_PASSWORD")),
		Workers:         getEnvInt("WORKER_POOL_SIZE", 8),
		RateLimitMax:    getEnvInt("RATE_LIMIT_TX_MAX", 60),
		RateLimitWindow: time.Duration(getEnvInt("RATE_LIMIT_TX_WINDOW_SECONDS", 60)) * time.Second,
		TokenTTL:        time.Duration(getEnvInt("TOKEN_TTL_HOURS", 12)) * time.Hour,
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is not set")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
