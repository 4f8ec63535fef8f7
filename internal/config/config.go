// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an
// error.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the server.
type Config struct {
	Port          string
	DatabaseURL   string
	RedisURL      string
	GeminiAPIKey  string
	GeminiModel   string
	OracleTimeout time.Duration
	RetentionDays int // read notifications older than this are purged
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	timeout := 20 * time.Second
	if s := os.Getenv("ORACLE_TIMEOUT_SECONDS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("ORACLE_TIMEOUT_SECONDS must be a positive integer, got %q", s)
		}
		timeout = time.Duration(v) * time.Second
	}

	retention := 30
	if s := os.Getenv("NOTIFICATION_RETENTION_DAYS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("NOTIFICATION_RETENTION_DAYS must be a positive integer, got %q", s)
		}
		retention = v
	}

	return &Config{
		Port:          port,
		DatabaseURL:   dbURL,
		RedisURL:      redisURL,
		GeminiAPIKey:  apiKey,
		GeminiModel:   os.Getenv("GEMINI_MODEL"),
		OracleTimeout: timeout,
		RetentionDays: retention,
	}, nil
}
