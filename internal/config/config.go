package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port            string
	AllowedOrigins  []string
	LogLevel        string
	DatabaseURL     string
	RedisURL        string
	JWTSecret       string
	Environment     string
	DefaultMaxBans  int
	DefaultPoolSize int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		AllowedOrigins:  parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisURL:        getEnv("REDIS_URL", ""),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		Environment:     getEnv("ENVIRONMENT", "production"),
		DefaultMaxBans:  getIntEnv("DEFAULT_MAX_BANS", 2),
		DefaultPoolSize: getIntEnv("DEFAULT_POOL_SIZE", 3),
	}

	if cfg.DefaultMaxBans < 0 {
		return nil, fmt.Errorf("DEFAULT_MAX_BANS must be non-negative, got %d", cfg.DefaultMaxBans)
	}
	if cfg.DefaultPoolSize < 1 {
		return nil, fmt.Errorf("DEFAULT_POOL_SIZE must be positive, got %d", cfg.DefaultPoolSize)
	}

	return cfg, nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
