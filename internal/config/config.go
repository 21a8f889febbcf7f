// Package config provides configuration loading and validation from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration for the Presenza server.
type Config struct {
	LogLevel          string // debug, info, warn, error
	ListenAddr        string // Server listen address (e.g., ":8080")
	DatabasePath      string // SQLite database path
	JWTSecret         string // Required: HMAC secret for session tokens
	BcryptCost        int    // Password hashing cost (0 = library default)
	MetricsListenAddr string // Metrics listener address (e.g., "localhost:9090")
	AdminUsername     string // Optional: bootstrap admin account username
	AdminPassword     string // Optional: bootstrap admin account password
}

// Load parses configuration from environment variables.
// All options except JWT_SECRET have sensible defaults.
func Load() (*Config, error) {
	logLevel := os.Getenv("LOG_LEVEL")
	listenAddr := os.Getenv("LISTEN_ADDR")
	databasePath := os.Getenv("DATABASE_PATH")
	jwtSecret := os.Getenv("JWT_SECRET")
	metricsListenAddr := os.Getenv("METRICS_LISTEN_ADDR")

	if logLevel == "" {
		logLevel = "info"
	}

	if listenAddr == "" {
		listenAddr = ":8080"
	}

	if databasePath == "" {
		databasePath = "/data/presenza.db"
	}

	if metricsListenAddr == "" {
		metricsListenAddr = "localhost:9090"
	}

	bcryptCost := 0
	if raw := os.Getenv("BCRYPT_COST"); raw != "" {
		cost, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid BCRYPT_COST %q: %w", raw, err)
		}
		bcryptCost = cost
	}

	cfg := &Config{
		LogLevel:          logLevel,
		ListenAddr:        listenAddr,
		DatabasePath:      databasePath,
		JWTSecret:         jwtSecret,
		BcryptCost:        bcryptCost,
		MetricsListenAddr: metricsListenAddr,
		AdminUsername:     os.Getenv("ADMIN_USERNAME"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
	}

	return cfg, nil
}

// Validate checks all configuration constraints.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if c.AdminUsername != "" && len(c.AdminPassword) < 8 {
		return fmt.Errorf("ADMIN_PASSWORD must be at least 8 characters when ADMIN_USERNAME is set")
	}
	return nil
}
