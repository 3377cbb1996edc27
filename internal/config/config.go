// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir              string  // Base directory for the history database (always absolute)
	Port                 int     // HTTP API port
	LogLevel             string  // debug, info, warn, error
	DevMode              bool    // Enables permissive CORS for local UI development
	DefaultPositionValue float64 // Position value used when a request omits one
	DefaultLookbackDays  int     // Price history window for risk calculations
	AlertCapacity        int     // Ring buffer size for the breach alert monitor
	BreachCheckSchedule  string  // Cron schedule for the breach check job
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("RISKWATCH_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:              absDataDir,
		Port:                 getEnvAsInt("RISKWATCH_PORT", 8010),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		DevMode:              getEnvAsBool("DEV_MODE", false),
		DefaultPositionValue: getEnvAsFloat("DEFAULT_POSITION_VALUE", 1_000_000),
		DefaultLookbackDays:  getEnvAsInt("DEFAULT_LOOKBACK_DAYS", 252),
		AlertCapacity:        getEnvAsInt("ALERT_CAPACITY", 100),
		BreachCheckSchedule:  getEnv("BREACH_CHECK_SCHEDULE", "@every 5m"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.DefaultPositionValue <= 0 {
		return fmt.Errorf("default position value must be positive, got %.2f", c.DefaultPositionValue)
	}
	if c.AlertCapacity <= 0 {
		return fmt.Errorf("alert capacity must be positive, got %d", c.AlertCapacity)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
