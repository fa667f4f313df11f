package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	HTTP     HTTPConfig
	Static   StaticConfig
	Log      LogConfig
	Health   HealthConfig
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Path string // SQLite database file path
}

// HTTPConfig contains HTTP server settings.
type HTTPConfig struct {
	Address string // HTTP listen address (e.g., ":8000")
}

// StaticConfig describes where front-end assets are served from.
type StaticConfig struct {
	Dir   string // asset root
	Index string // document served for directory requests
}

// LogConfig contains log sink settings.
type LogConfig struct {
	Dir string // directory receiving one log file per run
}

// HealthConfig contains the gRPC health service settings.
type HealthConfig struct {
	Address  string        // gRPC listen address; empty disables the service
	Interval time.Duration // how often the database is pinged
}

// Load loads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	intervalSec, err := getEnvInt("HEALTH_INTERVAL_SECONDS", 10)
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "database.db"),
		},
		HTTP: HTTPConfig{
			Address: getEnv("HTTP_ADDRESS", ":8000"),
		},
		Static: StaticConfig{
			Dir:   getEnv("STATIC_DIR", "static"),
			Index: getEnv("STATIC_INDEX", "index.html"),
		},
		Log: LogConfig{
			Dir: getEnv("LOG_DIR", ".logs"),
		},
		Health: HealthConfig{
			Address:  getEnv("GRPC_HEALTH_ADDRESS", ":50051"),
			Interval: time.Duration(intervalSec) * time.Second,
		},
	}

	// Validate critical settings
	if strings.TrimSpace(cfg.HTTP.Address) == "" {
		return nil, fmt.Errorf("HTTP_ADDRESS must not be empty")
	}
	if strings.TrimSpace(cfg.Static.Index) == "" {
		return nil, fmt.Errorf("STATIC_INDEX must not be empty")
	}
	if cfg.Health.Interval <= 0 {
		return nil, fmt.Errorf("HEALTH_INTERVAL_SECONDS must be positive, got %d", intervalSec)
	}

	return cfg, nil
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// getEnvInt retrieves an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultVal int) (int, error) {
	if value, exists := os.LookupEnv(key); exists {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return intVal, nil
	}
	return defaultVal, nil
}

// String returns a string representation of the config.
func (c *Config) String() string {
	health := c.Health.Address
	if health == "" {
		health = "disabled"
	}
	return fmt.Sprintf("Config{DB: %s, HTTP: %s, Static: %s/%s, Logs: %s, Health: %s every %s}",
		c.Database.Path, c.HTTP.Address, c.Static.Dir, c.Static.Index, c.Log.Dir, health, c.Health.Interval)
}
