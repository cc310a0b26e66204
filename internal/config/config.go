// ABOUTME: Centralized configuration for the activity store
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/harper/activities/internal/storage/sqlite"
)

// Config holds all configuration for the activity store
type Config struct {
	// Storage settings
	DataDir        string
	DBPath         string
	AttachmentsDir string

	// Owner of activities created from this process
	UserID string

	// Activity settings
	DefaultCurrency string
	ListLimit       int

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	dataDir := getEnv("ACTIVITIES_DATA_DIR", sqlite.DefaultDataDir())

	cfg := &Config{
		DataDir:         dataDir,
		DBPath:          getEnv("ACTIVITIES_DB_PATH", filepath.Join(dataDir, "activities.db")),
		AttachmentsDir:  getEnv("ACTIVITIES_ATTACHMENTS_DIR", filepath.Join(dataDir, "attachments")),
		UserID:          getEnv("ACTIVITIES_USER_ID", "local"),
		DefaultCurrency: strings.ToUpper(getEnv("ACTIVITIES_DEFAULT_CURRENCY", "INR")),
		ListLimit:       getEnvInt("ACTIVITIES_LIST_LIMIT", 20),
		LogLevel:        strings.ToLower(getEnv("ACTIVITIES_LOG_LEVEL", "warn")),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("ACTIVITIES_USER_ID must not be empty")
	}
	if len(c.DefaultCurrency) != 3 {
		return fmt.Errorf("ACTIVITIES_DEFAULT_CURRENCY must be a 3-letter code, got %q", c.DefaultCurrency)
	}
	if c.ListLimit < 1 || c.ListLimit > 1000 {
		return fmt.Errorf("ACTIVITIES_LIST_LIMIT must be 1-1000, got %d", c.ListLimit)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("ACTIVITIES_LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
