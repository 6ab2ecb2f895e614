package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Completion service
	ClaudeAPIKey      string
	FastModel         string
	CapableModel      string
	MaxClaudeRequests int // per run, 0 = unlimited

	// Search service
	BraveAPIKey       string
	MaxSearchRequests int

	// Optional RSS supplement
	FeedsConfigPath string

	// Pipeline limits
	TargetArticles    int
	ScrapeMaxArticles int
	ScrapeDelay       time.Duration
	ArchiveWindowDays int

	// Storage and output
	DatabaseURL string
	ArchivePath string
	OutputPath  string

	// App settings
	MinRequestSpacing time.Duration
	Debug             bool
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		FastModel:         "claude-3-5-haiku-20241022",
		CapableModel:      "claude-sonnet-4-20250514",
		TargetArticles:    10,
		ScrapeMaxArticles: 10,
		ScrapeDelay:       500 * time.Millisecond,
		ArchiveWindowDays: 14,
		ArchivePath:       "digest_history.json",
		OutputPath:        "news_data.json",
		MinRequestSpacing: 1 * time.Second,
	}

	// Load from environment
	cfg.ClaudeAPIKey = os.Getenv("CLAUDE_API_KEY")
	cfg.BraveAPIKey = os.Getenv("BRAVE_API_KEY")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.FeedsConfigPath = os.Getenv("FEEDS_CONFIG_PATH")

	cfg.ArchivePath = getEnvOrDefault("ARCHIVE_PATH", cfg.ArchivePath)
	cfg.OutputPath = getEnvOrDefault("OUTPUT_PATH", cfg.OutputPath)
	cfg.FastModel = getEnvOrDefault("CLAUDE_FAST_MODEL", cfg.FastModel)
	cfg.CapableModel = getEnvOrDefault("CLAUDE_CAPABLE_MODEL", cfg.CapableModel)

	cfg.MaxClaudeRequests = getEnvIntOrDefault("MAX_CLAUDE_REQUESTS", 0)
	cfg.MaxSearchRequests = getEnvIntOrDefault("MAX_SEARCH_REQUESTS", 0)
	cfg.ArchiveWindowDays = getEnvIntOrDefault("ARCHIVE_WINDOW_DAYS", cfg.ArchiveWindowDays)

	if v := os.Getenv("TARGET_ARTICLES"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.TargetArticles = val
		}
	}
	if v := os.Getenv("SCRAPE_MAX_ARTICLES"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.ScrapeMaxArticles = val
		}
	}
	if v := os.Getenv("MIN_REQUEST_SPACING_MS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			cfg.MinRequestSpacing = time.Duration(val) * time.Millisecond
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.ClaudeAPIKey == "" {
		return fmt.Errorf("CLAUDE_API_KEY is required")
	}
	if c.BraveAPIKey == "" && c.FeedsConfigPath == "" {
		return fmt.Errorf("BRAVE_API_KEY is required when no feeds config is set")
	}
	if c.TargetArticles <= 0 {
		return fmt.Errorf("TARGET_ARTICLES must be positive")
	}
	if c.ArchiveWindowDays <= 0 {
		return fmt.Errorf("ARCHIVE_WINDOW_DAYS must be positive")
	}
	return nil
}
