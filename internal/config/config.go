// Package config handles loading and validating configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Data sources.
const (
	SourceHyperliquid = "hyperliquid"
	SourceSimulated   = "simulated"
)

// Config holds all configuration values for the dashboard.
type Config struct {
	// Data source
	DataSource string

	// Hyperliquid API
	APIURL         string
	LeaderboardURL string
	APIKey         string
	RequestTimeout time.Duration
	RateLimit      float64
	RateBurst      int
	CacheTTL       time.Duration

	// Views
	LeaderboardLimit int
	WhaleMinBalance  float64
	LiveRefresh      time.Duration
	TrackTopN        int
	WatchlistPath    string

	// Export
	ExportDir string

	// Metrics
	PrometheusPort int

	// UI
	EnableTUI     bool
	UIRefreshRate time.Duration

	// Logging
	LogLevel string
	LogFile  string

	// Simulation
	SimSeed        int64
	SimLatency     time.Duration
	SimFailureRate float64
}

// Load reads configuration from environment variables with fallback to .env file.
// Priority order: Environment variables > .env file > hardcoded defaults
func Load() (*Config, error) {
	// Attempt to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DataSource: strings.ToLower(getEnv("DATA_SOURCE", SourceHyperliquid)),

		// Hyperliquid
		APIURL:         getEnv("HYPERLIQUID_API_URL", "https://api.hyperliquid.xyz"),
		LeaderboardURL: getEnv("HYPERLIQUID_LEADERBOARD_URL", "https://stats-data.hyperliquid.xyz/Mainnet/leaderboard"),
		APIKey:         getEnv("HYPERLIQUID_API_KEY", ""),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		RateLimit:      getEnvFloat("API_RATE_LIMIT", 5),
		RateBurst:      getEnvInt("API_RATE_BURST", 10),
		CacheTTL:       time.Duration(getEnvInt("CACHE_TTL_SECONDS", 30)) * time.Second,

		// Views
		LeaderboardLimit: getEnvInt("LEADERBOARD_LIMIT", 100),
		WhaleMinBalance:  getEnvFloat("WHALE_MIN_BALANCE", 1_000_000),
		LiveRefresh:      time.Duration(getEnvInt("LIVE_REFRESH_SECONDS", 30)) * time.Second,
		TrackTopN:        getEnvInt("TRACK_TOP_N", 20),
		WatchlistPath:    getEnv("WATCHLIST_PATH", "./watchlist.yaml"),

		// Export
		ExportDir: getEnv("EXPORT_DIR", "./exports"),

		// Metrics
		PrometheusPort: getEnvInt("PROMETHEUS_PORT", 0),

		// UI
		EnableTUI:     getEnvBool("ENABLE_TUI", true),
		UIRefreshRate: time.Duration(getEnvInt("UI_REFRESH_MS", 500)) * time.Millisecond,

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
		LogFile:  getEnv("LOG_FILE", "./logs/dashboard.log"),

		// Simulation
		SimSeed:        int64(getEnvInt("SIM_SEED", 42)),
		SimLatency:     time.Duration(getEnvInt("SIM_LATENCY_MS", 300)) * time.Millisecond,
		SimFailureRate: getEnvFloat("SIM_FAILURE_RATE", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set and valid.
func (c *Config) Validate() error {
	if c.DataSource != SourceHyperliquid && c.DataSource != SourceSimulated {
		return fmt.Errorf("DATA_SOURCE must be %q or %q, got %q", SourceHyperliquid, SourceSimulated, c.DataSource)
	}

	if c.DataSource == SourceHyperliquid {
		if c.APIURL == "" {
			return fmt.Errorf("HYPERLIQUID_API_URL is required")
		}
		if c.LeaderboardURL == "" {
			return fmt.Errorf("HYPERLIQUID_LEADERBOARD_URL is required")
		}
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive")
	}

	if c.RateLimit <= 0 || c.RateBurst < 1 {
		return fmt.Errorf("API_RATE_LIMIT must be positive and API_RATE_BURST at least 1")
	}

	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must not be negative")
	}

	if c.LeaderboardLimit < 1 {
		return fmt.Errorf("LEADERBOARD_LIMIT must be at least 1")
	}

	if c.WhaleMinBalance <= 0 {
		return fmt.Errorf("WHALE_MIN_BALANCE must be positive")
	}

	if c.LiveRefresh < time.Second {
		return fmt.Errorf("LIVE_REFRESH_SECONDS must be at least 1")
	}

	if c.TrackTopN < 1 {
		return fmt.Errorf("TRACK_TOP_N must be at least 1")
	}

	if c.ExportDir == "" {
		return fmt.Errorf("EXPORT_DIR is required")
	}

	if c.PrometheusPort < 0 || c.PrometheusPort > 65535 {
		return fmt.Errorf("PROMETHEUS_PORT must be between 0 (disabled) and 65535")
	}

	if c.UIRefreshRate <= 0 {
		return fmt.Errorf("UI_REFRESH_MS must be positive")
	}

	if c.SimFailureRate < 0 || c.SimFailureRate > 1 {
		return fmt.Errorf("SIM_FAILURE_RATE must be between 0 and 1")
	}

	return nil
}

// Simulated reports whether the simulated data source is selected.
func (c *Config) Simulated() bool {
	return c.DataSource == SourceSimulated
}

// MaskedAPIKey returns the API key with most characters hidden for logging.
func (c *Config) MaskedAPIKey() string {
	return maskSecret(c.APIKey)
}

// maskSecret hides all but the first and last 4 characters of a secret.
func maskSecret(s string) string {
	if len(s) <= 8 {
		if len(s) == 0 {
			return "(not set)"
		}
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as an integer or returns a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat retrieves an environment variable as a float64 or returns a default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvBool retrieves an environment variable as a boolean or returns a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
