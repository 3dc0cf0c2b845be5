// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/minty/internal/utils"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port       int
	DevMode    bool
	LogLevel   string
	BackendURL string
	// APIToken is used for portfolio views mounted without a bearer token
	APIToken string
	// CachePath is the sqlite file for backend responses; empty keeps the cache in memory
	CachePath       string
	BackendTimeout  time.Duration
	MarketCacheTTL  time.Duration
	StartingCash    float64
	PortfolioEvery  time.Duration
	PriceEvery      time.Duration
	StockEvery      time.Duration
	// ViewIdleTimeout reclaims views nobody streams or requests; zero keeps them
	ViewIdleTimeout time.Duration
	DisplayTimezone string
	Location        *time.Location
	AllowedOrigins  []string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvAsInt("MINTY_PORT", 8080),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		BackendURL:      strings.TrimRight(getEnv("MINTY_BACKEND_URL", "http://localhost:5001"), "/"),
		APIToken:        getEnv("MINTY_API_TOKEN", ""),
		CachePath:       getEnv("CACHE_DB_PATH", ""),
		BackendTimeout:  getEnvAsDuration("BACKEND_TIMEOUT", 10*time.Second),
		MarketCacheTTL:  getEnvAsDuration("MARKET_CACHE_TTL", 10*time.Second),
		StartingCash:    getEnvAsFloat("REPLAY_STARTING_CASH", 100000),
		PortfolioEvery:  getEnvAsDuration("PORTFOLIO_REFRESH_INTERVAL", 2*time.Minute),
		PriceEvery:      getEnvAsDuration("PRICE_REFRESH_INTERVAL", 30*time.Second),
		StockEvery:      getEnvAsDuration("STOCK_REFRESH_INTERVAL", 15*time.Second),
		ViewIdleTimeout: getEnvAsDuration("VIEW_IDLE_TIMEOUT", 10*time.Minute),
		DisplayTimezone: getEnv("DISPLAY_TIMEZONE", "Local"),
		AllowedOrigins:  utils.ParseCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	loc, err := time.LoadLocation(cfg.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", cfg.DisplayTimezone, err)
	}
	cfg.Location = loc

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("MINTY_BACKEND_URL is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("MINTY_PORT must be between 1 and 65535, got %d", c.Port)
	}

	intervals := []struct {
		name  string
		value time.Duration
	}{
		{"BACKEND_TIMEOUT", c.BackendTimeout},
		{"MARKET_CACHE_TTL", c.MarketCacheTTL},
		{"PORTFOLIO_REFRESH_INTERVAL", c.PortfolioEvery},
		{"PRICE_REFRESH_INTERVAL", c.PriceEvery},
		{"STOCK_REFRESH_INTERVAL", c.StockEvery},
	}
	for _, iv := range intervals {
		if iv.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", iv.name, iv.value)
		}
	}

	if c.ViewIdleTimeout < 0 {
		return fmt.Errorf("VIEW_IDLE_TIMEOUT must not be negative, got %s", c.ViewIdleTimeout)
	}
	if c.StartingCash < 0 {
		return fmt.Errorf("REPLAY_STARTING_CASH must not be negative, got %v", c.StartingCash)
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
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
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

// getEnvAsDuration accepts Go durations ("90s", "2m") or plain seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
