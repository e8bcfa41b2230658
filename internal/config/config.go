// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/logging"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/roblox"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/search"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/wealth"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/workpool"
)

// DefaultUserAgent identifies the tool to Roblox when ROBLOX_USER_AGENT is unset.
const DefaultUserAgent = "richest-group-members/1.0"

// Config is the environment configuration shared by the CLI and the server.
type Config struct {
	UserAgent    string
	GroupsURL    string
	InventoryURL string
	CatalogURL   string

	RequestTimeout time.Duration

	Concurrency   int
	Threshold     float64
	CreatorFilter bool

	PageDelay time.Duration // pause between list pages, e.g. 100ms

	CacheTTL time.Duration
	RedisURL string // empty: in-process memory cache

	DatabaseURL string // empty: snapshots kept in memory
	Port        string

	LogLevel  string
	LogPretty bool
}

// Load reads the configuration from the environment. Call godotenv.Load
// first to pick up a .env file.
func Load() (*Config, error) {
	defaults := roblox.DefaultEndpoints()

	cfg := &Config{
		UserAgent:    getEnv("ROBLOX_USER_AGENT", DefaultUserAgent),
		GroupsURL:    strings.TrimRight(getEnv("ROBLOX_GROUPS_URL", defaults.Groups), "/"),
		InventoryURL: strings.TrimRight(getEnv("ROBLOX_INVENTORY_URL", defaults.Inventory), "/"),
		CatalogURL:   strings.TrimRight(getEnv("ROBLOX_CATALOG_URL", defaults.Catalog), "/"),
		RedisURL:     getEnv("REDIS_URL", ""),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.PageDelay, err = getDuration("PAGE_DELAY", 0); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = getInt("SEARCH_CONCURRENCY", workpool.DefaultLimit); err != nil {
		return nil, err
	}
	if cfg.Threshold, err = getFloat("SEARCH_THRESHOLD", wealth.DefaultThreshold); err != nil {
		return nil, err
	}
	if cfg.CreatorFilter, err = getBool("SEARCH_CREATOR_FILTER", false); err != nil {
		return nil, err
	}
	if cfg.LogPretty, err = getBool("LOG_PRETTY", false); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.UserAgent == "" {
		return fmt.Errorf("ROBLOX_USER_AGENT must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0 (got %s)", c.RequestTimeout)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("SEARCH_CONCURRENCY must be > 0 (got %d)", c.Concurrency)
	}
	if c.Threshold < 0 {
		return fmt.Errorf("SEARCH_THRESHOLD must be >= 0 (got %v)", c.Threshold)
	}
	if c.PageDelay < 0 {
		return fmt.Errorf("PAGE_DELAY must be >= 0 (got %s)", c.PageDelay)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must be >= 0 (got %s)", c.CacheTTL)
	}
	return nil
}

// Endpoints returns the configured Roblox base URLs.
func (c *Config) Endpoints() roblox.Endpoints {
	return roblox.Endpoints{
		Groups:    c.GroupsURL,
		Inventory: c.InventoryURL,
		Catalog:   c.CatalogURL,
	}
}

// SearchOptions returns search defaults derived from the configuration.
func (c *Config) SearchOptions() search.Options {
	opts := search.DefaultOptions()
	opts.ConcurrencyLimit = c.Concurrency
	opts.Threshold = c.Threshold
	opts.UseCreatorFilter = c.CreatorFilter
	return opts
}

// Logging returns the logger configuration.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.LogLevel)
	cfg.Pretty = c.LogPretty
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	// bare numbers are seconds
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return f, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}
