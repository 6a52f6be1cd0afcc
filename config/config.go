package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"sjsage522/discountcrawler/internal/browser"
	"sjsage522/discountcrawler/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Output artifact, overwritten on every run
	OutputPath string

	// Browser configuration
	BrowserDriver   string
	BrowserHeadless bool
	BrowserProxy    string
	ScreenshotDir   string

	// Storefront URLs
	CheckersURL string
	TescoURL    string

	// Category keyword rules (YAML); empty uses the built-in rules
	CategoryRulesFile string

	// Redis configuration; empty address disables publishing
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Memcache configuration; an empty address keeps cooldown markers in
	// process memory, so they only outlive a pass in interval mode
	MemcacheAddr string
	// Zero turns the cooldown after an exhausted site off
	SiteCooldown time.Duration

	// Postgres connection string; empty disables the database sink
	DatabaseURL string

	// Zero runs once and exits
	ScrapeInterval time.Duration

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	streamMaxLength, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "1000"))
	cooldown, _ := strconv.Atoi(getEnv("SITE_COOLDOWN_SECONDS", "0"))
	interval, _ := strconv.Atoi(getEnv("SCRAPE_INTERVAL_SECONDS", "0"))
	headless, err := strconv.ParseBool(getEnv("BROWSER_HEADLESS", "true"))
	if err != nil {
		headless = true
	}

	return &Config{
		OutputPath:           getEnv("OUTPUT_PATH", "discounts.json"),
		BrowserDriver:        getEnv("BROWSER_DRIVER", browser.DriverPlaywright),
		BrowserHeadless:      headless,
		BrowserProxy:         getEnv("BROWSER_PROXY", ""),
		ScreenshotDir:        getEnv("SCREENSHOT_DIR", ""),
		CheckersURL:          getEnv("CHECKERS_URL", "https://www.checkers.co.za/m/specials"),
		TescoURL:             getEnv("TESCO_URL", "https://www.tesco.com/groceries/en-GB/promotions"),
		CategoryRulesFile:    getEnv("CATEGORY_RULES_FILE", ""),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "discounts"),
		RedisStreamCount:     streamCount,
		RedisStreamMaxLength: streamMaxLength,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", ""),
		SiteCooldown:         time.Duration(cooldown) * time.Second,
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		ScrapeInterval:       time.Duration(interval) * time.Second,
		Environment:          getEnv("DISCOUNT_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the services cannot run with
func (c *Config) Validate() error {
	switch c.BrowserDriver {
	case browser.DriverPlaywright, browser.DriverChromedp, browser.DriverStatic:
	default:
		return errors.NewConfiguration(fmt.Sprintf("unknown BROWSER_DRIVER %q", c.BrowserDriver), nil)
	}

	if c.OutputPath == "" {
		return errors.NewConfiguration("OUTPUT_PATH must not be empty", nil)
	}

	if c.ScrapeInterval < 0 {
		return errors.NewConfiguration("SCRAPE_INTERVAL_SECONDS must not be negative", nil)
	}

	if c.RedisAddr != "" && c.RedisStreamCount < 1 {
		return errors.NewConfiguration("REDIS_STREAM_COUNT must be at least 1", nil)
	}

	if c.SiteCooldown < 0 {
		return errors.NewConfiguration("SITE_COOLDOWN_SECONDS must not be negative", nil)
	}

	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
