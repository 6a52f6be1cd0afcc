package config

import (
	"testing"
	"time"

	"sjsage522/discountcrawler/internal/browser"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "discounts.json", config.OutputPath)
	assert.Equal(t, browser.DriverPlaywright, config.BrowserDriver)
	assert.True(t, config.BrowserHeadless)
	assert.Equal(t, "https://www.checkers.co.za/m/specials", config.CheckersURL)
	assert.Equal(t, "https://www.tesco.com/groceries/en-GB/promotions", config.TescoURL)
	assert.Empty(t, config.RedisAddr)
	assert.Equal(t, 1, config.RedisStreamCount)
	assert.Empty(t, config.MemcacheAddr)
	assert.Zero(t, config.SiteCooldown, "cooldown is off unless configured")
	assert.Equal(t, time.Duration(0), config.ScrapeInterval)
	assert.NoError(t, config.Validate())

	// Test with environment variables
	t.Setenv("OUTPUT_PATH", "/tmp/out.json")
	t.Setenv("BROWSER_DRIVER", "static")
	t.Setenv("BROWSER_HEADLESS", "false")
	t.Setenv("CHECKERS_URL", "file:///tmp/checkers.html")
	t.Setenv("REDIS_ADDR", "redis.example.com:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REDIS_STREAM_COUNT", "4")
	t.Setenv("MEMCACHE_ADDR", "memcache.example.com:11211")
	t.Setenv("SITE_COOLDOWN_SECONDS", "60")
	t.Setenv("SCRAPE_INTERVAL_SECONDS", "3600")

	config = LoadConfig()
	assert.Equal(t, "/tmp/out.json", config.OutputPath)
	assert.Equal(t, browser.DriverStatic, config.BrowserDriver)
	assert.False(t, config.BrowserHeadless)
	assert.Equal(t, "file:///tmp/checkers.html", config.CheckersURL)
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)
	assert.Equal(t, 2, config.RedisDB)
	assert.Equal(t, 4, config.RedisStreamCount)
	assert.Equal(t, "memcache.example.com:11211", config.MemcacheAddr)
	assert.Equal(t, time.Minute, config.SiteCooldown)
	assert.Equal(t, time.Hour, config.ScrapeInterval)
	assert.NoError(t, config.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown driver", func(c *Config) { c.BrowserDriver = "selenium" }, "unknown BROWSER_DRIVER"},
		{"empty output", func(c *Config) { c.OutputPath = "" }, "OUTPUT_PATH"},
		{"negative interval", func(c *Config) { c.ScrapeInterval = -time.Second }, "SCRAPE_INTERVAL_SECONDS"},
		{"no streams", func(c *Config) { c.RedisAddr = "localhost:6379"; c.RedisStreamCount = 0 }, "REDIS_STREAM_COUNT"},
		{"negative cooldown", func(c *Config) { c.SiteCooldown = -time.Second }, "SITE_COOLDOWN_SECONDS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := LoadConfig()
			tt.mutate(config)
			err := config.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
