package crawler

import (
	"strconv"
	"time"

	"sjsage522/discountcrawler/internal/browser"
	"sjsage522/discountcrawler/logger"
	"sjsage522/discountcrawler/services/cache"
)

// BaseCrawler provides the cooldown bookkeeping and the product loop shared by site scrapers
type BaseCrawler struct {
	CacheKey  string
	CacheSvc  cache.CacheService
	BlockTime time.Duration
}

// coolingDown reports whether an earlier exhausted pass blocked the site
func (c *BaseCrawler) coolingDown() bool {
	if c.CacheSvc == nil || c.CacheKey == "" {
		return false
	}
	_, err := c.CacheSvc.Get(c.CacheKey)
	return err == nil
}

// startCooldown blocks the site for BlockTime
func (c *BaseCrawler) startCooldown(log *logger.Logger) {
	if c.CacheSvc == nil || c.CacheKey == "" || c.BlockTime <= 0 {
		return
	}

	seconds := strconv.Itoa(int(c.BlockTime / time.Second))
	if err := c.CacheSvc.Set(c.CacheKey, []byte(seconds), c.BlockTime); err != nil {
		log.Warn().Err(err).Str("key", c.CacheKey).Msg("Failed to set cooldown")
		return
	}
	log.Info().Str("key", c.CacheKey).Str("seconds", seconds).Msg("Cooldown started")
}

// processProducts extracts every element in order. Skips are counted by
// reason and never stop the loop.
func (c *BaseCrawler) processProducts(elements []browser.Element, extract func(browser.Element) ProductResult, log *logger.Logger) ([]DiscountRecord, map[string]int) {
	records := make([]DiscountRecord, 0, len(elements))
	skips := make(map[string]int)

	for i, el := range elements {
		result := extract(el)
		if result.Record != nil {
			records = append(records, *result.Record)
			continue
		}

		skips[result.Skip]++
		event := log.Debug().Int("index", i).Str("reason", result.Skip)
		if result.Err != nil {
			event = event.Err(result.Err)
		}
		event.Msg("Product skipped")
	}

	return records, skips
}
