package crawler

import (
	"context"
	"sort"
	"strings"
	"time"

	"sjsage522/discountcrawler/config"
	"sjsage522/discountcrawler/internal/browser"
	"sjsage522/discountcrawler/logger"
	"sjsage522/discountcrawler/services/cache"
)

// consentSelector is the OneTrust accept button used by both storefronts
const consentSelector = "#onetrust-accept-btn-handler"

// CheckersProfile is the Checkers mobile specials page, Cape Town
func CheckersProfile(cfg *config.Config) SiteProfile {
	return SiteProfile{
		Name:            "checkers",
		Store:           "Checkers",
		Location:        "Cape Town",
		URL:             cfg.CheckersURL,
		Currency:        "R",
		ConsentSelector: consentSelector,
		ConsentWait:     5 * time.Second,
		ConsentPause:    Fixed(2 * time.Second),
		Dwell:           Between(8*time.Second, 12*time.Second),
		Scrolls:         3,
		ScrollPause:     Between(2*time.Second, 4*time.Second),
		ProductSelectors: []string{
			".product-card",
			".product-item",
		},
		LocatorTimeout:    15 * time.Second,
		TitleSelectors:    []string{".product-card__name", ".product-item__name"},
		PriceSelectors:    []string{".price__current", ".product-item__price"},
		WasPriceSelectors: []string{".price__was", ".product-item__was-price"},
		FieldWait:         5 * time.Second,
		MemberMarker:      "WITH CARD",
		MaxAttempts:       3,
		Backoff:           Between(5*time.Second, 10*time.Second),
		CacheKey:          "checkers_cooldown",
		BlockTime:         cfg.SiteCooldown,
	}
}

// TescoProfile is the Tesco promotions page, London
func TescoProfile(cfg *config.Config) SiteProfile {
	return SiteProfile{
		Name:             "tesco",
		Store:            "Tesco",
		Location:         "London",
		URL:              cfg.TescoURL,
		Currency:         "£",
		RequireCurrency:  true,
		ConsentSelector:  consentSelector,
		ConsentWait:      10 * time.Second,
		ConsentPause:     Fixed(2 * time.Second),
		Dwell:            Fixed(15 * time.Second),
		ProductSelectors: []string{".product-list--list-item"},
		LocatorTimeout:   10 * time.Second,
		TitleSelectors:   []string{"[data-auto='product-tile--title']"},
		PriceSelectors: []string{
			".beans-price__text",
			".styled__Text-sc-8qlq5b-1",
			"[class*='ContentText']",
			".styled__StyledHeading-sc-119w3hf-2",
		},
		MemberPriceSelectors: []string{"[class*='ContentText']"},
		CategorySelectors:    []string{"[class*='category']"},
		FieldWait:            5 * time.Second,
		MemberMarker:         "Clubcard Price",
		WasMarker:            "was",
		MaxAttempts:          1,
		CacheKey:             "tesco_cooldown",
		BlockTime:            cfg.SiteCooldown,
	}
}

// CreateCrawlers creates a scraper for every built-in profile
func CreateCrawlers(cfg *config.Config, launcher browser.Launcher, classifier *Classifier, cacheSvc cache.CacheService) []Crawler {
	profiles := []SiteProfile{
		CheckersProfile(cfg),
		TescoProfile(cfg),
	}

	var crawlers []Crawler
	for _, profile := range profiles {
		scraper := NewSiteScraper(profile, launcher, classifier, cacheSvc)
		scraper.ScreenshotDir = cfg.ScreenshotDir
		crawlers = append(crawlers, scraper)

		logger.ForComponent("registry").Debug().
			Str("site", profile.Name).
			Str("location", profile.Location).
			Str("url", profile.URL).
			Msg("Created crawler")
	}

	return crawlers
}

// Registry maps locations to the crawler serving them
type Registry struct {
	crawlers map[string]Crawler
}

// NewRegistry indexes crawlers by location
func NewRegistry(crawlers ...Crawler) *Registry {
	r := &Registry{crawlers: make(map[string]Crawler, len(crawlers))}
	for _, c := range crawlers {
		r.crawlers[normalizeLocation(c.GetLocation())] = c
	}
	return r
}

// Locations returns the supported locations, sorted
func (r *Registry) Locations() []string {
	locations := make([]string, 0, len(r.crawlers))
	for _, c := range r.crawlers {
		locations = append(locations, c.GetLocation())
	}
	sort.Strings(locations)
	return locations
}

// Lookup returns the crawler for location, matched case-insensitively
func (r *Registry) Lookup(location string) (Crawler, bool) {
	c, ok := r.crawlers[normalizeLocation(location)]
	return c, ok
}

// ScrapeLocation runs the crawler serving location. An unknown location
// yields an empty result without error.
func (r *Registry) ScrapeLocation(ctx context.Context, location string) ([]DiscountRecord, error) {
	c, ok := r.Lookup(location)
	if !ok {
		logger.ForComponent("registry").Warn().
			Str("location", location).
			Strs("supported", r.Locations()).
			Msg("No storefront serves this location")
		return []DiscountRecord{}, nil
	}

	records, err := c.FetchDiscounts(ctx)
	if records == nil {
		records = []DiscountRecord{}
	}
	return records, err
}

func normalizeLocation(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}
