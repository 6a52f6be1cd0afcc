package crawler

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"sjsage522/discountcrawler/internal/browser"
	"sjsage522/discountcrawler/logger"
	crawlerrors "sjsage522/discountcrawler/pkg/errors"
	"sjsage522/discountcrawler/services/cache"
)

// SiteScraper runs the full pass for one storefront profile
type SiteScraper struct {
	BaseCrawler
	Profile       SiteProfile
	Launcher      browser.Launcher
	Wait          WaitPolicy
	Extractor     *Extractor
	ScreenshotDir string
	log           *logger.Logger
}

// Ensure SiteScraper implements Crawler
var _ Crawler = (*SiteScraper)(nil)

// NewSiteScraper creates a scraper for profile
func NewSiteScraper(profile SiteProfile, launcher browser.Launcher, classifier *Classifier, cacheSvc cache.CacheService) *SiteScraper {
	return &SiteScraper{
		BaseCrawler: BaseCrawler{
			CacheKey:  profile.CacheKey,
			CacheSvc:  cacheSvc,
			BlockTime: profile.BlockTime,
		},
		Profile:   profile,
		Launcher:  launcher,
		Wait:      JitterWait{},
		Extractor: NewExtractor(profile, classifier),
		log:       logger.ForSite(profile.Name),
	}
}

// GetName returns the profile name
func (s *SiteScraper) GetName() string {
	return s.Profile.Name
}

// GetStore returns the store name
func (s *SiteScraper) GetStore() string {
	return s.Profile.Store
}

// GetLocation returns the served location
func (s *SiteScraper) GetLocation() string {
	return s.Profile.Location
}

// FetchDiscounts runs one pass and returns its records. Site failures are
// logged and yield an empty slice; only cancellation is returned as an error.
func (s *SiteScraper) FetchDiscounts(ctx context.Context) ([]DiscountRecord, error) {
	report := s.Scrape(ctx)
	return report.Records, ctx.Err()
}

// Scrape runs one site pass: one session, up to MaxAttempts attempts,
// then deduplication of the successful attempt's records
func (s *SiteScraper) Scrape(ctx context.Context) PassReport {
	start := time.Now()
	report := PassReport{
		Site:    s.Profile.Name,
		State:   StateAttempting,
		Records: []DiscountRecord{},
		Skips:   map[string]int{},
	}

	if s.coolingDown() {
		s.log.Info().Str("key", s.CacheKey).Msg("Site is cooling down, skipping")
		report.State = StateExhausted
		return report
	}

	session, err := s.Launcher.Launch(ctx)
	if err != nil {
		report.State = StateExhausted
		report.Err = crawlerrors.NewSession(s.Profile.Name, err)
		s.log.Error().Err(report.Err).Msg("Site pass abandoned")
		return report
	}
	defer func() {
		if err := session.Close(); err != nil {
			s.log.Warn().Err(err).Msg("Failed to close session")
		}
	}()

	var records []DiscountRecord
	retry := &RetryController{
		Provider:    s.Profile.Name,
		MaxAttempts: s.Profile.MaxAttempts,
		Backoff:     s.Profile.Backoff,
		Wait:        s.Wait,
		Log:         s.log,
	}

	state, attempts, err := retry.Run(ctx, func(ctx context.Context, attempt int) (int, error) {
		s.log.Info().Int("attempt", attempt).Msg("Starting attempt")

		if err := AcquirePage(ctx, session, s.Profile, s.Wait, s.log); err != nil {
			s.capture(session, attempt)
			return 0, err
		}

		elements, selector := LocateProducts(session, s.Profile.ProductSelectors, s.Profile.LocatorTimeout, s.log)
		if len(elements) == 0 {
			s.capture(session, attempt)
			return 0, crawlerrors.NewNoProducts(s.Profile.Name, len(s.Profile.ProductSelectors))
		}

		var skips map[string]int
		records, skips = s.processProducts(elements, s.Extractor.Extract, s.log)
		report.Located = len(elements)
		report.Skips = skips

		s.log.Info().
			Str("selector", selector).
			Int("located", len(elements)).
			Int("extracted", len(records)).
			Msg("Products extracted")
		return len(elements), nil
	})

	report.State = state
	report.Attempts = attempts

	if state == StateSucceeded {
		report.Records, report.Duplicates = Deduplicate(records)
	} else {
		report.Err = err
		if ctx.Err() == nil {
			s.startCooldown(s.log)
		}
	}

	event := s.log.Info()
	if state != StateSucceeded {
		event = s.log.Warn().Err(err)
	}
	event.
		Str("state", state.String()).
		Int("attempts", attempts).
		Int("records", len(report.Records)).
		Int("duplicates", report.Duplicates).
		Interface("skips", report.Skips).
		Dur("elapsed", time.Since(start)).
		Msg("Site pass finished")

	return report
}

// capture saves a diagnostic screenshot of a failed attempt when enabled
func (s *SiteScraper) capture(session browser.Session, attempt int) {
	if s.ScreenshotDir == "" {
		return
	}

	name := fmt.Sprintf("%s-attempt%d-%s.png", s.Profile.Name, attempt, time.Now().Format("20060102T150405"))
	path := filepath.Join(s.ScreenshotDir, name)
	if err := session.Screenshot(path); err != nil {
		s.log.Debug().Err(err).Str("path", path).Msg("Screenshot failed")
		return
	}
	s.log.Info().Str("path", path).Msg("Saved screenshot of failed attempt")
}
