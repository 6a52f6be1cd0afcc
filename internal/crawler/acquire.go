package crawler

import (
	"context"

	"sjsage522/discountcrawler/internal/browser"
	"sjsage522/discountcrawler/logger"
	crawlerrors "sjsage522/discountcrawler/pkg/errors"
)

// AcquirePage opens the profile URL and prepares the page for product
// location: dwell, consent dismissal, then lazy-load scrolling.
// Only navigation failure and context cancellation are returned.
func AcquirePage(ctx context.Context, session browser.Session, profile SiteProfile, wait WaitPolicy, log *logger.Logger) error {
	log.Debug().Str("url", profile.URL).Msg("Navigating")
	if err := session.Navigate(profile.URL); err != nil {
		return crawlerrors.NewNavigation(profile.Name, profile.URL, err)
	}

	if err := wait.Pause(ctx, profile.Dwell); err != nil {
		return err
	}

	if profile.ConsentSelector != "" {
		if dismissConsent(session, profile, log) {
			if err := wait.Pause(ctx, profile.ConsentPause); err != nil {
				return err
			}
		}
	}

	for i := 0; i < profile.Scrolls; i++ {
		if err := session.ScrollToBottom(); err != nil {
			log.Debug().Err(err).Int("scroll", i+1).Msg("Scroll failed")
		}
		if err := wait.Pause(ctx, profile.ScrollPause); err != nil {
			return err
		}
	}

	return nil
}

// dismissConsent clicks the cookie banner button if it shows up in time
func dismissConsent(session browser.Session, profile SiteProfile, log *logger.Logger) bool {
	if err := session.WaitFor(profile.ConsentSelector, profile.ConsentWait); err != nil {
		log.Debug().Err(err).Msg("No consent banner")
		return false
	}

	button, err := session.Find(profile.ConsentSelector)
	if err != nil {
		log.Debug().Err(err).Msg("Consent button disappeared")
		return false
	}

	if err := button.Click(); err != nil {
		log.Debug().Err(err).Msg("Consent click failed")
		return false
	}

	log.Debug().Msg("Consent dismissed")
	return true
}
