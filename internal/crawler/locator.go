package crawler

import (
	"errors"
	"time"

	"sjsage522/discountcrawler/internal/browser"
	"sjsage522/discountcrawler/logger"
)

// LocateProducts tries selectors in order and returns the elements of the
// first one that yields any, with that selector. It never fails: when no
// selector matches, the result is empty.
func LocateProducts(session browser.Session, selectors []string, timeout time.Duration, log *logger.Logger) ([]browser.Element, string) {
	for _, selector := range selectors {
		if err := session.WaitFor(selector, timeout); err != nil {
			if !errors.Is(err, browser.ErrTimeout) {
				log.Debug().Err(err).Str("selector", selector).Msg("Product wait failed")
			}
			continue
		}

		elements, err := session.FindAll(selector)
		if err != nil {
			log.Debug().Err(err).Str("selector", selector).Msg("Product lookup failed")
			continue
		}

		if len(elements) > 0 {
			log.Debug().Str("selector", selector).Int("count", len(elements)).Msg("Products located")
			return elements, selector
		}
	}

	return []browser.Element{}, ""
}
