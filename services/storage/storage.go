package storage

import (
	"context"
	"time"

	"sjsage522/discountcrawler/internal/crawler"
)

// Run identifies one invocation of the scraper
type Run struct {
	ID        string
	Location  string
	StartedAt time.Time
}

// Sink is any destination for the records of a run
type Sink interface {
	Write(ctx context.Context, run Run, records []crawler.DiscountRecord) error
	Close() error
}
