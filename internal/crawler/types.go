package crawler

import (
	"context"
	"math/rand/v2"
	"time"
)

// DiscountRecord represents one discounted product emitted by a site pass.
// OriginalPrice and DiscountPercentage serialize as null when absent.
type DiscountRecord struct {
	Title              string  `json:"title"`
	Price              string  `json:"price"`
	OriginalPrice      *string `json:"original_price"`
	DiscountPercentage *string `json:"discount_percentage"`
	Store              string  `json:"store"`
	Location           string  `json:"location"`
	Category           string  `json:"category"`
}

// Crawler interface defines the contract for all storefront scrapers
type Crawler interface {
	// FetchDiscounts runs one site pass; an empty result is not an error
	FetchDiscounts(ctx context.Context) ([]DiscountRecord, error)

	// GetName returns the profile name for logging and identification
	GetName() string

	// GetStore returns the store name written into records
	GetStore() string

	// GetLocation returns the location the crawler serves
	GetLocation() string
}

// Range is an inclusive duration interval; a zero Max means exactly Min
type Range struct {
	Min time.Duration
	Max time.Duration
}

// Fixed returns a range of exactly d
func Fixed(d time.Duration) Range {
	return Range{Min: d, Max: d}
}

// Between returns a range from min to max
func Between(min, max time.Duration) Range {
	return Range{Min: min, Max: max}
}

// Pick returns a uniformly random duration within the range
func (r Range) Pick() time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + time.Duration(rand.Int64N(int64(r.Max-r.Min)+1))
}

// SiteProfile contains everything that differs between storefronts
type SiteProfile struct {
	Name     string
	Store    string
	Location string
	URL      string
	Currency string
	// RequireCurrency drops price text without the currency symbol
	RequireCurrency bool

	// Page acquisition
	ConsentSelector string
	ConsentWait     time.Duration
	ConsentPause    Range
	Dwell           Range
	Scrolls         int
	ScrollPause     Range

	// Product location
	ProductSelectors []string
	LocatorTimeout   time.Duration

	// Field extraction, every list in priority order
	TitleSelectors       []string
	PriceSelectors       []string
	WasPriceSelectors    []string
	MemberPriceSelectors []string
	CategorySelectors    []string
	FieldWait            time.Duration
	MemberMarker         string
	WasMarker            string

	// Retry
	MaxAttempts int
	Backoff     Range

	// Cooldown after an exhausted pass
	CacheKey  string
	BlockTime time.Duration
}

// Skip reasons reported for products that produce no record
const (
	SkipMissingTitle = "missing title"
	SkipMissingPrice = "missing price"
	SkipBadPrice     = "unparsable price"
	SkipDriverError  = "driver error"
	SkipPanic        = "extraction panic"
)

// ProductResult is the outcome of extracting one product element:
// either Record is set or Skip names why nothing was emitted
type ProductResult struct {
	Record *DiscountRecord
	Skip   string
	Err    error
}

// PassReport summarizes one site invocation
type PassReport struct {
	Site     string
	State    RetryState
	Attempts int
	Located  int
	Records  []DiscountRecord
	// Duplicates is the number of records dropped by deduplication
	Duplicates int
	Skips      map[string]int
	Err        error
}
