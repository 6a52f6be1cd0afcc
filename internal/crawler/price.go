package crawler

import (
	"fmt"
	"strconv"
	"strings"

	"sjsage522/discountcrawler/helpers"
)

// ParsePrice strips the currency symbol, thousands separators and whitespace
// from a display price and parses the rest. ok is false when nothing numeric remains.
func ParsePrice(text, currency string) (value float64, ok bool) {
	cleaned := text
	if currency != "" {
		cleaned = strings.ReplaceAll(cleaned, currency, "")
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = helpers.StripSpaces(cleaned)
	if cleaned == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// Discount returns the percentage saved on original, formatted to one decimal.
// ok is false unless both prices are positive.
func Discount(original, current float64) (string, bool) {
	if original <= 0 || current <= 0 {
		return "", false
	}
	return fmt.Sprintf("%.1f%%", (original-current)/original*100), true
}

// DisplayPrice is the stored form of a price text: all whitespace removed
func DisplayPrice(text string) string {
	return helpers.StripSpaces(text)
}

// buildRecord normalizes raw field text into a record. It reports SkipBadPrice
// when the current price does not parse.
func buildRecord(profile SiteProfile, title, current, original, category string) ProductResult {
	currentValue, ok := ParsePrice(current, profile.Currency)
	if !ok {
		return ProductResult{Skip: SkipBadPrice}
	}

	record := &DiscountRecord{
		Title:    title,
		Price:    DisplayPrice(current),
		Store:    profile.Store,
		Location: profile.Location,
		Category: category,
	}

	if original != "" {
		display := DisplayPrice(original)
		record.OriginalPrice = &display

		if originalValue, ok := ParsePrice(original, profile.Currency); ok {
			if pct, ok := Discount(originalValue, currentValue); ok {
				record.DiscountPercentage = &pct
			}
		}
	}

	return ProductResult{Record: record}
}
