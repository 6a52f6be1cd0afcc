package crawler

// Deduplicate keeps the first record for every (title, price) pair,
// preserving order. It returns the kept records and the number dropped.
func Deduplicate(records []DiscountRecord) ([]DiscountRecord, int) {
	type key struct{ title, price string }

	seen := make(map[key]struct{}, len(records))
	kept := make([]DiscountRecord, 0, len(records))
	for _, r := range records {
		k := key{r.Title, r.Price}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, r)
	}
	return kept, len(records) - len(kept)
}
