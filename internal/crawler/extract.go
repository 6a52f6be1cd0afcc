package crawler

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"sjsage522/discountcrawler/helpers"
	"sjsage522/discountcrawler/internal/browser"
	crawlerrors "sjsage522/discountcrawler/pkg/errors"
)

// Extractor turns product elements into records for one profile
type Extractor struct {
	Profile    SiteProfile
	Classifier *Classifier
}

// NewExtractor creates an extractor; a nil classifier uses the default rules
func NewExtractor(profile SiteProfile, classifier *Classifier) *Extractor {
	if classifier == nil {
		classifier = NewClassifier(nil)
	}
	return &Extractor{Profile: profile, Classifier: classifier}
}

// Extract reads one product element. It never panics: a driver panic is
// reported as a skip like any other missing field.
func (x *Extractor) Extract(el browser.Element) (result ProductResult) {
	defer func() {
		if r := recover(); r != nil {
			result = ProductResult{Skip: SkipPanic, Err: fmt.Errorf("%v", r)}
		}
	}()

	p := x.Profile

	if err := waitAny(el, p.TitleSelectors, p.FieldWait); err != nil {
		return skipFor(p.Name, SkipMissingTitle, err)
	}
	title := titleText(el, p.TitleSelectors)
	if title == "" {
		return ProductResult{Skip: SkipMissingTitle}
	}

	if err := waitAny(el, p.PriceSelectors, p.FieldWait); err != nil {
		return skipFor(p.Name, SkipMissingPrice, err)
	}
	current, original := x.prices(el)
	if current == "" {
		return ProductResult{Skip: SkipMissingPrice}
	}

	category := x.Classifier.Classify(title)
	if category == FallbackCategory && len(p.CategorySelectors) > 0 {
		if siteCategory, _ := firstText(el, p.CategorySelectors); siteCategory != "" {
			category = x.Classifier.Classify(siteCategory)
		}
	}

	return buildRecord(p, title, current, original, category)
}

// prices resolves the raw current and original price text
func (x *Extractor) prices(el browser.Element) (current, original string) {
	p := x.Profile

	for _, selector := range p.PriceSelectors {
		text, err := textOf(el, selector)
		if err != nil || text == "" {
			continue
		}
		if p.RequireCurrency && !strings.Contains(text, p.Currency) {
			continue
		}
		if p.WasMarker != "" && helpers.ContainsFold(text, p.WasMarker) {
			if original == "" {
				original = afterFold(text, p.WasMarker)
			}
			continue
		}
		if current == "" {
			current = text
		}
	}

	if original == "" && len(p.WasPriceSelectors) > 0 {
		original, _ = firstText(el, p.WasPriceSelectors)
	}

	// Member price stacked beneath the regular price
	if strings.Contains(current, "\n") {
		lines := helpers.SplitLines(current)
		current = lines[len(lines)-1]
		if original == "" && len(lines) > 1 {
			original = lines[0]
		}
	}
	current = strings.TrimSpace(removeFold(current, p.MemberMarker))

	// Member price in its own element
	if p.MemberMarker != "" && len(p.MemberPriceSelectors) > 0 {
		memberText, _ := firstText(el, p.MemberPriceSelectors)
		if helpers.ContainsFold(memberText, p.MemberMarker) {
			// multibuy offers such as "Any 3 for £5" carry no unit price
			fields := strings.Fields(memberText)
			if len(fields) > 0 && isPrice(fields[0], p.Currency) {
				if original == "" && current != "" && DisplayPrice(current) != fields[0] {
					original = current
				}
				current = fields[0]
			}
		}
	}

	return current, original
}

// isPrice reports whether token parses as a price in currency
func isPrice(token, currency string) bool {
	_, ok := ParsePrice(token, currency)
	return ok
}

// waitAny waits until any of selectors matches inside el
func waitAny(el browser.Element, selectors []string, timeout time.Duration) error {
	if len(selectors) == 0 {
		return browser.ErrNotFound
	}
	return el.WaitFor(strings.Join(selectors, ", "), timeout)
}

// titleText returns the first non-empty title in selector order, falling back
// to the matched element's title attribute when its text is empty
func titleText(el browser.Element, selectors []string) string {
	for _, selector := range selectors {
		found, err := el.Find(selector)
		if err != nil {
			continue
		}
		if text, err := found.Text(); err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		if attr, ok, err := found.Attribute("title"); err == nil && ok && strings.TrimSpace(attr) != "" {
			return strings.TrimSpace(attr)
		}
	}
	return ""
}

// firstText returns the first non-empty text among selectors in order
func firstText(el browser.Element, selectors []string) (string, error) {
	var lastErr error
	for _, selector := range selectors {
		text, err := textOf(el, selector)
		if err != nil {
			if !errors.Is(err, browser.ErrNotFound) {
				lastErr = err
			}
			continue
		}
		if text != "" {
			return text, nil
		}
	}
	return "", lastErr
}

func textOf(el browser.Element, selector string) (string, error) {
	found, err := el.Find(selector)
	if err != nil {
		return "", err
	}
	text, err := found.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// skipFor maps a wait failure to a skip: a timeout means the field is absent
func skipFor(provider, reason string, err error) ProductResult {
	if errors.Is(err, browser.ErrTimeout) || errors.Is(err, browser.ErrNotFound) {
		return ProductResult{Skip: reason}
	}
	return ProductResult{Skip: SkipDriverError, Err: crawlerrors.NewExtraction(provider, reason, err)}
}

// foldPattern matches marker literally, ignoring case
func foldPattern(marker string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(marker))
}

// afterFold returns the text after the last case-insensitive occurrence of marker
func afterFold(text, marker string) string {
	if marker == "" {
		return text
	}
	matches := foldPattern(marker).FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	return strings.TrimSpace(text[matches[len(matches)-1][1]:])
}

// removeFold deletes every case-insensitive occurrence of marker from text
func removeFold(text, marker string) string {
	if marker == "" {
		return text
	}
	return foldPattern(marker).ReplaceAllLiteralString(text, "")
}
