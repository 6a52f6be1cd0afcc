package crawler

import (
	"errors"
	"testing"
	"time"

	"sjsage522/discountcrawler/config"
	"sjsage522/discountcrawler/internal/browser"
	crawlerrors "sjsage522/discountcrawler/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		CheckersURL:   "https://www.checkers.co.za/m/specials",
		TescoURL:      "https://www.tesco.com/groceries/en-GB/promotions",
		SiteCooldown:  30 * time.Minute,
		BrowserDriver: browser.DriverStatic,
	}
}

func extractAll(t *testing.T, profile SiteProfile, html, selector string) []ProductResult {
	t.Helper()
	extractor := NewExtractor(profile, nil)

	var results []ProductResult
	for _, el := range staticElements(t, html, selector) {
		results = append(results, extractor.Extract(el))
	}
	return results
}

func TestExtractCheckersDiscount(t *testing.T) {
	results := extractAll(t, CheckersProfile(testConfig()), `
<div class="product-card">
  <h3 class="product-card__name">Fresh Full Cream Milk 1L</h3>
  <div class="price__current">R 18.99</div>
  <div class="price__was">R 24.99</div>
</div>`, ".product-card")

	require.Len(t, results, 1)
	record := results[0].Record
	require.NotNil(t, record)
	assert.Equal(t, "Fresh Full Cream Milk 1L", record.Title)
	assert.Equal(t, "R18.99", record.Price)
	require.NotNil(t, record.OriginalPrice)
	assert.Equal(t, "R24.99", *record.OriginalPrice)
	require.NotNil(t, record.DiscountPercentage)
	assert.Equal(t, "24.0%", *record.DiscountPercentage)
	assert.Equal(t, "dairy", record.Category)
	assert.Equal(t, "Checkers", record.Store)
	assert.Equal(t, "Cape Town", record.Location)
}

func TestExtractTescoWithoutWasPrice(t *testing.T) {
	results := extractAll(t, TescoProfile(testConfig()), `
<li class="product-list--list-item">
  <a data-auto="product-tile--title">Artisan Sourdough Loaf</a>
  <p class="beans-price__text">£2.50</p>
</li>`, ".product-list--list-item")

	require.Len(t, results, 1)
	record := results[0].Record
	require.NotNil(t, record)
	assert.Equal(t, "£2.50", record.Price)
	assert.Nil(t, record.OriginalPrice)
	assert.Nil(t, record.DiscountPercentage)
	assert.Equal(t, "bakery", record.Category)
	assert.Equal(t, "Tesco", record.Store)
	assert.Equal(t, "London", record.Location)
}

func TestExtractStackedMemberPrice(t *testing.T) {
	profile := CheckersProfile(testConfig())

	results := extractAll(t, profile, `
<div class="product-card">
  <span class="product-card__name">Clover Butter 500g</span>
  <div class="price__current">R 64.99<br>R 54.99 WITH CARD</div>
</div>
<div class="product-card">
  <span class="product-card__name">Jungle Oats 1kg</span>
  <div class="price__current"><div>R 49.99</div><div>R 39.99 WITH CARD</div></div>
  <div class="price__was">R 59.99</div>
</div>
<div class="product-card">
  <span class="product-card__name">Koo Baked Beans</span>
  <div class="price__current">R 19.99 WITH CARD</div>
</div>`, ".product-card")

	require.Len(t, results, 3)

	first := results[0].Record
	require.NotNil(t, first)
	assert.Equal(t, "R54.99", first.Price)
	require.NotNil(t, first.OriginalPrice)
	assert.Equal(t, "R64.99", *first.OriginalPrice)
	assert.Equal(t, "15.4%", *first.DiscountPercentage)

	// an explicit was-price is never replaced by the stacked regular price
	second := results[1].Record
	require.NotNil(t, second)
	assert.Equal(t, "R39.99", second.Price)
	assert.Equal(t, "R59.99", *second.OriginalPrice)

	third := results[2].Record
	require.NotNil(t, third)
	assert.Equal(t, "R19.99", third.Price)
	assert.Nil(t, third.OriginalPrice)
}

func TestExtractTescoPrices(t *testing.T) {
	results := extractAll(t, TescoProfile(testConfig()), `
<ul>
<li class="product-list--list-item">
  <a data-auto="product-tile--title">Heinz Tomato Ketchup 460g</a>
  <p class="beans-price__text">£3.00</p>
  <span class="styled__Text-sc-8qlq5b-1">Was £3.75</span>
</li>
<li class="product-list--list-item">
  <a data-auto="product-tile--title">Tesco Semi Skimmed Milk 4 Pints</a>
  <p class="beans-price__text">£1.65</p>
  <div class="offer-ContentText-abc">£1.45 Clubcard Price</div>
</li>
<li class="product-list--list-item">
  <a data-auto="product-tile--title">Fairy Original Washing Up Liquid</a>
  <p class="beans-price__text">£2.00</p>
  <span class="product-category">Fresh Fruit</span>
</li>
<li class="product-list--list-item">
  <a data-auto="product-tile--title">Walkers Ready Salted</a>
  <span class="tile-ContentText">£1.25 Clubcard Price</span>
</li>
</ul>`, ".product-list--list-item")

	require.Len(t, results, 4)

	ketchup := results[0].Record
	require.NotNil(t, ketchup)
	assert.Equal(t, "£3.00", ketchup.Price)
	assert.Equal(t, "£3.75", *ketchup.OriginalPrice)
	assert.Equal(t, "20.0%", *ketchup.DiscountPercentage)
	assert.Equal(t, "vegetables", ketchup.Category)

	milk := results[1].Record
	require.NotNil(t, milk)
	assert.Equal(t, "£1.45", milk.Price)
	require.NotNil(t, milk.OriginalPrice)
	assert.Equal(t, "£1.65", *milk.OriginalPrice)
	assert.Equal(t, "12.1%", *milk.DiscountPercentage)
	assert.Equal(t, "dairy", milk.Category)

	// the title matches nothing, so the site's own category is classified
	liquid := results[2].Record
	require.NotNil(t, liquid)
	assert.Equal(t, FallbackCategory, NewClassifier(nil).Classify(liquid.Title))
	assert.Equal(t, "fruits", liquid.Category)

	crisps := results[3].Record
	require.NotNil(t, crisps)
	assert.Equal(t, "£1.25", crisps.Price)
	assert.Nil(t, crisps.OriginalPrice)
}

func TestExtractSkipsProducts(t *testing.T) {
	results := extractAll(t, CheckersProfile(testConfig()), `
<div class="product-card">
  <span class="product-card__name">No Price Yoghurt</span>
</div>
<div class="product-card">
  <span class="product-card__name">   </span>
  <div class="price__current">R 10.00</div>
</div>
<div class="product-card">
  <span class="product-card__name">Mystery Special</span>
  <div class="price__current">Buy 2 for R30</div>
</div>
<div class="product-card">
  <div class="price__current">R 12.00</div>
</div>`, ".product-card")

	require.Len(t, results, 4)
	for _, r := range results {
		assert.Nil(t, r.Record)
	}
	assert.Equal(t, SkipMissingPrice, results[0].Skip)
	assert.Equal(t, SkipMissingTitle, results[1].Skip)
	assert.Equal(t, SkipBadPrice, results[2].Skip)
	assert.Equal(t, SkipMissingTitle, results[3].Skip)
}

func TestExtractTitleAttributeFallback(t *testing.T) {
	results := extractAll(t, CheckersProfile(testConfig()), `
<div class="product-item">
  <a class="product-item__name" title="Sasko Brown Bread 700g"></a>
  <span class="product-item__price">R 16.99</span>
</div>`, ".product-item")

	require.Len(t, results, 1)
	require.NotNil(t, results[0].Record)
	assert.Equal(t, "Sasko Brown Bread 700g", results[0].Record.Title)
	assert.Equal(t, "bakery", results[0].Record.Category)
}

func TestExtractRecoversFromPanic(t *testing.T) {
	extractor := NewExtractor(CheckersProfile(testConfig()), nil)

	result := extractor.Extract(&fakeElement{panic: true})
	assert.Nil(t, result.Record)
	assert.Equal(t, SkipPanic, result.Skip)
	assert.ErrorContains(t, result.Err, "node detached")

	result = extractor.Extract(&fakeElement{texts: map[string]string{
		".product-card__name": "Fresh Full Cream Milk 1L",
		".price__current":     "R 18.99",
	}})
	require.NotNil(t, result.Record)
	assert.Equal(t, "R18.99", result.Record.Price)
}

func TestExtractMultibuyOfferKeepsShelfPrice(t *testing.T) {
	results := extractAll(t, TescoProfile(testConfig()), `
<li class="product-list--list-item">
  <a data-auto="product-tile--title">Muller Corner Strawberry Yogurt 124g</a>
  <p class="beans-price__text">£2.00</p>
  <div class="offer-ContentText-abc">Any 3 for £5 Clubcard Price</div>
</li>`, ".product-list--list-item")

	require.Len(t, results, 1)
	record := results[0].Record
	require.NotNil(t, record, "skip: %s", results[0].Skip)
	assert.Equal(t, "£2.00", record.Price)
	assert.Nil(t, record.OriginalPrice)
	assert.Nil(t, record.DiscountPercentage)
}

func TestExtractPriceWithoutSymbol(t *testing.T) {
	html := `
<div class="product-card">
  <h3 class="product-card__name">Fresh Full Cream Milk 1L</h3>
  <div class="price__current">18.99</div>
</div>`

	results := extractAll(t, CheckersProfile(testConfig()), html, ".product-card")
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Record, "skip: %s", results[0].Skip)
	assert.Equal(t, "18.99", results[0].Record.Price)

	tesco := TescoProfile(testConfig())
	tesco.TitleSelectors = []string{".product-card__name"}
	tesco.PriceSelectors = []string{".price__current"}
	results = extractAll(t, tesco, html, ".product-card")
	require.Len(t, results, 1)
	assert.Nil(t, results[0].Record)
	assert.Equal(t, SkipMissingPrice, results[0].Skip)
}

func TestExtractDriverError(t *testing.T) {
	extractor := NewExtractor(CheckersProfile(testConfig()), nil)

	result := extractor.Extract(&fakeElement{waitErr: errors.New("target closed")})
	assert.Nil(t, result.Record)
	assert.Equal(t, SkipDriverError, result.Skip)
	assert.True(t, crawlerrors.IsType(result.Err, crawlerrors.ErrorTypeExtraction))
	assert.ErrorContains(t, result.Err, "target closed")
}

func TestFoldMarkers(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		marker string
		after  string
		remove string
	}{
		{"ascii", "Was £1.00", "was", "£1.00", " £1.00"},
		{"last occurrence", "was was £2.50", "WAS", "£2.50", "  £2.50"},
		{"wider lowercase prefix", "İ Was £1.00", "was", "£1.00", "İ  £1.00"},
		{"member marker", "İR 19.99 WITH CARD", "with card", "", "İR 19.99 "},
		{"regexp metacharacters", "£1.45 (Clubcard) Price", "(clubcard) price", "", "£1.45 "},
		{"no match", "£3.00", "was", "£3.00", "£3.00"},
		{"empty marker", "£3.00", "", "£3.00", "£3.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.after, afterFold(tt.text, tt.marker))
			assert.Equal(t, tt.remove, removeFold(tt.text, tt.marker))
		})
	}
}
