package crawler

import (
	"context"
	"testing"

	"sjsage522/discountcrawler/internal/browser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfiles(t *testing.T) {
	cfg := testConfig()

	checkers := CheckersProfile(cfg)
	assert.Equal(t, "Checkers", checkers.Store)
	assert.Equal(t, "Cape Town", checkers.Location)
	assert.Equal(t, "R", checkers.Currency)
	assert.False(t, checkers.RequireCurrency)
	assert.Equal(t, 3, checkers.MaxAttempts)
	assert.Equal(t, 3, checkers.Scrolls)
	assert.Equal(t, cfg.CheckersURL, checkers.URL)

	tesco := TescoProfile(cfg)
	assert.Equal(t, "Tesco", tesco.Store)
	assert.Equal(t, "London", tesco.Location)
	assert.Equal(t, "£", tesco.Currency)
	assert.True(t, tesco.RequireCurrency)
	assert.Equal(t, 1, tesco.MaxAttempts)
	assert.Zero(t, tesco.Scrolls)
	assert.Equal(t, cfg.SiteCooldown, tesco.BlockTime)
}

func TestCreateCrawlers(t *testing.T) {
	cfg := testConfig()
	cfg.ScreenshotDir = t.TempDir()

	crawlers := CreateCrawlers(cfg, fakeLauncher(&fakeSession{}), nil, nil)
	require.Len(t, crawlers, 2)

	assert.Equal(t, "checkers", crawlers[0].GetName())
	assert.Equal(t, "Checkers", crawlers[0].GetStore())
	assert.Equal(t, "tesco", crawlers[1].GetName())
	assert.Equal(t, cfg.ScreenshotDir, crawlers[1].(*SiteScraper).ScreenshotDir)
}

func TestRegistryLookup(t *testing.T) {
	registry := NewRegistry(CreateCrawlers(testConfig(), fakeLauncher(&fakeSession{}), nil, nil)...)

	assert.Equal(t, []string{"Cape Town", "London"}, registry.Locations())

	for _, location := range []string{"london", "LONDON", " Cape Town ", "cape town"} {
		_, ok := registry.Lookup(location)
		assert.True(t, ok, location)
	}

	_, ok := registry.Lookup("johannesburg")
	assert.False(t, ok)
}

func TestScrapeLocation(t *testing.T) {
	cfg := testConfig()
	cfg.CheckersURL = writePage(t, checkersPage)

	launcher, err := browser.NewLauncher(browser.DriverStatic, browser.DefaultOptions())
	require.NoError(t, err)

	crawlers := CreateCrawlers(cfg, launcher, nil, nil)
	for _, c := range crawlers {
		c.(*SiteScraper).Wait = NoWait{}
	}
	registry := NewRegistry(crawlers...)

	t.Run("served location", func(t *testing.T) {
		records, err := registry.ScrapeLocation(context.Background(), " Cape Town ")
		require.NoError(t, err)
		require.Len(t, records, 2)
		for _, r := range records {
			assert.Equal(t, "Checkers", r.Store)
			assert.Equal(t, "Cape Town", r.Location)
		}
	})

	t.Run("unknown location", func(t *testing.T) {
		records, err := registry.ScrapeLocation(context.Background(), "Paris")
		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		records, err := registry.ScrapeLocation(ctx, "cape town")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, records)
	})
}
