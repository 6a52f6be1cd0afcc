package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrawlerErrorMessage(t *testing.T) {
	err := NewNavigation("Checkers", "https://example.com", errors.New("net::ERR_TIMED_OUT"))
	assert.Equal(t, "[navigation] Checkers: failed to open https://example.com - net::ERR_TIMED_OUT", err.Error())

	noProducts := NewNoProducts("Tesco", 2)
	assert.Equal(t, "[no_products] Tesco: no products found with 2 selectors", noProducts.Error())
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err      *CrawlerError
		expected bool
	}{
		{NewNetwork("a", "m", nil), true},
		{NewNavigation("a", "u", nil), true},
		{NewNoProducts("a", 1), true},
		{NewSession("a", nil), false},
		{NewParsing("a", "m", nil), false},
		{NewExtraction("a", "m", nil), false},
		{NewConfiguration("m", nil), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Type), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.IsRetryable())
		})
	}
}

func TestUnwrapAndIsType(t *testing.T) {
	root := errors.New("browser binary missing")
	err := fmt.Errorf("site pass: %w", NewSession("Checkers", root))

	assert.True(t, errors.Is(err, root))
	assert.True(t, IsType(err, ErrorTypeSession))
	assert.False(t, IsType(err, ErrorTypeNavigation))
	assert.False(t, IsType(root, ErrorTypeSession))
}
