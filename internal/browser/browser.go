package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sjsage522/discountcrawler/helpers"
)

// Driver names accepted by NewLauncher
const (
	DriverPlaywright = "playwright"
	DriverChromedp   = "chromedp"
	DriverStatic     = "static"
)

var (
	// ErrTimeout is returned when a bounded wait expires before the selector matched
	ErrTimeout = errors.New("browser: wait timed out")
	// ErrNotFound is returned when a lookup matched nothing
	ErrNotFound = errors.New("browser: element not found")
)

// Element is a node located inside a rendered page
type Element interface {
	// Text returns the rendered inner text, line breaks preserved
	Text() (string, error)

	// Attribute returns the attribute value and whether it is present
	Attribute(name string) (string, bool, error)

	// Click clicks the element
	Click() error

	// WaitFor blocks until selector matches a descendant or the timeout expires
	WaitFor(selector string, timeout time.Duration) error

	// Find returns the first descendant matching selector, or ErrNotFound
	Find(selector string) (Element, error)
}

// Session is one rendering session over a single page
type Session interface {
	// Navigate loads url into the page
	Navigate(url string) error

	// WaitFor blocks until selector matches or the timeout expires
	WaitFor(selector string, timeout time.Duration) error

	// Find returns the first element matching selector, or ErrNotFound
	Find(selector string) (Element, error)

	// FindAll returns every element matching selector in document order
	FindAll(selector string) ([]Element, error)

	// ScrollToBottom scrolls the page to the end of the document
	ScrollToBottom() error

	// Screenshot writes a diagnostic capture of the page to path
	Screenshot(path string) error

	// Close releases every resource held by the session
	Close() error
}

// Launcher starts rendering sessions
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}

// LauncherFunc adapts a function to the Launcher interface
type LauncherFunc func(ctx context.Context) (Session, error)

// Launch calls f(ctx)
func (f LauncherFunc) Launch(ctx context.Context) (Session, error) {
	return f(ctx)
}

// Options configures the live drivers
type Options struct {
	Headless    bool
	ProxyServer string
	UserAgent   string
	// Timeout bounds navigation
	Timeout time.Duration
}

// DefaultOptions returns headless mobile options
func DefaultOptions() Options {
	return Options{
		Headless:  true,
		UserAgent: helpers.MobileUserAgents[0],
		Timeout:   60 * time.Second,
	}
}

// stealthScript hides the automation flag from page scripts
const stealthScript = `Object.defineProperty(navigator, 'webdriver', { get: () => undefined });`

// NewLauncher returns the launcher for the named driver
func NewLauncher(driver string, opts Options) (Launcher, error) {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultOptions().UserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}

	switch driver {
	case DriverPlaywright:
		return LauncherFunc(func(ctx context.Context) (Session, error) {
			return NewPlaywrightSession(opts)
		}), nil
	case DriverChromedp:
		return LauncherFunc(func(ctx context.Context) (Session, error) {
			return NewChromedpSession(ctx, opts)
		}), nil
	case DriverStatic:
		return LauncherFunc(func(ctx context.Context) (Session, error) {
			return NewStaticSession(), nil
		}), nil
	default:
		return nil, fmt.Errorf("unknown browser driver %q", driver)
	}
}
