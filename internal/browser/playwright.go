package browser

import (
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightSession drives a Chromium page through playwright with mobile emulation
type PlaywrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	timeout time.Duration
}

// NewPlaywrightSession starts playwright, launches Chromium and opens one page.
// Everything created before a failing step is torn down before returning.
func NewPlaywrightSession(opts Options) (*PlaywrightSession, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-setuid-sandbox",
		},
	}
	if opts.ProxyServer != "" {
		launchOpts.Proxy = &playwright.Proxy{Server: opts.ProxyServer}
	}

	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:         playwright.String(opts.UserAgent),
		Viewport:          &playwright.Size{Width: 390, Height: 844},
		DeviceScaleFactor: playwright.Float(3),
		IsMobile:          playwright.Bool(true),
		HasTouch:          playwright.Bool(true),
		Locale:            playwright.String("en-GB"),
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	if err := bctx.AddInitScript(playwright.Script{Content: playwright.String(stealthScript)}); err != nil {
		bctx.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to install init script: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create new page: %w", err)
	}
	page.SetDefaultNavigationTimeout(float64(opts.Timeout.Milliseconds()))

	return &PlaywrightSession{
		pw:      pw,
		browser: browser,
		context: bctx,
		page:    page,
		timeout: opts.Timeout,
	}, nil
}

// Navigate loads url and waits for the DOM to be parsed
func (s *PlaywrightSession) Navigate(url string) error {
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(s.timeout.Milliseconds())),
	})
	return mapPlaywrightError(err)
}

// WaitFor waits for selector to be attached to the DOM
func (s *PlaywrightSession) WaitFor(selector string, timeout time.Duration) error {
	return waitForLocator(s.page.Locator(selector).First(), timeout)
}

// Find returns the first match of selector
func (s *PlaywrightSession) Find(selector string) (Element, error) {
	return firstLocator(s.page.Locator(selector))
}

// FindAll returns all matches of selector
func (s *PlaywrightSession) FindAll(selector string) ([]Element, error) {
	locators, err := s.page.Locator(selector).All()
	if err != nil {
		return nil, mapPlaywrightError(err)
	}

	elements := make([]Element, 0, len(locators))
	for _, l := range locators {
		elements = append(elements, &playwrightElement{locator: l})
	}
	return elements, nil
}

// ScrollToBottom scrolls the window to the document height
func (s *PlaywrightSession) ScrollToBottom() error {
	_, err := s.page.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`)
	return mapPlaywrightError(err)
}

// Screenshot writes a full page PNG to path
func (s *PlaywrightSession) Screenshot(path string) error {
	_, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return mapPlaywrightError(err)
}

// Close closes the context, the browser and the playwright driver
func (s *PlaywrightSession) Close() error {
	var errs []error

	if s.context != nil {
		if err := s.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
	}

	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}

	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}

	return errors.Join(errs...)
}

type playwrightElement struct {
	locator playwright.Locator
}

func (e *playwrightElement) Text() (string, error) {
	text, err := e.locator.InnerText()
	return text, mapPlaywrightError(err)
}

func (e *playwrightElement) Attribute(name string) (string, bool, error) {
	value, err := e.locator.Evaluate(`(el, name) => el.getAttribute(name)`, name)
	if err != nil {
		return "", false, mapPlaywrightError(err)
	}
	str, ok := value.(string)
	return str, ok, nil
}

func (e *playwrightElement) Click() error {
	return mapPlaywrightError(e.locator.Click())
}

func (e *playwrightElement) WaitFor(selector string, timeout time.Duration) error {
	return waitForLocator(e.locator.Locator(selector).First(), timeout)
}

func (e *playwrightElement) Find(selector string) (Element, error) {
	return firstLocator(e.locator.Locator(selector))
}

func waitForLocator(l playwright.Locator, timeout time.Duration) error {
	err := l.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return mapPlaywrightError(err)
}

func firstLocator(l playwright.Locator) (Element, error) {
	count, err := l.Count()
	if err != nil {
		return nil, mapPlaywrightError(err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	return &playwrightElement{locator: l.First()}, nil
}

func mapPlaywrightError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
