package crawler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"sjsage522/discountcrawler/internal/browser"

	"github.com/stretchr/testify/require"
)

// MockCacheService implements a simple in-memory cache for testing
type MockCacheService struct {
	mu    sync.Mutex
	cache map[string][]byte
	ttl   map[string]time.Duration
}

func NewMockCacheService() *MockCacheService {
	return &MockCacheService{
		cache: make(map[string][]byte),
		ttl:   make(map[string]time.Duration),
	}
}

func (m *MockCacheService) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if val, ok := m.cache[key]; ok {
		return val, nil
	}
	return nil, &mockError{message: "cache miss"}
}

func (m *MockCacheService) Set(key string, value []byte, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[key] = value
	m.ttl[key] = expiration
	return nil
}

func (m *MockCacheService) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, key)
	return nil
}

type mockError struct {
	message string
}

func (e *mockError) Error() string {
	return e.message
}

// countingWait records every pause instead of sleeping
type countingWait struct {
	pauses []Range
}

func (w *countingWait) Pause(ctx context.Context, r Range) error {
	w.pauses = append(w.pauses, r)
	return ctx.Err()
}

// fakeSession is a scripted browser.Session
type fakeSession struct {
	navigateErr error
	products    map[string][]browser.Element
	navigations int
	scrolls     int
	screenshots []string
	closes      int
}

func (s *fakeSession) Navigate(string) error {
	s.navigations++
	return s.navigateErr
}

func (s *fakeSession) WaitFor(selector string, _ time.Duration) error {
	if len(s.products[selector]) == 0 {
		return browser.ErrTimeout
	}
	return nil
}

func (s *fakeSession) Find(string) (browser.Element, error) {
	return nil, browser.ErrNotFound
}

func (s *fakeSession) FindAll(selector string) ([]browser.Element, error) {
	return s.products[selector], nil
}

func (s *fakeSession) ScrollToBottom() error {
	s.scrolls++
	return nil
}

func (s *fakeSession) Screenshot(path string) error {
	s.screenshots = append(s.screenshots, path)
	return nil
}

func (s *fakeSession) Close() error {
	s.closes++
	return nil
}

// fakeElement matches selectors against a fixed text table
type fakeElement struct {
	texts   map[string]string
	panic   bool
	waitErr error
}

func (e *fakeElement) Text() (string, error) {
	return "", nil
}

func (e *fakeElement) Attribute(string) (string, bool, error) {
	return "", false, nil
}

func (e *fakeElement) Click() error {
	return nil
}

func (e *fakeElement) WaitFor(selector string, _ time.Duration) error {
	if e.panic {
		panic("node detached")
	}
	if e.waitErr != nil {
		return e.waitErr
	}
	for _, s := range strings.Split(selector, ", ") {
		if _, ok := e.texts[s]; ok {
			return nil
		}
	}
	return browser.ErrTimeout
}

func (e *fakeElement) Find(selector string) (browser.Element, error) {
	text, ok := e.texts[selector]
	if !ok {
		return nil, browser.ErrNotFound
	}
	return &fakeText{text: text}, nil
}

type fakeText struct {
	browser.Element
	text string
}

func (t *fakeText) Text() (string, error) {
	return t.text, nil
}

func (t *fakeText) Attribute(string) (string, bool, error) {
	return "", false, nil
}

func fakeLauncher(session browser.Session) browser.Launcher {
	return browser.LauncherFunc(func(context.Context) (browser.Session, error) {
		return session, nil
	})
}

// writePage stores html in a temp file and returns its path for the static driver
func writePage(t *testing.T, html string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(html), 0644))
	return path
}

// staticElements loads html and returns the elements matching selector
func staticElements(t *testing.T, html, selector string) []browser.Element {
	t.Helper()
	session := browser.NewStaticSession()
	require.NoError(t, session.Load(strings.NewReader(html)))
	elements, err := session.FindAll(selector)
	require.NoError(t, err)
	return elements
}
