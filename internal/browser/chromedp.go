package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/device"
)

// ChromedpSession drives a headless Chrome tab over the DevTools protocol
type ChromedpSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	cancelAlloc context.CancelFunc
	timeout     time.Duration
}

// NewChromedpSession allocates a Chrome process and one emulated iPhone tab
func NewChromedpSession(parent context.Context, opts Options) (*ChromedpSession, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(opts.UserAgent),
	)
	if opts.ProxyServer != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.ProxyServer))
	}

	// Detached from parent cancellation; only Close tears the process down.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(parent), allocOpts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	err := chromedp.Run(ctx,
		chromedp.Emulate(device.IPhoneX),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}),
	)
	if err != nil {
		cancel()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}

	return &ChromedpSession{
		ctx:         ctx,
		cancel:      cancel,
		cancelAlloc: cancelAlloc,
		timeout:     opts.Timeout,
	}, nil
}

// Navigate loads url
func (s *ChromedpSession) Navigate(url string) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	return mapChromedpError(chromedp.Run(ctx, chromedp.Navigate(url)))
}

// WaitFor waits until selector matches
func (s *ChromedpSession) WaitFor(selector string, timeout time.Duration) error {
	return waitChromedp(s.ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery))
}

// Find returns the first match of selector
func (s *ChromedpSession) Find(selector string) (Element, error) {
	return findChromedp(s.ctx, selector)
}

// FindAll returns all matches of selector
func (s *ChromedpSession) FindAll(selector string) ([]Element, error) {
	var nodes []*cdp.Node
	if err := chromedp.Run(s.ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, mapChromedpError(err)
	}

	elements := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		elements = append(elements, &chromedpElement{ctx: s.ctx, node: n})
	}
	return elements, nil
}

// ScrollToBottom scrolls the window to the document height
func (s *ChromedpSession) ScrollToBottom() error {
	return mapChromedpError(chromedp.Run(s.ctx, chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil)))
}

// Screenshot writes a full page PNG to path
func (s *ChromedpSession) Screenshot(path string) error {
	var buf []byte
	if err := chromedp.Run(s.ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return mapChromedpError(err)
	}
	return os.WriteFile(path, buf, 0644)
}

// Close cancels the tab and the browser process
func (s *ChromedpSession) Close() error {
	s.cancel()
	s.cancelAlloc()
	return nil
}

type chromedpElement struct {
	ctx  context.Context
	node *cdp.Node
}

func (e *chromedpElement) ids() []cdp.NodeID {
	return []cdp.NodeID{e.node.NodeID}
}

func (e *chromedpElement) Text() (string, error) {
	var text string
	err := chromedp.Run(e.ctx, chromedp.Text(e.ids(), &text, chromedp.ByNodeID))
	return text, mapChromedpError(err)
}

func (e *chromedpElement) Attribute(name string) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	err := chromedp.Run(e.ctx, chromedp.AttributeValue(e.ids(), name, &value, &ok, chromedp.ByNodeID))
	return value, ok, mapChromedpError(err)
}

func (e *chromedpElement) Click() error {
	return mapChromedpError(chromedp.Run(e.ctx, chromedp.Click(e.ids(), chromedp.ByNodeID)))
}

func (e *chromedpElement) WaitFor(selector string, timeout time.Duration) error {
	return waitChromedp(e.ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery, chromedp.FromNode(e.node)))
}

func (e *chromedpElement) Find(selector string) (Element, error) {
	return findChromedp(e.ctx, selector, chromedp.FromNode(e.node))
}

func waitChromedp(parent context.Context, timeout time.Duration, action chromedp.Action) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	return mapChromedpError(chromedp.Run(ctx, action))
}

func findChromedp(ctx context.Context, selector string, opts ...chromedp.QueryOption) (Element, error) {
	var nodes []*cdp.Node
	opts = append(opts, chromedp.ByQuery, chromedp.AtLeast(0))
	if err := chromedp.Run(ctx, chromedp.Nodes(selector, &nodes, opts...)); err != nil {
		return nil, mapChromedpError(err)
	}
	if len(nodes) == 0 {
		return nil, ErrNotFound
	}
	return &chromedpElement{ctx: ctx, node: nodes[0]}, nil
}

func mapChromedpError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
