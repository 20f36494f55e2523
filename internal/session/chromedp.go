package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"github.com/JakeFAU/trendwatch/internal/trends"
)

// Config controls how the headless browser is launched.
type Config struct {
	Headless       bool
	NoSandbox      bool
	Proxy          string
	UserAgent      string
	WindowWidth    int
	WindowHeight   int
	StartupTimeout time.Duration
}

func (c Config) startupTimeout() time.Duration {
	if c.StartupTimeout > 0 {
		return c.StartupTimeout
	}
	return 30 * time.Second
}

func (c Config) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("start-maximized", true),
		chromedp.Flag("enable-automation", false),
	)
	if c.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if c.Proxy != "" {
		opts = append(opts, chromedp.ProxyServer(c.Proxy))
	}
	if c.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(c.UserAgent))
	}
	if c.WindowWidth > 0 && c.WindowHeight > 0 {
		opts = append(opts, chromedp.WindowSize(c.WindowWidth, c.WindowHeight))
	}
	return opts
}

// collectTextsJS resolves an XPath root and returns the innerText of every
// descendant matching a CSS selector.
const collectTextsJS = `(function(xpath, selector) {
	const root = document.evaluate(xpath, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
	if (!root) { return []; }
	return Array.from(root.querySelectorAll(selector)).map(function(n) { return n.innerText || n.textContent || ""; });
})(%q, %q)`

// browserSession is a chromedp-backed trends.Session. The tab context lives
// until close is called.
type browserSession struct {
	id          uint64
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
}

// chromedpLauncher starts a new headless Chrome per session.
func chromedpLauncher(cfg Config) launcher {
	return func(ctx context.Context, id uint64) (liveSession, error) {
		allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), cfg.allocatorOptions()...)
		tabCtx, tabCancel := chromedp.NewContext(allocCtx)

		// The first Run allocates the browser; a deadline on that context would
		// kill the browser afterwards, so the bound is enforced from outside.
		started := make(chan error, 1)
		go func() {
			started <- chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
				if cfg.UserAgent == "" {
					return nil
				}
				if err := emulation.SetUserAgentOverride(cfg.UserAgent).Do(ctx); err != nil {
					return fmt.Errorf("set user-agent: %w", err)
				}
				return nil
			}))
		}()

		timer := time.NewTimer(cfg.startupTimeout())
		defer timer.Stop()

		var err error
		select {
		case err = <-started:
		case <-timer.C:
			err = fmt.Errorf("browser did not start within %s", cfg.startupTimeout())
		case <-ctx.Done():
			err = ctx.Err()
		}
		if err != nil {
			tabCancel()
			allocCancel()
			return nil, fmt.Errorf("chromedp start: %w", err)
		}
		return &browserSession{
			id:          id,
			tabCtx:      tabCtx,
			tabCancel:   tabCancel,
			allocCancel: allocCancel,
		}, nil
	}
}

func (s *browserSession) ID() uint64 {
	return s.id
}

// Navigate loads url in the session tab.
func (s *browserSession) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := s.bind(ctx, 0)
	defer cancel()
	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// AwaitElement waits until an element matching the XPath locator is present.
func (s *browserSession) AwaitElement(ctx context.Context, locator string, timeout time.Duration) (trends.Element, error) {
	runCtx, cancel := s.bind(ctx, timeout)
	defer cancel()
	if err := chromedp.Run(runCtx, chromedp.WaitReady(locator, chromedp.BySearch)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return trends.Element{}, fmt.Errorf("%w: %s after %s", trends.ErrElementNotFound, locator, timeout)
		}
		return trends.Element{}, fmt.Errorf("wait for %s: %w", locator, err)
	}
	return trends.Element{Locator: locator}, nil
}

// SendKeys types keys into the element.
func (s *browserSession) SendKeys(ctx context.Context, el trends.Element, keys string) error {
	runCtx, cancel := s.bind(ctx, 0)
	defer cancel()
	if err := chromedp.Run(runCtx, chromedp.SendKeys(el.Locator, keys, chromedp.BySearch)); err != nil {
		return fmt.Errorf("send keys to %s: %w", el.Locator, err)
	}
	return nil
}

// Texts collects the text of every selector match under el.
func (s *browserSession) Texts(ctx context.Context, el trends.Element, selector string) ([]string, error) {
	runCtx, cancel := s.bind(ctx, 0)
	defer cancel()
	var texts []string
	if err := chromedp.Run(runCtx, chromedp.Evaluate(fmt.Sprintf(collectTextsJS, el.Locator, selector), &texts)); err != nil {
		return nil, fmt.Errorf("collect %s under %s: %w", selector, el.Locator, err)
	}
	return texts, nil
}

func (s *browserSession) close() error {
	err := chromedp.Cancel(s.tabCtx)
	s.tabCancel()
	s.allocCancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}

// bind derives a context from the tab that also ends when the caller's ctx
// ends, optionally bounded by timeout.
func (s *browserSession) bind(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(s.tabCtx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(s.tabCtx)
	}
	stop := forwardCancel(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
