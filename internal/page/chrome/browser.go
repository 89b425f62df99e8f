// Package chrome implements page.Page on top of the Chrome DevTools protocol.
package chrome

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/ethpandaops/uimatrix/internal/page"
)

var (
	// ErrNotStarted is returned by NewPage before Start or after Stop.
	ErrNotStarted = errors.New("browser not started")
	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("browser already started")
)

const (
	startupTimeout = 30 * time.Second
	windowWidth    = 1920
	windowHeight   = 1080
)

// Options configures the browser connection.
type Options struct {
	// RemoteURL is a DevTools websocket URL. Empty launches a local Chrome.
	RemoteURL string
	Headless  bool
	// NavigationRate caps navigations per second across all tabs. Zero is unlimited.
	NavigationRate float64
}

// Browser owns one Chrome instance and hands out one tab per page.
type Browser struct {
	log     logrus.FieldLogger
	opts    Options
	limiter *rate.Limiter

	mu            sync.Mutex
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

// NewBrowser creates a browser. Call Start before opening pages.
func NewBrowser(log logrus.FieldLogger, opts Options) *Browser {
	b := &Browser{
		log:  log.WithField("component", "chrome"),
		opts: opts,
	}

	if opts.NavigationRate > 0 {
		b.limiter = rate.NewLimiter(rate.Limit(opts.NavigationRate), 1)
	}

	return b
}

// Start launches or connects to Chrome and checks it responds.
func (b *Browser) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCtx != nil {
		return ErrAlreadyStarted
	}

	var allocCtx context.Context

	// The allocator outlives the start context; Stop releases it.
	base := context.WithoutCancel(ctx)

	if b.opts.RemoteURL != "" {
		allocCtx, b.allocCancel = chromedp.NewRemoteAllocator(base, b.opts.RemoteURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", b.opts.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.WindowSize(windowWidth, windowHeight),
		)

		allocCtx, b.allocCancel = chromedp.NewExecAllocator(base, opts...)
	}

	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(b.log.Debugf),
		chromedp.WithErrorf(b.log.Debugf),
	)

	// The first Run allocates the browser and must not carry a deadline.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		b.allocCancel()

		return fmt.Errorf("starting browser: %w", err)
	}

	checkCtx, cancel := context.WithTimeout(browserCtx, startupTimeout)
	defer cancel()

	if err := chromedp.Run(checkCtx, chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		b.allocCancel()

		return fmt.Errorf("browser failed startup check: %w", err)
	}

	b.browserCtx = browserCtx
	b.browserCancel = browserCancel

	b.log.WithFields(logrus.Fields{
		"remote":   b.opts.RemoteURL != "",
		"headless": b.opts.Headless,
	}).Info("browser started")

	return nil
}

// Stop closes every tab and the browser.
func (b *Browser) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCtx == nil {
		return nil
	}

	b.browserCancel()
	b.allocCancel()

	b.browserCtx = nil
	b.log.Info("browser stopped")

	return nil
}

// NewPage opens a new tab.
func (b *Browser) NewPage(_ context.Context) (page.Page, error) {
	b.mu.Lock()
	parent := b.browserCtx
	b.mu.Unlock()

	if parent == nil {
		return nil, ErrNotStarted
	}

	tabCtx, cancel := chromedp.NewContext(parent)

	if err := chromedp.Run(tabCtx); err != nil {
		cancel()

		return nil, fmt.Errorf("opening tab: %w", err)
	}

	return &tab{
		ctx:     tabCtx,
		cancel:  cancel,
		limiter: b.limiter,
		log:     b.log,
	}, nil
}

var _ page.Factory = (*Browser)(nil)
