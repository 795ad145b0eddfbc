package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ErrClosed is returned when rendering with a closed ChromeRenderer.
var ErrClosed = errors.New("render: chrome renderer is closed")

type chromeConfig struct {
	sources      []BrowserSource
	startTimeout time.Duration
	timeout      time.Duration
	noSandbox    bool
	log          *slog.Logger
}

func defaultChromeConfig() chromeConfig {
	return chromeConfig{
		sources:      DefaultSources("", false),
		startTimeout: 10 * time.Second,
		timeout:      30 * time.Second,
		log:          slog.Default(),
	}
}

// ChromeOption configures a [ChromeRenderer].
type ChromeOption func(*chromeConfig)

// WithBrowserSources replaces the ordered list of places to find Chrome.
func WithBrowserSources(srcs ...BrowserSource) ChromeOption {
	return func(c *chromeConfig) { c.sources = srcs }
}

// WithStartTimeout bounds locating and launching the browser.
// Defaults to 10 seconds.
func WithStartTimeout(d time.Duration) ChromeOption {
	return func(c *chromeConfig) { c.startTimeout = d }
}

// WithTimeout bounds a single conversion. Defaults to 30 seconds.
// A zero or negative value disables it.
func WithTimeout(d time.Duration) ChromeOption {
	return func(c *chromeConfig) { c.timeout = d }
}

// WithNoSandbox disables the Chrome sandbox, required when running as root
// inside containers.
func WithNoSandbox() ChromeOption {
	return func(c *chromeConfig) { c.noSandbox = true }
}

// WithLogger sets the logger used for browser lifecycle messages.
func WithLogger(l *slog.Logger) ChromeOption {
	return func(c *chromeConfig) { c.log = l }
}

// ChromeRenderer prints the html backend's markup to PDF with headless
// Chrome. The browser is started on first use and shared by all renders;
// a failed start is retried on the next call, and a browser that has died
// is replaced on the next call.
type ChromeRenderer struct {
	html *HTMLRenderer
	page PageConfig
	cfg  chromeConfig

	mu            sync.Mutex
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	closed        bool
}

// NewChromeRenderer returns a ChromeRenderer. No browser is launched until
// the first Render.
func NewChromeRenderer(html *HTMLRenderer, pg PageConfig, opts ...ChromeOption) *ChromeRenderer {
	cfg := defaultChromeConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &ChromeRenderer{html: html, page: pg.resolved(), cfg: cfg}
}

func (c *ChromeRenderer) Name() string { return "chrome" }

// Render writes the markup to a temporary file and prints it.
func (c *ChromeRenderer) Render(ctx context.Context, doc Document) (*Result, error) {
	browserCtx, err := c.browser(ctx)
	if err != nil {
		return nil, err
	}

	markup, err := c.html.markup(doc)
	if err != nil {
		return nil, err
	}

	f, err := os.CreateTemp("", "itinerary-*.html")
	if err != nil {
		return nil, fmt.Errorf("render.ChromeRenderer: creating temp file: %w", err)
	}
	name := f.Name()
	defer os.Remove(name)

	if _, err := f.Write(markup); err != nil {
		f.Close()
		return nil, fmt.Errorf("render.ChromeRenderer: writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("render.ChromeRenderer: closing temp file: %w", err)
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, fmt.Errorf("render.ChromeRenderer: resolving path: %w", err)
	}

	if c.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.timeout)
		defer cancel()
	}

	tabCtx, tabCancel := chromedp.NewContext(browserCtx)
	defer tabCancel()

	// Cancel the tab when the request context ends.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	w, h := c.page.dimensions()
	m := c.page.Margin

	var buf []byte
	if err := chromedp.Run(tabCtx,
		chromedp.Navigate("file://"+abs),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPaperWidth(mmToInches(w)).
				WithPaperHeight(mmToInches(h)).
				WithMarginTop(mmToInches(m.Top)).
				WithMarginRight(mmToInches(m.Right)).
				WithMarginBottom(mmToInches(m.Bottom)).
				WithMarginLeft(mmToInches(m.Left)).
				WithPrintBackground(true).
				Do(ctx)
			return err
		}),
	); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("render.ChromeRenderer: %w", ctx.Err())
		}
		return nil, fmt.Errorf("render.ChromeRenderer: conversion failed: %w", err)
	}

	return NewResult(buf, "application/pdf", "pdf", len(doc.Plan.Pages)), nil
}

// browser returns the shared browser context, launching it if needed.
func (c *ChromeRenderer) browser(ctx context.Context) (context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if c.browserCtx != nil {
		if c.browserCtx.Err() == nil {
			return c.browserCtx, nil
		}
		// The browser exited or was killed; launch a new one.
		c.cfg.log.Warn("chrome browser gone, restarting", "error", context.Cause(c.browserCtx))
		c.dropBrowser()
	}

	startCtx := ctx
	if c.cfg.startTimeout > 0 {
		var cancel context.CancelFunc
		startCtx, cancel = context.WithTimeout(ctx, c.cfg.startTimeout)
		defer cancel()
	}

	execPath, err := ResolveBrowser(startCtx, c.cfg.sources...)
	if err != nil {
		return nil, fmt.Errorf("render.ChromeRenderer: %w", err)
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(execPath),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("no-first-run", true),
	)
	if c.cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	started := make(chan error, 1)
	go func() { started <- chromedp.Run(browserCtx) }()

	select {
	case err := <-started:
		if err != nil {
			browserCancel()
			allocCancel()
			return nil, fmt.Errorf("render.ChromeRenderer: starting browser: %w", err)
		}
	case <-startCtx.Done():
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("render.ChromeRenderer: starting browser: %w", startCtx.Err())
	}

	c.cfg.log.Info("chrome browser started", "path", execPath)
	c.browserCtx, c.browserCancel, c.allocCancel = browserCtx, browserCancel, allocCancel
	return browserCtx, nil
}

// Close stops the browser process. Close is idempotent.
func (c *ChromeRenderer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.dropBrowser()
	return nil
}

// dropBrowser stops the cached browser, if any, and forgets it.
// c.mu must be held.
func (c *ChromeRenderer) dropBrowser() {
	if c.browserCancel != nil {
		c.browserCancel()
		c.allocCancel()
	}
	c.browserCtx, c.browserCancel, c.allocCancel = nil, nil, nil
}
