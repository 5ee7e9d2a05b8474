// Package headless renders launch pages in headless Chrome for sites whose
// tables are assembled client-side.
package headless

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/JakeFAU/launch-table-crawler/internal/crawler"
)

const (
	defaultNavTimeout   = 45 * time.Second
	defaultWaitSelector = "table.wikitable"
)

// Config controls the behavior of the headless fetcher.
type Config struct {
	MaxParallel       int
	UserAgent         string
	NavigationTimeout time.Duration
	// WaitSelector is awaited before the DOM is captured. Pages without a
	// match are captured as they stand once WaitTimeout elapses.
	WaitSelector string
	// WaitTimeout bounds the selector wait. It must leave room inside
	// NavigationTimeout; zero or too large a value means a third of it.
	WaitTimeout time.Duration
	SettleDelay time.Duration
}

// Fetcher implements crawler.Fetcher using chromedp and headless Chrome.
type Fetcher struct {
	cfg         Config
	slots       chan struct{}
	allocator   context.Context
	allocCancel context.CancelFunc
}

// NewChromedp creates a headless fetcher backed by chromedp.
func NewChromedp(cfg Config) (*Fetcher, error) {
	if cfg.MaxParallel < 0 {
		return nil, fmt.Errorf("max parallel must be >= 0")
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = defaultNavTimeout
	}
	if cfg.WaitSelector == "" {
		cfg.WaitSelector = defaultWaitSelector
	}
	if cfg.WaitTimeout <= 0 || cfg.WaitTimeout >= cfg.NavigationTimeout {
		cfg.WaitTimeout = cfg.NavigationTimeout / 3
	}
	var slots chan struct{}
	if cfg.MaxParallel > 0 {
		slots = make(chan struct{}, cfg.MaxParallel)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Fetcher{
		cfg:         cfg,
		slots:       slots,
		allocator:   allocCtx,
		allocCancel: allocCancel,
	}, nil
}

// Close shuts down the browser allocator.
func (f *Fetcher) Close() {
	f.allocCancel()
}

// Fetch navigates to the request URL and returns the rendered document.
func (f *Fetcher) Fetch(ctx context.Context, request crawler.FetchRequest) (crawler.FetchResponse, error) {
	if err := f.acquire(ctx); err != nil {
		return crawler.FetchResponse{}, err
	}
	defer f.release()

	tabCtx, tabCancel := chromedp.NewContext(f.allocator)
	defer tabCancel()
	// Tie the tab to the caller's context as well as the nav timeout.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	tabCtx, cancel := context.WithTimeout(tabCtx, f.cfg.NavigationTimeout)
	defer cancel()

	doc := newDocumentResponse()
	chromedp.ListenTarget(tabCtx, doc.observe)

	start := time.Now()
	html, finalURL, err := f.render(tabCtx, request)
	if err != nil {
		if ctx.Err() != nil {
			return crawler.FetchResponse{}, fmt.Errorf("headless fetch canceled: %w", ctx.Err())
		}
		return crawler.FetchResponse{}, err
	}

	status, headers, responseURL := doc.resolve(request.URL, finalURL)
	return crawler.FetchResponse{
		URL:          responseURL,
		StatusCode:   status,
		Headers:      headers,
		Body:         []byte(html),
		Duration:     time.Since(start),
		UsedHeadless: true,
	}, nil
}

func (f *Fetcher) render(ctx context.Context, request crawler.FetchRequest) (string, string, error) {
	var (
		html     string
		finalURL string
	)
	if err := chromedp.Run(ctx,
		f.prepareTab(request.Headers),
		chromedp.Navigate(request.URL),
	); err != nil {
		return "", "", fmt.Errorf("render %s: %w", request.URL, err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, f.cfg.WaitTimeout)
	err := chromedp.Run(waitCtx, chromedp.WaitReady(f.cfg.WaitSelector, chromedp.ByQuery))
	cancel()
	if err != nil && !selectorMissed(waitCtx, ctx) {
		return "", "", fmt.Errorf("render %s: wait for %q: %w", request.URL, f.cfg.WaitSelector, err)
	}

	var actions []chromedp.Action
	if f.cfg.SettleDelay > 0 {
		actions = append(actions, chromedp.Sleep(f.cfg.SettleDelay))
	}
	actions = append(actions,
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err := chromedp.Run(ctx, actions...); err != nil {
		return "", "", fmt.Errorf("render %s: %w", request.URL, err)
	}
	return html, finalURL, nil
}

// selectorMissed reports whether the selector wait ran out on its own
// deadline while the tab itself is still live.
func selectorMissed(waitCtx, tabCtx context.Context) bool {
	return errors.Is(waitCtx.Err(), context.DeadlineExceeded) && tabCtx.Err() == nil
}

func (f *Fetcher) prepareTab(headers http.Header) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if ua := userAgentFor(f.cfg.UserAgent, headers); ua != "" {
			if err := emulation.SetUserAgentOverride(ua).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		extra := toNetworkHeaders(headers)
		delete(extra, "User-Agent")
		if len(extra) > 0 {
			if err := network.SetExtraHTTPHeaders(extra).Do(ctx); err != nil {
				return fmt.Errorf("set extra headers: %w", err)
			}
		}
		return nil
	})
}

func (f *Fetcher) acquire(ctx context.Context) error {
	if f.slots == nil {
		return nil
	}
	select {
	case f.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("headless slot wait canceled: %w", ctx.Err())
	}
}

func (f *Fetcher) release() {
	if f.slots == nil {
		return
	}
	<-f.slots
}

// userAgentFor prefers the per-request header over the configured default.
func userAgentFor(configured string, headers http.Header) string {
	if ua := headers.Get("User-Agent"); ua != "" {
		return ua
	}
	return configured
}
