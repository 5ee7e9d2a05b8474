package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/JakeFAU/launch-table-crawler/internal/metrics"
)

// DefaultUserAgent is a browser-like agent; the source wiki serves reduced
// markup to unknown bots.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// DocumentLoader fetches a page with retries and parses it into a document.
type DocumentLoader struct {
	fetcher   Fetcher
	policy    RetryPolicy
	limiter   Limiter
	clock     clockwork.Clock
	userAgent string
	logger    *zap.Logger
}

// NewDocumentLoader wires a Fetcher to a retry policy. A nil limiter lets
// every attempt through immediately.
func NewDocumentLoader(
	fetcher Fetcher,
	policy RetryPolicy,
	limiter Limiter,
	clock clockwork.Clock,
	userAgent string,
	logger *zap.Logger,
) *DocumentLoader {
	if policy == nil {
		policy = NewLinearRetryPolicy(DefaultMaxAttempts, DefaultBackoffDelay)
	}
	if limiter == nil {
		limiter = unlimited{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentLoader{
		fetcher:   fetcher,
		policy:    policy,
		limiter:   limiter,
		clock:     clock,
		userAgent: userAgent,
		logger:    logger,
	}
}

// Load returns the parsed document for url or a *FetchError once every
// attempt has failed.
func (l *DocumentLoader) Load(ctx context.Context, url string) (*goquery.Document, error) {
	attempts := l.policy.MaxAttempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		doc, err := l.attempt(ctx, url, attempt)
		if err == nil {
			metrics.ObserveFetchAttempt("success")
			return doc, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			metrics.ObserveFetchAttempt("canceled")
			return nil, &FetchError{URL: url, Attempts: attempt, Err: err}
		}
		metrics.ObserveFetchAttempt("failure")
		if attempt == attempts {
			break
		}
		wait := l.policy.Backoff(attempt)
		l.logger.Warn("fetch attempt failed, backing off",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
		if err := l.sleep(ctx, wait); err != nil {
			return nil, &FetchError{URL: url, Attempts: attempt, Err: err}
		}
	}
	return nil, &FetchError{URL: url, Attempts: attempts, Err: lastErr}
}

func (l *DocumentLoader) attempt(ctx context.Context, url string, attempt int) (*goquery.Document, error) {
	if err := l.limiter.Wait(ctx, url); err != nil {
		return nil, err
	}
	resp, err := l.fetcher.Fetch(ctx, FetchRequest{
		URL:     url,
		Headers: http.Header{"User-Agent": {l.userAgent}},
		Attempt: attempt,
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}
	if len(resp.Body) == 0 {
		return nil, errors.New("empty response body")
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	l.logger.Debug("page loaded",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(resp.Body)),
		zap.Duration("duration", resp.Duration),
		zap.Bool("headless", resp.UsedHeadless),
	)
	return doc, nil
}

func (l *DocumentLoader) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := l.clock.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("backoff sleep: %w", ctx.Err())
	case <-timer.Chan():
		return nil
	}
}

type unlimited struct{}

func (unlimited) Wait(context.Context, string) error { return nil }
