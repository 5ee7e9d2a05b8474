package crawler

import "time"

// Default retry budget for page loads.
const (
	DefaultMaxAttempts  = 3
	DefaultBackoffDelay = 2 * time.Second
)

// LinearRetryPolicy waits attempt × delay after each failed attempt.
type LinearRetryPolicy struct {
	maxAttempts int
	delay       time.Duration
}

// NewLinearRetryPolicy builds a policy; non-positive values fall back to the defaults.
func NewLinearRetryPolicy(maxAttempts int, delay time.Duration) *LinearRetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if delay < 0 {
		delay = DefaultBackoffDelay
	}
	return &LinearRetryPolicy{
		maxAttempts: maxAttempts,
		delay:       delay,
	}
}

// MaxAttempts returns the total number of attempts, including the first.
func (p *LinearRetryPolicy) MaxAttempts() int {
	return p.maxAttempts
}

// Backoff returns the wait after the given 1-based failed attempt.
func (p *LinearRetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	return time.Duration(attempt) * p.delay
}
