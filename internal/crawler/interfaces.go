package crawler

import (
	"context"
	"time"
)

// Fetcher fetches a URL and returns the body plus metadata. Implementations
// return the response for non-2xx statuses; the DocumentLoader decides.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// RetryPolicy decides how many attempts a load gets and how long to wait
// between them.
type RetryPolicy interface {
	MaxAttempts() int
	Backoff(attempt int) time.Duration
}

// Limiter paces fetches. Wait blocks until a fetch of url may start.
type Limiter interface {
	Wait(ctx context.Context, url string) error
}

// Publisher pushes dataset refresh notifications to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Hasher computes digests of persisted datasets.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// IDGenerator produces run IDs.
type IDGenerator interface {
	NewID() (string, error)
}
