// Package ratelimit paces individual crawl workers with a token bucket.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/wikicorpus/wikiharvest/internal/metrics"
)

// Limiter enforces a minimum interval between acquisitions. Each worker owns
// its own Limiter, so total throughput scales with the worker count; there is
// no cross-worker fairness or coordination.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a Limiter with the given minimum interval between requests.
// A nonpositive interval disables limiting.
func New(interval time.Duration) *Limiter {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	// Burst of one: the bucket starts full, so the first acquisition never
	// blocks and each later one waits out the interval.
	return &Limiter{
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Wait blocks until the interval since the previous acquisition has elapsed,
// respecting the context.
func (l *Limiter) Wait(ctx context.Context) error {
	start := time.Now()
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	if delay := time.Since(start); delay > time.Millisecond {
		metrics.ObserveRateLimitDelay(delay)
	}
	return nil
}
