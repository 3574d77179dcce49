package ratelimit

import (
	"context"
	"time"

	"jiraminer/pkg/retry"
)

// Limiter paces successive requests against the remote service
type Limiter interface {
	// Wait blocks for the pacing interval or until the context is cancelled
	Wait(ctx context.Context) error
	// Interval reports the configured pacing interval
	Interval() time.Duration
}

// FixedInterval sleeps a fixed duration between page fetches. The search API
// is a shared public instance; a short pause between pages keeps the crawl
// polite without a full token-bucket scheme, since there is only one fetcher.
type FixedInterval struct {
	interval time.Duration
}

// NewFixedInterval creates a fixed-interval pacer
func NewFixedInterval(interval time.Duration) *FixedInterval {
	return &FixedInterval{interval: interval}
}

// Wait blocks for the interval
func (f *FixedInterval) Wait(ctx context.Context) error {
	return retry.Wait(ctx, f.interval)
}

// Interval returns the pacing interval
func (f *FixedInterval) Interval() time.Duration {
	return f.interval
}

// Nop is a pacer that never waits, for tests
type Nop struct{}

// Wait returns immediately
func (Nop) Wait(ctx context.Context) error { return ctx.Err() }

// Interval returns zero
func (Nop) Interval() time.Duration { return 0 }
