package retry

import (
	"time"

	"jiraminer/pkg/errors"
)

// BackoffStrategy computes the delay before the next attempt. The failed
// attempt's error is passed so strategies can differentiate by failure mode.
type BackoffStrategy interface {
	NextDelay(attempt int, err error) time.Duration
}

// ConstantBackoff waits a fixed delay between attempts
type ConstantBackoff struct {
	Delay time.Duration
}

// NextDelay returns the constant delay
func (cb *ConstantBackoff) NextDelay(attempt int, err error) time.Duration {
	return cb.Delay
}

// TransientBackoff waits a long fixed delay after a rate-limit response and a
// shorter fixed delay after server or network failures. Jira's public API
// asks for a full minute of quiet after a 429.
type TransientBackoff struct {
	RateLimitDelay time.Duration
	TransientDelay time.Duration
}

// DefaultTransientBackoff returns the delays the Apache Jira instance expects
func DefaultTransientBackoff() *TransientBackoff {
	return &TransientBackoff{
		RateLimitDelay: 60 * time.Second,
		TransientDelay: 15 * time.Second,
	}
}

// NextDelay selects the delay based on the error type of the failed attempt
func (tb *TransientBackoff) NextDelay(attempt int, err error) time.Duration {
	if errors.TypeOf(err) == errors.ErrorTypeRateLimit {
		return tb.RateLimitDelay
	}
	return tb.TransientDelay
}
