// Package retry provides an explicit exponential-backoff retry policy,
// passed to each retryable call site so the policy stays testable in
// isolation.
package retry

import (
	"context"
	"math/rand/v2"
	"time"
)

// Policy describes how a call is retried: total attempt count, exponential
// delay growth from BaseDelay capped at MaxDelay, and optional full jitter.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      bool
}

// Do invokes fn until it succeeds or MaxAttempts is exhausted. The attempt
// number passed to fn is 1-based. Between attempts Do sleeps the backoff
// delay, returning early if ctx is cancelled. The last error is returned on
// exhaustion.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return nil
		}

		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.delay(attempt)):
		}
	}
	return lastErr
}

// delay computes the backoff before the next attempt after the given
// 1-based attempt number.
func (p Policy) delay(attempt int) time.Duration {
	d := p.BaseDelay
	if d <= 0 {
		d = time.Second
	}
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			d = p.MaxDelay
			break
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if p.Jitter {
		d = time.Duration(rand.Int64N(int64(d) + 1))
	}
	return d
}
