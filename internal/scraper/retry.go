package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/mselser95/bookie-arb/pkg/types"
)

const (
	defaultMaxAttempts  = 3
	defaultInitialDelay = time.Second
	defaultMaxDelay     = 30 * time.Second
	backoffFactor       = 1.5
)

// RetryPolicy retries retryable fetch errors with exponential backoff.
type RetryPolicy struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
}

// NewRetryPolicy creates a retry policy. Non-positive values fall back to
// 3 attempts, 1s initial delay and a 30s cap.
func NewRetryPolicy(maxAttempts int, initialDelay, maxDelay time.Duration) *RetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if initialDelay <= 0 {
		initialDelay = defaultInitialDelay
	}
	if maxDelay <= 0 {
		maxDelay = defaultMaxDelay
	}

	return &RetryPolicy{
		maxAttempts:  maxAttempts,
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
	}
}

// Execute runs fn until it succeeds, returns a non-retryable error, the
// attempts run out or ctx is done. fn receives the zero-based attempt number.
func (r *RetryPolicy) Execute(ctx context.Context, fn func(attempt int) error) error {
	var lastErr error
	delay := r.initialDelay

	for attempt := range r.maxAttempts {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		if !types.IsRetryable(err) {
			return err
		}

		lastErr = err

		// Don't sleep after last attempt
		if attempt == r.maxAttempts-1 {
			break
		}

		err = sleepCtx(ctx, delay)
		if err != nil {
			return fmt.Errorf("retry interrupted: %w", err)
		}

		delay = time.Duration(float64(delay) * backoffFactor)
		if delay > r.maxDelay {
			delay = r.maxDelay
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", r.maxAttempts, lastErr)
}

// Delays returns the sleep durations between attempts.
func (r *RetryPolicy) Delays() []time.Duration {
	delays := make([]time.Duration, 0, r.maxAttempts-1)
	delay := r.initialDelay
	for range r.maxAttempts - 1 {
		delays = append(delays, delay)
		delay = min(time.Duration(float64(delay)*backoffFactor), r.maxDelay)
	}

	return delays
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
