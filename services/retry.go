// services/retry.go
package services

import (
	"context"
	"fmt"
	"time"
)

// retryPolicy is a fixed-delay retry: no backoff, no jitter.
type retryPolicy struct {
	attempts    int
	delay       time.Duration
	isRetryable func(error) bool
	sleep       func(context.Context, time.Duration) error
}

// do runs fn until it succeeds, returns a non-retryable error, or the
// attempts are used up. It returns the number of attempts made.
func (p retryPolicy) do(ctx context.Context, fn func(attempt int) error) (int, error) {
	attempts := max(1, p.attempts)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}

		err := fn(attempt)
		if err == nil {
			return attempt, nil
		}
		lastErr = err

		if p.isRetryable != nil && !p.isRetryable(err) {
			return attempt, err
		}

		// no pause after the final attempt
		if attempt < attempts {
			if err := p.sleep(ctx, p.delay); err != nil {
				return attempt, err
			}
		}
	}
	return attempts, fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr)
}

// sleepContext pauses for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
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
