package worker

import (
	"context"
	"fmt"
	"time"
)

// retryBaseDelay is the wait after the first failed attempt; it grows linearly.
var retryBaseDelay = 500 * time.Millisecond

// retry calls fn up to attempts times, waiting longer after each failure.
// It stops early when ctx is done.
func retry[T any](ctx context.Context, attempts int, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if i == attempts-1 {
			break
		}

		timer := time.NewTimer(time.Duration(i+1) * retryBaseDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, fmt.Errorf("after %d attempts: %w", i+1, ctx.Err())
		case <-timer.C:
		}
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
