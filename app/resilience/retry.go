package resilience

import (
	"context"
	"math/rand"
	"time"
)

const (
	DefaultAttempts  = 3
	DefaultRetryBase = 400 * time.Millisecond
)

// Retry runs fn up to attempts times. After each failure it waits
// base * 2^(try-1), jittered by a factor in [0.9, 1.1), then tries again.
// The last error is returned once attempts are exhausted; context
// cancellation aborts the wait early.
func Retry[T any](ctx context.Context, attempts int, base time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if attempts < 1 {
		attempts = DefaultAttempts
	}
	if base <= 0 {
		base = DefaultRetryBase
	}

	var zero T
	var lastErr error

	for try := 1; try <= attempts; try++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if try == attempts {
			break
		}

		jitter := 0.9 + rand.Float64()*0.2
		wait := time.Duration(float64(base) * float64(int(1)<<uint(try-1)) * jitter)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}
