package scraper

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy retries a fallible operation with a fixed delay between
// attempts. No jitter is applied here; only the inter-job and inter-page
// waits are randomized.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Retry runs op up to policy.MaxAttempts times. The error from the final
// attempt is returned unchanged so callers can branch on its kind.
func Retry[T any](
	ctx context.Context,
	policy RetryPolicy,
	pause Pauser,
	logger *zap.Logger,
	op func(ctx context.Context) (T, error),
) (T, error) {
	var zero T
	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		logger.Error("attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", policy.MaxAttempts),
			zap.Error(err),
		)
		if attempt == policy.MaxAttempts {
			break
		}
		pause.Pause(ctx, policy.Delay)
		if ctx.Err() != nil {
			break
		}
	}
	return zero, lastErr
}
