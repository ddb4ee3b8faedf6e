package genai

import (
	"context"
	"crypto/rand"
	"math"
	"math/big"
	"time"
)

// CalculateBackoff calculates the delay before the next retry attempt.
// Uses AWS-recommended Full Jitter algorithm:
//
//	delay = random(0, min(maxDelay, initialDelay * 2^attempt))
//
// Reference: https://aws.amazon.com/blogs/architecture/exponential-backoff-and-jitter/
func CalculateBackoff(attempt int, initial, maxDelay time.Duration) time.Duration {
	if attempt <= 0 {
		return 0 // No delay on first attempt
	}

	// Calculate exponential delay: initial * 2^(attempt-1)
	exp := math.Pow(2, float64(attempt-1))
	delay := time.Duration(float64(initial) * exp)

	delay = min(delay, maxDelay)

	// Apply Full Jitter: random(0, delay)
	if delay <= 0 {
		return 0
	}

	// Use crypto/rand for uniform distribution without bias
	maxNs := big.NewInt(int64(delay))
	jitterBig, err := rand.Int(rand.Reader, maxNs)
	if err != nil {
		return delay / 2
	}

	return time.Duration(jitterBig.Int64())
}

// Sleep waits for the specified duration, respecting context cancellation.
// Returns ctx.Err() if context is cancelled during sleep.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WithRetry executes fn with retry logic using exponential backoff.
// fn is retried on transient errors up to cfg.MaxAttempts times; a
// server-requested Retry-After raises the delay up to cfg.MaxDelay.
// onRetry, when set, is called before each retry sleep.
//
// Returns the last error if all attempts fail, or nil on success.
// A retry whose delay would not fit in the context deadline is skipped.
func WithRetry(ctx context.Context, cfg RetryConfig, onRetry func(attempt int, err error, delay time.Duration), fn func() error) error {
	var lastErr error

	for attempt := range max(cfg.MaxAttempts, 1) {
		// Check context before attempting
		if ctx.Err() != nil {
			if lastErr != nil {
				return lastErr
			}
			return ctx.Err()
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}

		// Don't sleep after the last attempt
		if attempt >= cfg.MaxAttempts-1 {
			break
		}

		delay := retryDelay(attempt+1, cfg, err)
		if !HasSufficientBudget(ctx, delay) {
			return lastErr
		}
		if onRetry != nil {
			onRetry(attempt+1, err, delay)
		}
		if err := Sleep(ctx, delay); err != nil {
			return lastErr
		}
	}

	return lastErr
}

// retryDelay is the jittered backoff, raised to the server's Retry-After.
func retryDelay(attempt int, cfg RetryConfig, err error) time.Duration {
	delay := CalculateBackoff(attempt, cfg.InitialDelay, cfg.MaxDelay)
	if ra := retryAfterOf(err); ra > delay {
		delay = min(ra, cfg.MaxDelay)
	}
	return delay
}

// RemainingBudget calculates how much time is left in the context deadline.
// Returns 0 if no deadline is set, or negative if deadline has passed.
func RemainingBudget(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0 // No deadline
	}
	return time.Until(deadline)
}

// HasSufficientBudget checks if there's enough time remaining for an operation.
// This helps prevent starting operations that are likely to timeout.
func HasSufficientBudget(ctx context.Context, required time.Duration) bool {
	deadline, ok := ctx.Deadline()
	if !ok {
		return true // No deadline means unlimited budget
	}
	return time.Until(deadline) >= required
}
