package resilience

import (
	"context"
	"time"
)

// RetryConfig configures the retry behavior.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the initial one).
	// Default: 1 (no retries).
	MaxAttempts int

	// Interval is the fixed delay between attempts.
	// Default: 100ms.
	Interval time.Duration

	// RetryIf determines whether an error should trigger another attempt.
	// Default: all non-nil errors trigger a retry.
	RetryIf func(err error) bool

	// OnRetry is called before each retry attempt.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry runs operations with a bounded, fixed-interval retry loop.
//
// Contract:
// - Concurrency: safe for concurrent use; Retry carries no per-call state.
// - Context: waits between attempts are interrupted by ctx cancellation.
// - Errors: the last attempt's error is returned unwrapped.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a new retry handler, applying defaults to the config.
func NewRetry(config RetryConfig) *Retry {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if config.Interval <= 0 {
		config.Interval = 100 * time.Millisecond
	}
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool { return err != nil }
	}
	return &Retry{config: config}
}

// Execute runs op until it succeeds, exhausts the attempt budget, or fails with
// an error RetryIf rejects. The loop is an explicit counter, never recursion,
// so stack depth and timing stay flat regardless of attempt count.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !r.config.RetryIf(err) {
			return err
		}
		if attempt >= r.config.MaxAttempts {
			break
		}

		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, r.config.Interval)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.config.Interval):
		}
	}

	return lastErr
}

// Config returns the retry configuration after defaults were applied.
func (r *Retry) Config() RetryConfig {
	return r.config
}
