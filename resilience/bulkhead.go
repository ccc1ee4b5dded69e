package resilience

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"time"
)

// BulkheadConfig configures the bulkhead.
type BulkheadConfig struct {
	// MaxConcurrent is the maximum number of concurrent operations.
	// Default: 10.
	MaxConcurrent int

	// MaxWait is how long Acquire waits for a slot before giving up.
	// Default: 0 (fail immediately when full).
	MaxWait time.Duration
}

// Bulkhead caps the number of operations in flight against a shared resource,
// such as a connection pool. Exhaustion is reported as ErrBulkheadFull after the
// wait budget elapses, never as an unbounded stall.
type Bulkhead struct {
	config   BulkheadConfig
	sem      *semaphore.Weighted
	rejected atomic.Int64
}

// NewBulkhead creates a new bulkhead, applying defaults to the config.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}
	return &Bulkhead{
		config: config,
		sem:    semaphore.NewWeighted(int64(config.MaxConcurrent)),
	}
}

// Acquire claims a slot, waiting up to MaxWait for one to free up.
// Returns ErrBulkheadFull when the wait budget elapses, or ctx.Err() when the
// caller's context ends first.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	if b.sem.TryAcquire(1) {
		return nil
	}
	if b.config.MaxWait <= 0 {
		b.rejected.Add(1)
		return ErrBulkheadFull
	}

	waitCtx, cancel := context.WithTimeout(ctx, b.config.MaxWait)
	defer cancel()

	if err := b.sem.Acquire(waitCtx, 1); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) {
			b.rejected.Add(1)
			return ErrBulkheadFull
		}
		return err
	}
	return nil
}

// Release returns a slot to the bulkhead. Must pair with a successful Acquire.
func (b *Bulkhead) Release() {
	b.sem.Release(1)
}

// Execute runs op inside a slot.
func (b *Bulkhead) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.Acquire(ctx); err != nil {
		return err
	}
	defer b.Release()
	return op(ctx)
}

// Rejected reports how many acquisitions were refused so far.
func (b *Bulkhead) Rejected() int64 {
	return b.rejected.Load()
}
