package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestBulkhead_AcquireRelease(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 2})
	ctx := context.Background()

	if err := b.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	if err := b.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}

	// Full, no wait budget: immediate rejection.
	if err := b.Acquire(ctx); !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("Acquire on full bulkhead = %v, want ErrBulkheadFull", err)
	}

	b.Release()
	if err := b.Acquire(ctx); err != nil {
		t.Errorf("Acquire after Release failed: %v", err)
	}

	if b.Rejected() != 1 {
		t.Errorf("Rejected() = %d, want 1", b.Rejected())
	}
}

func TestBulkhead_WaitsForSlot(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: time.Second})
	ctx := context.Background()

	if err := b.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		b.Release()
	}()

	if err := b.Acquire(ctx); err != nil {
		t.Errorf("waiting Acquire = %v, want nil", err)
	}
}

func TestBulkhead_WaitBudgetElapses(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: 20 * time.Millisecond})
	ctx := context.Background()

	if err := b.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	start := time.Now()
	err := b.Acquire(ctx)
	if !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("Acquire = %v, want ErrBulkheadFull", err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("Acquire returned before the wait budget elapsed")
	}
}

func TestBulkhead_CallerContextWins(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: time.Second})

	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	if err := b.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Acquire = %v, want context.Canceled", err)
	}
}

func TestBulkhead_ExecuteLimitsConcurrency(t *testing.T) {
	const max = 4
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: max, MaxWait: time.Second})

	var mu sync.Mutex
	active, peak := 0, 0

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Execute(context.Background(), func(ctx context.Context) error {
				mu.Lock()
				active++
				if active > peak {
					peak = active
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if peak > max {
		t.Errorf("peak concurrency = %d, want <= %d", peak, max)
	}
}
