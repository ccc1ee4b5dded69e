package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func countingLoader(loads *atomic.Int64, value string) Loader[string, string] {
	return func(ctx context.Context, key string) (string, error) {
		loads.Add(1)
		return value, nil
	}
}

func TestLoading_MissThenFill(t *testing.T) {
	c := NewLoading[string, string](Spec{})
	ctx := context.Background()

	var loads atomic.Int64

	got, err := c.Get(ctx, "k1", countingLoader(&loads, "v1"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "v1" {
		t.Errorf("Get = %q, want %q", got, "v1")
	}
	if loads.Load() != 1 {
		t.Errorf("loads = %d, want 1", loads.Load())
	}

	// Second get is served from the cache; the loader must not run again.
	got, err = c.Get(ctx, "k1", countingLoader(&loads, "other"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "v1" {
		t.Errorf("Get = %q, want cached %q", got, "v1")
	}
	if loads.Load() != 1 {
		t.Errorf("loads = %d, want 1", loads.Load())
	}
}

func TestLoading_LoaderErrorNotCached(t *testing.T) {
	c := NewLoading[string, string](Spec{})
	ctx := context.Background()

	boom := errors.New("remote down")
	attempts := 0

	load := func(ctx context.Context, key string) (string, error) {
		attempts++
		if attempts == 1 {
			return "", boom
		}
		return "recovered", nil
	}

	if _, err := c.Get(ctx, "k1", load); !errors.Is(err, boom) {
		t.Errorf("Get error = %v, want %v", err, boom)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after failed load, want 0", c.Len())
	}

	got, err := c.Get(ctx, "k1", load)
	if err != nil {
		t.Fatalf("Get after failure = %v", err)
	}
	if got != "recovered" {
		t.Errorf("Get = %q, want %q", got, "recovered")
	}
}

func TestLoading_SizeEviction(t *testing.T) {
	c := NewLoading[string, string](Spec{MaximumSize: 2})

	c.Put("a", "1")
	c.Put("b", "2")
	c.Put("c", "3") // evicts "a", the least recently used

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if _, ok := c.GetIfPresent("a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.GetIfPresent("b"); !ok {
		t.Error("entry b should survive")
	}
	if _, ok := c.GetIfPresent("c"); !ok {
		t.Error("entry c should survive")
	}
}

func TestLoading_AccessRefreshesRecency(t *testing.T) {
	c := NewLoading[string, string](Spec{MaximumSize: 2})

	c.Put("a", "1")
	c.Put("b", "2")

	// Touch "a" so "b" becomes the eviction candidate.
	if _, ok := c.GetIfPresent("a"); !ok {
		t.Fatal("entry a missing")
	}

	c.Put("c", "3")

	if _, ok := c.GetIfPresent("a"); !ok {
		t.Error("recently used entry was evicted")
	}
	if _, ok := c.GetIfPresent("b"); ok {
		t.Error("least recently used entry should have been evicted")
	}
}

func TestLoading_ExpireAfterAccess(t *testing.T) {
	c := NewLoading[string, string](Spec{ExpireAfterAccess: 30 * time.Millisecond})

	c.Put("k1", "v1")

	if _, ok := c.GetIfPresent("k1"); !ok {
		t.Fatal("entry should be present before expiry")
	}

	time.Sleep(50 * time.Millisecond)

	if _, ok := c.GetIfPresent("k1"); ok {
		t.Error("entry should have expired")
	}

	// Expiry shows as a plain miss: the next Get reloads.
	var loads atomic.Int64
	got, err := c.Get(context.Background(), "k1", countingLoader(&loads, "v2"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "v2" || loads.Load() != 1 {
		t.Errorf("Get = %q (loads %d), want reload", got, loads.Load())
	}
}

func TestLoading_PutOverwrites(t *testing.T) {
	c := NewLoading[string, string](Spec{})

	c.Put("k1", "old")
	c.Put("k1", "new")

	if got, _ := c.GetIfPresent("k1"); got != "new" {
		t.Errorf("GetIfPresent = %q, want %q", got, "new")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestLoading_Purge(t *testing.T) {
	c := NewLoading[string, string](Spec{})

	c.Put("a", "1")
	c.Put("b", "2")
	c.Purge()

	if c.Len() != 0 {
		t.Errorf("Len() = %d after Purge, want 0", c.Len())
	}
	if _, ok := c.GetIfPresent("a"); ok {
		t.Error("entry survived Purge")
	}
}

func TestLoading_ConcurrentMissesCollapse(t *testing.T) {
	c := NewLoading[string, string](Spec{})
	ctx := context.Background()

	var loads atomic.Int64
	release := make(chan struct{})

	load := func(ctx context.Context, key string) (string, error) {
		loads.Add(1)
		<-release
		return "shared", nil
	}

	const goroutines = 16
	var wg sync.WaitGroup
	results := make([]string, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Get(ctx, "cold", load)
			if err != nil {
				t.Errorf("Get failed: %v", err)
				return
			}
			results[i] = v
		}(i)
	}

	// Let the callers pile onto the singleflight before releasing the load.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := loads.Load(); got != 1 {
		t.Errorf("loads = %d, want 1 (concurrent misses must collapse)", got)
	}
	for i, v := range results {
		if v != "shared" {
			t.Errorf("results[%d] = %q, want %q", i, v, "shared")
		}
	}
}

func TestLoading_ConcurrentMixedAccess(t *testing.T) {
	c := NewLoading[string, string](Spec{MaximumSize: 8})
	ctx := context.Background()

	keys := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := keys[(g+i)%len(keys)]
				switch i % 3 {
				case 0:
					c.Put(key, "v")
				case 1:
					_, _ = c.GetIfPresent(key)
				default:
					_, _ = c.Get(ctx, key, func(ctx context.Context, k string) (string, error) {
						return "loaded", nil
					})
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 8 {
		t.Errorf("Len() = %d, want <= 8", c.Len())
	}
}

func TestLoading_ReverseValueType(t *testing.T) {
	// The reverse cache maps a value to its ordered key sequence.
	c := NewLoading[string, []string](Spec{})
	ctx := context.Background()

	keys, err := c.Get(ctx, "value-1", func(ctx context.Context, v string) ([]string, error) {
		return []string{"k2", "k1"}, nil
	})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(keys) != 2 || keys[0] != "k2" || keys[1] != "k1" {
		t.Errorf("keys = %v, want order preserved", keys)
	}
}
