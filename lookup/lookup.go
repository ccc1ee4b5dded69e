package lookup

import (
	"context"
	"sync/atomic"

	"github.com/jonwraymond/lookupops/cache"
	"github.com/jonwraymond/lookupops/fetcher"
	"github.com/jonwraymond/lookupops/observe"
)

// Lookup is the runtime consulted per query. It holds non-owning references
// to the fetcher and caches; the owning Factory's Close tears them down.
//
// Contract:
//   - Concurrency: safe for concurrent use; resolutions of independent keys
//     run in parallel, concurrent misses on one key collapse to one fetch.
//   - Errors: fetch-path errors propagate unconverted. A failed resolution is
//     never turned into an empty value.
type Lookup struct {
	fetch   fetcher.Fetcher
	forward cache.LoadingCache[string, string]
	reverse cache.LoadingCache[string, []string]

	closed atomic.Bool

	resolveFn observe.ResolveFunc
	reverseFn observe.ReverseFunc
	batchFn   observe.BatchFunc
}

// LookupOption customizes a Lookup. Options run after the bare resolve paths
// are assembled, so a wrapping option sees the un-instrumented functions.
type LookupOption func(*Lookup)

// WithInstrumentation wraps every resolve path with the middleware's span,
// metrics, and log line, attributed by meta.
func WithInstrumentation(mw *observe.Middleware, meta observe.LookupMeta) LookupOption {
	return func(l *Lookup) {
		if mw == nil {
			return
		}
		l.resolveFn = mw.WrapResolve(meta, l.resolveFn)
		l.reverseFn = mw.WrapReverse(meta, l.reverseFn)
		l.batchFn = mw.WrapBatch(meta, l.batchFn)
	}
}

// New creates a lookup over the given fetcher and caches.
func New(f fetcher.Fetcher, forward cache.LoadingCache[string, string], reverse cache.LoadingCache[string, []string], opts ...LookupOption) *Lookup {
	l := &Lookup{
		fetch:   f,
		forward: forward,
		reverse: reverse,
	}
	l.resolveFn = l.resolveMiss
	l.reverseFn = l.reverseMiss
	l.batchFn = l.batchMiss
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Resolve returns the value for key, fetching and caching it on a miss.
func (l *Lookup) Resolve(ctx context.Context, key string) (string, error) {
	if l.closed.Load() {
		return "", ErrClosed
	}
	return l.resolveFn(ctx, key)
}

func (l *Lookup) resolveMiss(ctx context.Context, key string) (string, error) {
	return l.forward.Get(ctx, key, func(ctx context.Context, key string) (string, error) {
		return l.fetch.Fetch(ctx, key)
	})
}

// ResolveReverse returns the keys mapping to value, fetching and caching them
// on a miss. A fetcher without reverse support surfaces
// fetcher.ErrReverseUnsupported.
func (l *Lookup) ResolveReverse(ctx context.Context, value string) ([]string, error) {
	if l.closed.Load() {
		return nil, ErrClosed
	}
	return l.reverseFn(ctx, value)
}

func (l *Lookup) reverseMiss(ctx context.Context, value string) ([]string, error) {
	return l.reverse.Get(ctx, value, func(ctx context.Context, value string) ([]string, error) {
		return l.fetch.ReverseFetchKeys(ctx, value)
	})
}

// ResolveBatch resolves all keys in one pass: cached entries are served
// directly, the misses go to the remote in a single batch fetch, and every
// fetched value primes the forward cache for later single-key resolutions.
func (l *Lookup) ResolveBatch(ctx context.Context, keys []string) (map[string]string, error) {
	if l.closed.Load() {
		return nil, ErrClosed
	}
	return l.batchFn(ctx, keys)
}

func (l *Lookup) batchMiss(ctx context.Context, keys []string) (map[string]string, error) {
	results := make(map[string]string, len(keys))
	var misses []string
	for _, key := range keys {
		if _, dup := results[key]; dup {
			continue
		}
		if v, ok := l.forward.GetIfPresent(key); ok {
			results[key] = v
		} else {
			misses = append(misses, key)
		}
	}

	if len(misses) == 0 {
		return results, nil
	}

	fetched, err := l.fetch.FetchBatch(ctx, misses)
	if err != nil {
		return nil, err
	}
	for key, value := range fetched {
		l.forward.Put(key, value)
		results[key] = value
	}
	return results, nil
}

// IsOpen reports whether the lookup can serve resolutions. It reflects
// construction success and Close, not ongoing remote health.
func (l *Lookup) IsOpen() bool {
	return !l.closed.Load()
}

// Close releases the fetcher's connection resources and discards both caches.
// Idempotent.
func (l *Lookup) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := l.fetch.Close()
	l.forward.Purge()
	l.reverse.Purge()
	return err
}
