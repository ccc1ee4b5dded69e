package observe

import (
	"context"
	"time"
)

// ResolveFunc is the signature of a forward resolution.
type ResolveFunc func(ctx context.Context, key string) (string, error)

// ReverseFunc is the signature of a reverse resolution.
type ReverseFunc func(ctx context.Context, value string) ([]string, error)

// BatchFunc is the signature of a batched forward resolution.
type BatchFunc func(ctx context.Context, keys []string) (map[string]string, error)

// Middleware instruments lookup resolutions with a span, metrics, and a log
// line per call.
//
// Contract:
//   - Concurrency: the wrapped functions are safe for concurrent use if the
//     original is.
//   - Errors: errors from the wrapped function are recorded and propagated
//     unchanged; instrumentation never converts a failure into a success.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware from the given components. Nil components
// are replaced with no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NopTracer()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{tracer: tracer, metrics: metrics, logger: logger}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// WrapResolve wraps a forward resolution function.
func (m *Middleware) WrapResolve(meta LookupMeta, fn ResolveFunc) ResolveFunc {
	meta = meta.WithDirection(DirectionForward)
	return func(ctx context.Context, key string) (string, error) {
		end := m.begin(&ctx, meta)
		value, err := fn(ctx, key)
		end(ctx, err)
		return value, err
	}
}

// WrapReverse wraps a reverse resolution function.
func (m *Middleware) WrapReverse(meta LookupMeta, fn ReverseFunc) ReverseFunc {
	meta = meta.WithDirection(DirectionReverse)
	return func(ctx context.Context, value string) ([]string, error) {
		end := m.begin(&ctx, meta)
		keys, err := fn(ctx, value)
		end(ctx, err)
		return keys, err
	}
}

// WrapBatch wraps a batched forward resolution function.
func (m *Middleware) WrapBatch(meta LookupMeta, fn BatchFunc) BatchFunc {
	meta = meta.WithDirection(DirectionBatch)
	return func(ctx context.Context, keys []string) (map[string]string, error) {
		end := m.begin(&ctx, meta)
		values, err := fn(ctx, keys)
		end(ctx, err)
		return values, err
	}
}

// begin starts the span and returns the completion callback that ends it,
// records metrics, and logs the outcome.
func (m *Middleware) begin(ctx *context.Context, meta LookupMeta) func(context.Context, error) {
	spanCtx, span := m.tracer.StartSpan(*ctx, meta)
	*ctx = spanCtx
	start := time.Now()

	return func(ctx context.Context, err error) {
		duration := time.Since(start)
		m.tracer.EndSpan(span, err)
		m.metrics.RecordResolve(ctx, meta, duration, err)

		logger := m.logger.WithLookup(meta)
		fields := []Field{{Key: "duration_ms", Value: float64(duration.Milliseconds())}}
		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			logger.Error(ctx, "lookup resolution failed", fields...)
		} else {
			logger.Debug(ctx, "lookup resolution completed", fields...)
		}
	}
}
