package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Metrics records lookup resolution metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly; recording never blocks resolution.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordResolve records one resolution with its duration and error status.
	RecordResolve(ctx context.Context, meta LookupMeta, duration time.Duration, err error)
}

type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates a Metrics instance backed by the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"lookup.resolve.total",
		metric.WithDescription("Total number of lookup resolutions"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"lookup.resolve.errors",
		metric.WithDescription("Total number of failed lookup resolutions"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"lookup.resolve.duration_ms",
		metric.WithDescription("Lookup resolution duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
	}, nil
}

func (m *metricsImpl) RecordResolve(ctx context.Context, meta LookupMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(meta.attributes()...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// nopMetrics is a metrics implementation that does nothing.
type nopMetrics struct{}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics { return nopMetrics{} }

func (nopMetrics) RecordResolve(context.Context, LookupMeta, time.Duration, error) {}
