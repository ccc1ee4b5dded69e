package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Resolution directions, used as the lookup.direction attribute.
const (
	DirectionForward = "forward"
	DirectionReverse = "reverse"
	DirectionBatch   = "batch"
)

// LookupMeta identifies a lookup for telemetry purposes.
type LookupMeta struct {
	Name      string // lookup name or instance id (required)
	Endpoint  string // remote endpoint host (optional, never includes credentials)
	Direction string // forward|reverse|batch (optional)
}

// SpanName returns the deterministic span name for a resolution.
// Format: lookup.resolve.<direction> or lookup.resolve when direction is unset.
func (m LookupMeta) SpanName() string {
	if m.Direction != "" {
		return "lookup.resolve." + m.Direction
	}
	return "lookup.resolve"
}

// WithDirection returns a copy of the meta for the given resolution direction.
func (m LookupMeta) WithDirection(direction string) LookupMeta {
	m.Direction = direction
	return m
}

func (m LookupMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("lookup.name", m.Name),
	}
	if m.Endpoint != "" {
		attrs = append(attrs, attribute.String("lookup.endpoint", m.Endpoint))
	}
	if m.Direction != "" {
		attrs = append(attrs, attribute.String("lookup.direction", m.Direction))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with lookup-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan is best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a lookup resolution.
	StartSpan(ctx context.Context, meta LookupMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta LookupMeta) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(meta.attributes()...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// nopTracer is a tracer that does nothing.
type nopTracer struct {
	noop trace.Tracer
}

// NopTracer returns a Tracer that records nothing.
func NopTracer() Tracer {
	return &nopTracer{noop: tracenoop.NewTracerProvider().Tracer("noop")}
}

func (t *nopTracer) StartSpan(ctx context.Context, meta LookupMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *nopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
