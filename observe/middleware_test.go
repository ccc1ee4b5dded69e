package observe

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingMetrics struct {
	mu      sync.Mutex
	records []struct {
		meta LookupMeta
		err  error
	}
}

func (m *recordingMetrics) RecordResolve(_ context.Context, meta LookupMeta, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, struct {
		meta LookupMeta
		err  error
	}{meta, err})
}

func TestMiddleware_WrapResolve(t *testing.T) {
	metrics := &recordingMetrics{}
	var buf bytes.Buffer
	mw := NewMiddleware(NopTracer(), metrics, NewLoggerWithWriter("debug", &buf))

	fn := mw.WrapResolve(LookupMeta{Name: "codes"}, func(ctx context.Context, key string) (string, error) {
		return "value-" + key, nil
	})

	got, err := fn(context.Background(), "k1")
	if err != nil {
		t.Fatalf("wrapped resolve failed: %v", err)
	}
	if got != "value-k1" {
		t.Errorf("resolve = %q, want %q", got, "value-k1")
	}

	if len(metrics.records) != 1 {
		t.Fatalf("metrics records = %d, want 1", len(metrics.records))
	}
	if metrics.records[0].meta.Direction != DirectionForward {
		t.Errorf("direction = %q, want forward", metrics.records[0].meta.Direction)
	}
	if buf.Len() == 0 {
		t.Error("no log line written for resolution")
	}
}

func TestMiddleware_WrapResolve_ErrorPropagates(t *testing.T) {
	metrics := &recordingMetrics{}
	mw := NewMiddleware(nil, metrics, nil)

	boom := errors.New("remote down")
	fn := mw.WrapResolve(LookupMeta{Name: "codes"}, func(ctx context.Context, key string) (string, error) {
		return "", boom
	})

	_, err := fn(context.Background(), "k1")
	if !errors.Is(err, boom) {
		t.Errorf("wrapped resolve error = %v, want %v", err, boom)
	}
	if len(metrics.records) != 1 || metrics.records[0].err == nil {
		t.Error("error was not recorded in metrics")
	}
}

func TestMiddleware_WrapReverse(t *testing.T) {
	metrics := &recordingMetrics{}
	mw := NewMiddleware(nil, metrics, nil)

	fn := mw.WrapReverse(LookupMeta{Name: "codes"}, func(ctx context.Context, value string) ([]string, error) {
		return []string{"a", "b"}, nil
	})

	keys, err := fn(context.Background(), "v")
	if err != nil {
		t.Fatalf("wrapped reverse failed: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("keys = %v", keys)
	}
	if metrics.records[0].meta.Direction != DirectionReverse {
		t.Errorf("direction = %q, want reverse", metrics.records[0].meta.Direction)
	}
}

func TestMiddleware_WrapBatch(t *testing.T) {
	metrics := &recordingMetrics{}
	mw := NewMiddleware(nil, metrics, nil)

	fn := mw.WrapBatch(LookupMeta{Name: "codes"}, func(ctx context.Context, keys []string) (map[string]string, error) {
		return map[string]string{"a": "1"}, nil
	})

	values, err := fn(context.Background(), []string{"a"})
	if err != nil {
		t.Fatalf("wrapped batch failed: %v", err)
	}
	if values["a"] != "1" {
		t.Errorf("values = %v", values)
	}
	if metrics.records[0].meta.Direction != DirectionBatch {
		t.Errorf("direction = %q, want batch", metrics.records[0].meta.Direction)
	}
}

func TestLookupMeta_SpanName(t *testing.T) {
	meta := LookupMeta{Name: "codes"}
	if got := meta.SpanName(); got != "lookup.resolve" {
		t.Errorf("SpanName() = %q", got)
	}
	if got := meta.WithDirection(DirectionBatch).SpanName(); got != "lookup.resolve.batch" {
		t.Errorf("SpanName() = %q", got)
	}
}
