package health

import (
	"context"
	"errors"
	"testing"
)

func TestStatus_String(t *testing.T) {
	if StatusHealthy.String() != "healthy" {
		t.Errorf("StatusHealthy = %q", StatusHealthy.String())
	}
	if StatusUnhealthy.String() != "unhealthy" {
		t.Errorf("StatusUnhealthy = %q", StatusUnhealthy.String())
	}
	if Status(42).String() != "unknown" {
		t.Errorf("Status(42) = %q", Status(42).String())
	}
}

func TestHealthyUnhealthy(t *testing.T) {
	h := Healthy("lookup is open")
	if h.Status != StatusHealthy || h.Message != "lookup is open" {
		t.Errorf("Healthy() = %+v", h)
	}
	if h.Timestamp.IsZero() {
		t.Error("Healthy() should stamp the result")
	}

	boom := errors.New("pool closed")
	u := Unhealthy("lookup is closed", boom)
	if u.Status != StatusUnhealthy || !errors.Is(u.Error, boom) {
		t.Errorf("Unhealthy() = %+v", u)
	}
}

func TestResult_WithDetails(t *testing.T) {
	r := Healthy("ok").WithDetails(map[string]any{"forwardEntries": 3})
	if r.Details["forwardEntries"] != 3 {
		t.Errorf("Details = %v", r.Details)
	}
}

func TestCheckerFunc(t *testing.T) {
	checker := NewCheckerFunc("lookup", func(ctx context.Context) Result {
		return Healthy("open")
	})

	if checker.Name() != "lookup" {
		t.Errorf("Name() = %q", checker.Name())
	}
	if got := checker.Check(context.Background()); got.Status != StatusHealthy {
		t.Errorf("Check() = %+v", got)
	}
}
