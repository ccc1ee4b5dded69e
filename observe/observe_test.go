package observe

import (
	"context"
	"errors"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name:    "missing service name",
			cfg:     Config{},
			wantErr: ErrMissingServiceName,
		},
		{
			name: "valid minimal",
			cfg:  Config{ServiceName: "lookupops"},
		},
		{
			name: "bad tracing exporter",
			cfg: Config{
				ServiceName: "lookupops",
				Tracing:     TracingConfig{Enabled: true, Exporter: "bogus"},
			},
			wantErr: ErrInvalidTracingExporter,
		},
		{
			name: "bad sample pct",
			cfg: Config{
				ServiceName: "lookupops",
				Tracing:     TracingConfig{Enabled: true, Exporter: "none", SamplePct: 1.5},
			},
			wantErr: ErrInvalidSamplePct,
		},
		{
			name: "bad metrics exporter",
			cfg: Config{
				ServiceName: "lookupops",
				Metrics:     MetricsConfig{Enabled: true, Exporter: "bogus"},
			},
			wantErr: ErrInvalidMetricsExporter,
		},
		{
			name: "bad log level",
			cfg: Config{
				ServiceName: "lookupops",
				Logging:     LoggingConfig{Enabled: true, Level: "loud"},
			},
			wantErr: ErrInvalidLogLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewObserver_AllDisabled(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "lookupops"})
	if err != nil {
		t.Fatalf("NewObserver failed: %v", err)
	}

	if obs.Tracer() == nil {
		t.Error("Tracer() should return a noop tracer, not nil")
	}
	if obs.Meter() == nil {
		t.Error("Meter() should return a noop meter, not nil")
	}
	if obs.Logger() == nil {
		t.Error("Logger() should return a noop logger, not nil")
	}

	// Shutdown with nothing configured is a no-op.
	if err := obs.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() = %v", err)
	}
	if err := obs.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown() = %v", err)
	}
}

func TestNewObserver_InvalidConfig(t *testing.T) {
	_, err := NewObserver(context.Background(), Config{})
	if !errors.Is(err, ErrMissingServiceName) {
		t.Errorf("NewObserver error = %v, want ErrMissingServiceName", err)
	}
}

func TestNewMetrics_NoopMeter(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "lookupops"})
	if err != nil {
		t.Fatalf("NewObserver failed: %v", err)
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	// Recording against a noop meter must not panic.
	metrics.RecordResolve(context.Background(), LookupMeta{Name: "x"}, 0, nil)
	metrics.RecordResolve(context.Background(), LookupMeta{Name: "x"}, 0, errors.New("boom"))
}
