// Package observability wires OpenTelemetry tracing and metrics for the
// workflow service. Spans are emitted per execution and per node by the
// engine; the instruments here aggregate executions, orders and webhook
// deliveries for dashboards.
package observability

import (
	"context"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Config configures the OTLP exporters.
type Config struct {
	// Enabled turns the exporters on. When false, Init is a no-op and the
	// global no-op providers stay in place.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Endpoint is the OTLP HTTP endpoint host:port.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure allows plain HTTP connections.
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// SampleRate is the trace sampling rate (0.0 to 1.0).
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
	// MetricsInterval is the metric export interval.
	MetricsInterval time.Duration `yaml:"metrics_interval" mapstructure:"metrics_interval"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.MetricsInterval <= 0 {
		c.MetricsInterval = 15 * time.Second
	}
}

// ServiceInfo identifies the service in exported telemetry.
type ServiceInfo struct {
	Name        string
	Version     string
	Environment string
}

// Provider owns the initialized tracer and meter providers.
type Provider struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

// Init sets up the global tracer and meter providers per cfg. When telemetry
// is disabled it returns an empty Provider whose Shutdown is a no-op.
func Init(ctx context.Context, cfg Config, info ServiceInfo) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{}, nil
	}
	cfg.ApplyDefaults()

	tp, err := initTracer(ctx, cfg, info)
	if err != nil {
		return nil, err
	}
	mp, err := initMeter(ctx, cfg, info)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}
	return &Provider{tracerProvider: tp, meterProvider: mp}, nil
}

// Shutdown flushes and stops the providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	var firstErr error
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
