package observability

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"
)

func TestServiceHealth_Aggregation(t *testing.T) {
	sh := NewServiceHealth("apexflow", "1.0.0")
	if sh.Status != HealthStatusUp {
		t.Fatalf("expected up, got %s", sh.Status)
	}

	sh.AddComponent(Health{Name: "prices", Status: HealthStatusUp})
	if sh.Status != HealthStatusUp {
		t.Fatalf("expected up, got %s", sh.Status)
	}

	sh.AddComponent(Health{Name: "exchange", Status: HealthStatusDegraded})
	if sh.Status != HealthStatusDegraded {
		t.Fatalf("expected degraded, got %s", sh.Status)
	}

	sh.AddComponent(Health{Name: "webhook", Status: HealthStatusDown})
	if sh.Status != HealthStatusDown {
		t.Fatalf("expected down, got %s", sh.Status)
	}

	sh.AddComponent(Health{Name: "late", Status: HealthStatusDegraded})
	if sh.Status != HealthStatusDown {
		t.Fatal("down must not be upgraded by a later degraded component")
	}
}

func TestNewMetrics_NoopMeter(t *testing.T) {
	m, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	m.RecordExecutionStart(ctx)
	m.RecordExecutionEnd(ctx, "wf-1", true, 100*time.Millisecond)
	m.RecordExecutionEnd(ctx, "wf-1", false, time.Second)
	m.RecordOrder(ctx, "my-binance")
	m.RecordWebhook(ctx, false)
}

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" {
		t.Fatalf("unexpected endpoint %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Fatalf("unexpected sample rate %v", cfg.SampleRate)
	}
	if cfg.MetricsInterval != 15*time.Second {
		t.Fatalf("unexpected interval %v", cfg.MetricsInterval)
	}
}

func TestInit_DisabledIsNoop(t *testing.T) {
	p, err := Init(context.Background(), Config{}, ServiceInfo{Name: "apexflow"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
