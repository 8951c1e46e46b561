package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/jax-labs/apexflow/logger"
)

// initMeter installs the global OTLP meter provider.
func initMeter(ctx context.Context, cfg Config, info ServiceInfo) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(info)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(cfg.MetricsInterval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", info.Name,
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricsInterval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the workflow-domain instruments.
type Metrics struct {
	executionTotal    metric.Int64Counter
	executionDuration metric.Float64Histogram
	executionActive   metric.Int64UpDownCounter
	orderTotal        metric.Int64Counter
	webhookTotal      metric.Int64Counter
}

// NewMetrics creates the instruments on the given meter. Works against the
// no-op meter too, so callers need not branch on whether telemetry is on.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	executionTotal, err := meter.Int64Counter("workflow.execution.total",
		metric.WithDescription("Completed workflow executions by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating workflow.execution.total counter: %w", err)
	}

	executionDuration, err := meter.Float64Histogram("workflow.execution.duration",
		metric.WithDescription("Duration of workflow executions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating workflow.execution.duration histogram: %w", err)
	}

	executionActive, err := meter.Int64UpDownCounter("workflow.execution.active",
		metric.WithDescription("Currently running workflow executions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating workflow.execution.active gauge: %w", err)
	}

	orderTotal, err := meter.Int64Counter("workflow.order.total",
		metric.WithDescription("Orders placed by workflow runs, by exchange"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating workflow.order.total counter: %w", err)
	}

	webhookTotal, err := meter.Int64Counter("workflow.webhook.total",
		metric.WithDescription("Webhook deliveries attempted by workflow runs"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating workflow.webhook.total counter: %w", err)
	}

	return &Metrics{
		executionTotal:    executionTotal,
		executionDuration: executionDuration,
		executionActive:   executionActive,
		orderTotal:        orderTotal,
		webhookTotal:      webhookTotal,
	}, nil
}

// RecordExecutionStart increments the active execution count.
func (m *Metrics) RecordExecutionStart(ctx context.Context) {
	m.executionActive.Add(ctx, 1)
}

// RecordExecutionEnd decrements active executions and records the outcome.
func (m *Metrics) RecordExecutionEnd(ctx context.Context, workflowID string, success bool, duration time.Duration) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.executionActive.Add(ctx, -1)
	m.executionTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("workflow_id", workflowID),
		attribute.String("outcome", outcome),
	))
	m.executionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("workflow_id", workflowID),
	))
}

// RecordOrder records an order placed through a workflow.
func (m *Metrics) RecordOrder(ctx context.Context, exchangeID string) {
	m.orderTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("exchange", exchangeID),
	))
}

// RecordWebhook records a webhook delivery attempt.
func (m *Metrics) RecordWebhook(ctx context.Context, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.webhookTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}
