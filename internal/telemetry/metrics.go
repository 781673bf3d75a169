package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Outcome labels for the auth_outcomes_total counter.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics records per-operation auth outcomes.
type Metrics struct {
	outcomes metric.Int64Counter
}

// NewMetrics registers auth_outcomes_total on meter. A nil meter yields a no-op recorder.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("storefront-auth")
	}
	c, err := meter.Int64Counter("auth_outcomes_total",
		metric.WithDescription("Account lifecycle operations by operation and outcome."),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}
	return &Metrics{outcomes: c}, nil
}

// Record adds one to the counter for operation. reason is the error class on failure and empty on success.
func (m *Metrics) Record(ctx context.Context, operation, outcome, reason string) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	}
	if reason != "" {
		attrs = append(attrs, attribute.String("reason", reason))
	}
	m.outcomes.Add(ctx, 1, metric.WithAttributes(attrs...))
}
