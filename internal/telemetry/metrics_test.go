package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	ctx := context.Background()
	m.Record(ctx, "sign_in", OutcomeSuccess, "")
	m.Record(ctx, "sign_in", OutcomeSuccess, "")
	m.Record(ctx, "sign_in", OutcomeFailure, "invalid_credential")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(rm.ScopeMetrics) != 1 || len(rm.ScopeMetrics[0].Metrics) != 1 {
		t.Fatalf("unexpected metrics: %+v", rm.ScopeMetrics)
	}
	got := rm.ScopeMetrics[0].Metrics[0]
	if got.Name != "auth_outcomes_total" {
		t.Errorf("Name = %q", got.Name)
	}
	sum, ok := got.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("Data = %T, want Sum[int64]", got.Data)
	}
	totals := map[string]int64{}
	for _, dp := range sum.DataPoints {
		outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
		totals[outcome.AsString()] += dp.Value
	}
	if totals[OutcomeSuccess] != 2 || totals[OutcomeFailure] != 1 {
		t.Errorf("totals = %v, want success=2 failure=1", totals)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.Record(context.Background(), "sign_in", OutcomeSuccess, "")

	noop, err := NewMetrics(nil)
	if err != nil {
		t.Fatalf("NewMetrics(nil): %v", err)
	}
	noop.Record(context.Background(), "sign_in", OutcomeSuccess, "")
}
