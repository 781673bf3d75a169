package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"storefront-auth/backend/internal/telemetry"
)

// scopeName is the instrumentation scope of emitted lifecycle log records.
const scopeName = "storefront-auth.lifecycle"

// recordEmitter is the part of otellog.Logger the adapter needs.
type recordEmitter interface {
	Emit(ctx context.Context, record otellog.Record)
}

// NewEventEmitter returns an EventEmitter that writes events as OTel log records.
// A nil provider yields a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return telemetry.NopEmitter{}
	}
	return NewEventEmitterWithLogger(provider.Logger(scopeName))
}

// NewEventEmitterWithLogger returns an EventEmitter over any record emitter.
func NewEventEmitterWithLogger(logger recordEmitter) telemetry.EventEmitter {
	return &otelEmitter{logger: logger, now: time.Now}
}

type otelEmitter struct {
	logger recordEmitter
	now    func() time.Time
}

// Emit maps event fields to log attributes; the event type doubles as the body.
func (e *otelEmitter) Emit(ctx context.Context, event *telemetry.Event) error {
	if event == nil {
		return nil
	}
	var rec otellog.Record
	ts := event.CreatedAt
	if ts.IsZero() {
		ts = e.now().UTC()
	}
	rec.SetTimestamp(ts)
	rec.SetObservedTimestamp(e.now().UTC())
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetBody(otellog.StringValue(event.EventType))

	attrs := make([]otellog.KeyValue, 0, 4)
	for _, kv := range []struct{ k, v string }{
		{"event_type", event.EventType},
		{"account_id", event.AccountID},
		{"email_domain", event.EmailDomain},
		{"source", event.Source},
	} {
		if kv.v != "" {
			attrs = append(attrs, otellog.String(kv.k, kv.v))
		}
	}
	rec.AddAttributes(attrs...)
	e.logger.Emit(ctx, rec)
	return nil
}
