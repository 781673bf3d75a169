package telemetry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// emitTimeout is the max time allowed for a single async emit. Used by EmitAsync and by ShutdownDrainDuration.
const emitTimeout = 5 * time.Second

// ShutdownDrainDuration is how long to wait after the HTTP server stops before shutting down
// OTel providers and the Kafka writer, so in-flight async emits can finish. Must be >= emitTimeout.
const ShutdownDrainDuration = emitTimeout

// EmitAsync runs Emit in a goroutine so the request is not blocked. Failures are logged at warn.
//
// emitter and event may be nil; EmitAsync then returns without starting a goroutine.
// The goroutine uses context.Background() with emitTimeout so request cancellation does not abort the emit.
func EmitAsync(emitter EventEmitter, logger *zap.Logger, event *Event) {
	if emitter == nil || event == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := emitter.Emit(ctx, event); err != nil {
			logger.Warn("telemetry: async emit failed", zap.String("event_type", event.EventType), zap.Error(err))
		}
	}()
}
