// Package producer publishes lifecycle events to a message broker.
package producer

import (
	"storefront-auth/backend/internal/telemetry"
)

// Producer is an EventEmitter that owns broker resources.
type Producer interface {
	telemetry.EventEmitter
	// Close flushes and releases resources. Safe to call if already closed.
	Close() error
}
