package service

import (
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"storefront-auth/backend/internal/otp"
	"storefront-auth/backend/internal/telemetry"
)

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now. Used by tests to cross OTP and token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithOTPGenerator replaces the crypto/rand code generator.
func WithOTPGenerator(gen otp.Generator) Option {
	return func(s *Service) {
		if gen != nil {
			s.otpGen = gen
		}
	}
}

// WithIDGenerator replaces uuid.NewString for new account IDs.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithEvents sets the lifecycle event emitter.
func WithEvents(emitter telemetry.EventEmitter) Option {
	return func(s *Service) {
		if emitter != nil {
			s.events = emitter
		}
	}
}

// WithMetrics sets the outcome counter.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTracer sets the tracer used for operation spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
