package telemetry

import (
	"context"
	"errors"
)

// EventEmitter emits lifecycle events. Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}

// NopEmitter drops every event.
type NopEmitter struct{}

// Emit does nothing.
func (NopEmitter) Emit(context.Context, *Event) error { return nil }

// MultiEmitter fans one event out to several emitters. Every emitter is tried; errors are joined.
type MultiEmitter []EventEmitter

// Emit calls each non-nil emitter in order.
func (m MultiEmitter) Emit(ctx context.Context, event *Event) error {
	var errs []error
	for _, e := range m {
		if e == nil {
			continue
		}
		if err := e.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Combine returns a single emitter over the non-nil arguments, or NopEmitter if there are none.
func Combine(emitters ...EventEmitter) EventEmitter {
	out := make(MultiEmitter, 0, len(emitters))
	for _, e := range emitters {
		if e != nil {
			out = append(out, e)
		}
	}
	switch len(out) {
	case 0:
		return NopEmitter{}
	case 1:
		return out[0]
	}
	return out
}
