package devotp

import (
	"context"
	"time"

	"storefront-auth/backend/internal/notify"
)

// CaptureNotifier records OTP codes in a Store before handing the message to the next Notifier.
type CaptureNotifier struct {
	store Store
	next  notify.Notifier
	ttl   time.Duration
	now   func() time.Time
}

// NewCaptureNotifier returns a CaptureNotifier. Captured codes live for ttl, matching the OTP window.
func NewCaptureNotifier(store Store, next notify.Notifier, ttl time.Duration) *CaptureNotifier {
	return &CaptureNotifier{store: store, next: next, ttl: ttl, now: time.Now}
}

// Send captures msg.Code for OTP messages, then delegates.
func (c *CaptureNotifier) Send(ctx context.Context, msg notify.Message) error {
	if msg.Kind == notify.KindOTP && msg.Code != "" {
		c.store.Put(ctx, msg.To, msg.Code, c.now().UTC().Add(c.ttl))
	}
	if c.next == nil {
		return nil
	}
	return c.next.Send(ctx, msg)
}
