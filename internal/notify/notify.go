// Package notify delivers account emails: OTP codes and password reset links.
package notify

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"storefront-auth/backend/internal/logging"
)

// ErrNoRecipient is returned when a Message has an empty To address.
var ErrNoRecipient = errors.New("notify: recipient is required")

// Message is one outbound email. HTML is optional.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
	// Kind tags the message for capture and logging (e.g. KindOTP). Never rendered.
	Kind Kind
	// Code is the plaintext OTP for KindOTP messages. Only capture notifiers read it.
	Code string
}

// Kind identifies the template a Message was built from.
type Kind string

const (
	KindOTP   Kind = "otp"
	KindReset Kind = "password_reset"
)

// Notifier delivers a Message. Implementations must honor ctx cancellation and deadline.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// LogNotifier records that a message would have been sent, without its body. Used when no SMTP server is configured.
type LogNotifier struct {
	Logger *zap.Logger
}

// Send logs the subject and recipient domain only.
func (n LogNotifier) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := n.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("email delivery skipped, SMTP not configured",
		zap.String("kind", string(msg.Kind)),
		zap.String("subject", msg.Subject),
		zap.String("recipient_domain", logging.EmailDomain(msg.To)),
	)
	return nil
}
