// Package telemetry carries account lifecycle events to Kafka and OpenTelemetry.
package telemetry

import (
	"time"

	"storefront-auth/backend/internal/logging"
)

// Event types, one per successful lifecycle transition.
const (
	EventAccountRegistered      = "account.registered"
	EventAccountVerified        = "account.verified"
	EventOTPResent              = "otp.resent"
	EventAccountSignedIn        = "account.signed_in"
	EventPasswordResetRequested = "password.reset_requested"
	EventPasswordUpdated        = "password.updated"
)

// SourceAuthService tags events produced by the account lifecycle service.
const SourceAuthService = "storefront-auth"

// Event is one lifecycle occurrence. It never carries the full email, a code or a token.
type Event struct {
	EventType   string    `json:"event_type"`
	AccountID   string    `json:"account_id,omitempty"`
	EmailDomain string    `json:"email_domain,omitempty"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewEvent builds an Event for accountID. Only the domain of email is kept.
func NewEvent(eventType, accountID, email string, at time.Time) *Event {
	return &Event{
		EventType:   eventType,
		AccountID:   accountID,
		EmailDomain: logging.EmailDomain(email),
		Source:      SourceAuthService,
		CreatedAt:   at.UTC(),
	}
}
