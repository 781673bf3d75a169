package domain

import "time"

// Auth actions recorded in the audit trail.
const (
	ActionSignUp               = "sign_up"
	ActionOTPVerify            = "otp_verify"
	ActionOTPResend            = "otp_resend"
	ActionSignIn               = "sign_in"
	ActionSignInFailed         = "sign_in_failed"
	ActionPasswordResetRequest = "password_reset_request"
	ActionPasswordUpdate       = "password_update"
)

// AuditLog is one recorded auth action. AccountID is empty when the caller could not be resolved.
type AuditLog struct {
	ID        string
	AccountID string
	Action    string
	IP        string
	Metadata  string // JSON object; never holds passwords, codes or tokens
	CreatedAt time.Time
}
