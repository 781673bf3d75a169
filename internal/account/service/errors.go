package service

import (
	"errors"
)

// Sentinel errors for the account lifecycle; the HTTP handler maps them to status codes.
// Anything else returned by the service is unexpected and must not reach the client verbatim.
var (
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("account already exists")
	ErrNotFound          = errors.New("account not found")
	ErrNoPendingOTP      = errors.New("no pending otp for account")
	ErrInvalidCode       = errors.New("invalid otp")
	ErrExpired           = errors.New("otp expired")
	ErrAlreadyVerified   = errors.New("account already verified")
	ErrUnverified        = errors.New("account not verified")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrMissingToken      = errors.New("token is required")
	ErrInvalidToken      = errors.New("invalid or expired token")
	ErrDeliveryFailed    = errors.New("email delivery failed")
)

// accountError carries the id of the account an operation resolved before it failed, so
// callers can attribute the failure (e.g. in the audit trail).
type accountError struct {
	accountID string
	err       error
}

func (e *accountError) Error() string { return e.err.Error() }
func (e *accountError) Unwrap() error { return e.err }

// AccountIDOf returns the id of the account err refers to, or "".
func AccountIDOf(err error) string {
	var ae *accountError
	if errors.As(err, &ae) {
		return ae.accountID
	}
	return ""
}

var reasons = []struct {
	err    error
	reason string
}{
	{ErrValidation, "validation"},
	{ErrConflict, "conflict"},
	{ErrNotFound, "not_found"},
	{ErrNoPendingOTP, "no_pending_otp"},
	{ErrInvalidCode, "invalid_code"},
	{ErrExpired, "expired"},
	{ErrAlreadyVerified, "already_verified"},
	{ErrUnverified, "unverified"},
	{ErrInvalidCredential, "invalid_credential"},
	{ErrMissingToken, "missing_token"},
	{ErrInvalidToken, "invalid_token"},
	{ErrDeliveryFailed, "delivery_failed"},
}

// Reason returns a short stable label for err, used in metrics and span status.
// Unknown errors are "unexpected"; nil is "".
func Reason(err error) string {
	if err == nil {
		return ""
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return "unexpected"
}

// IsExpected reports whether err is one of the lifecycle sentinels.
func IsExpected(err error) bool {
	r := Reason(err)
	return r != "" && r != "unexpected"
}
