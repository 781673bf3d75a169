package domain

import (
	"errors"
	"strings"
	"time"

	"storefront-auth/backend/internal/otp"
)

// Account is a storefront customer identity: credentials plus email verification state.
type Account struct {
	ID           string
	Email        string // normalized; natural key
	Name         string
	PasswordHash string
	IsVerified   bool
	// OTP is the pending email challenge. nil means no code is outstanding.
	OTP       *otp.Challenge
	CreatedAt time.Time
	UpdatedAt time.Time
}

// State is the position of an account in the verification lifecycle.
type State string

const (
	StateUnregistered        State = "unregistered"
	StatePendingVerification State = "pending_verification"
	StateVerified            State = "verified"
)

// State derives the lifecycle state. A nil account is unregistered.
func (a *Account) State() State {
	switch {
	case a == nil:
		return StateUnregistered
	case a.IsVerified:
		return StateVerified
	default:
		return StatePendingVerification
	}
}

// HasPendingOTP reports whether a verification code is outstanding.
func (a *Account) HasPendingOTP() bool {
	return a.OTP != nil
}

// MarkVerified flips the account to verified and drops the challenge in the same write.
func (a *Account) MarkVerified(now time.Time) {
	a.IsVerified = true
	a.OTP = nil
	a.UpdatedAt = now
}

// SetChallenge replaces any outstanding challenge.
func (a *Account) SetChallenge(ch *otp.Challenge, now time.Time) {
	a.OTP = ch
	a.UpdatedAt = now
}

// SetPasswordHash stores a new credential hash.
func (a *Account) SetPasswordHash(hash string, now time.Time) {
	a.PasswordHash = hash
	a.UpdatedAt = now
}

// Validate checks the account before persistence. Returns the first violation found.
func (a *Account) Validate() error {
	if a.Email == "" {
		return errors.New("email is required")
	}
	if a.Email != NormalizeEmail(a.Email) {
		return errors.New("email must be normalized")
	}
	if a.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if a.IsVerified && a.OTP != nil {
		return errors.New("verified account cannot hold a pending otp")
	}
	if a.OTP != nil && (a.OTP.CodeHash == "" || a.OTP.ExpiresAt.IsZero()) {
		return errors.New("otp code and expiry must be set together")
	}
	return nil
}

// Profile is the public view of an account. It never carries the hash or the OTP.
type Profile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	IsVerified bool   `json:"isVerified"`
}

// Profile returns the public fields of a.
func (a *Account) Profile() Profile {
	return Profile{ID: a.ID, Name: a.Name, Email: a.Email, IsVerified: a.IsVerified}
}

// NormalizeEmail trims and lower-cases an address. Two addresses are the same account iff their normalized forms match.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
