package domain

import (
	"testing"
	"time"

	"storefront-auth/backend/internal/otp"
)

func TestNormalizeEmail(t *testing.T) {
	testCases := map[string]string{
		"JANE@x.com":      "jane@x.com",
		" jane@x.com ":    "jane@x.com",
		"\tJane@X.Com\n":  "jane@x.com",
		"already@norm.al": "already@norm.al",
		"":                "",
	}
	for in, want := range testCases {
		if got := NormalizeEmail(in); got != want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAccount_State(t *testing.T) {
	var none *Account
	if none.State() != StateUnregistered {
		t.Errorf("nil State = %q, want %q", none.State(), StateUnregistered)
	}
	a := &Account{Email: "a@b.com", PasswordHash: "h"}
	if a.State() != StatePendingVerification {
		t.Errorf("State = %q, want %q", a.State(), StatePendingVerification)
	}
	a.IsVerified = true
	if a.State() != StateVerified {
		t.Errorf("State = %q, want %q", a.State(), StateVerified)
	}
}

func TestAccount_MarkVerifiedClearsOTP(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	a := &Account{Email: "a@b.com", PasswordHash: "h", OTP: &otp.Challenge{CodeHash: "x", ExpiresAt: now}}
	a.MarkVerified(now)
	if !a.IsVerified || a.HasPendingOTP() {
		t.Errorf("after MarkVerified: IsVerified=%v HasPendingOTP=%v", a.IsVerified, a.HasPendingOTP())
	}
	if !a.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", a.UpdatedAt, now)
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestAccount_Validate(t *testing.T) {
	exp := time.Date(2025, 3, 1, 12, 5, 0, 0, time.UTC)
	testCases := []struct {
		name    string
		account Account
		wantErr bool
	}{
		{"pending with otp", Account{Email: "a@b.com", PasswordHash: "h", OTP: &otp.Challenge{CodeHash: "x", ExpiresAt: exp}}, false},
		{"verified without otp", Account{Email: "a@b.com", PasswordHash: "h", IsVerified: true}, false},
		{"missing email", Account{PasswordHash: "h"}, true},
		{"unnormalized email", Account{Email: "A@b.com", PasswordHash: "h"}, true},
		{"missing hash", Account{Email: "a@b.com"}, true},
		{"verified with otp", Account{Email: "a@b.com", PasswordHash: "h", IsVerified: true, OTP: &otp.Challenge{CodeHash: "x", ExpiresAt: exp}}, true},
		{"otp without expiry", Account{Email: "a@b.com", PasswordHash: "h", OTP: &otp.Challenge{CodeHash: "x"}}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.account.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestAccount_ProfileOmitsSecrets(t *testing.T) {
	a := &Account{ID: "id-1", Email: "a@b.com", Name: "Jane", PasswordHash: "secret-hash", OTP: &otp.Challenge{CodeHash: "code-hash"}}
	p := a.Profile()
	want := Profile{ID: "id-1", Name: "Jane", Email: "a@b.com"}
	if p != want {
		t.Errorf("Profile = %+v, want %+v", p, want)
	}
}
