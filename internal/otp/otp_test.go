package otp

import (
	"errors"
	"testing"
	"time"
)

func TestRandomGenerator_SixDigits(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := RandomGenerator{}.Generate()
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if len(code) != Digits {
			t.Fatalf("len(code) = %d, want %d", len(code), Digits)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("code %q contains non-digit %q", code, c)
			}
		}
	}
}

func TestRandomGenerator_Varies(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, _ := RandomGenerator{}.Generate()
		seen[code] = true
	}
	if len(seen) < 45 {
		t.Errorf("only %d distinct codes out of 50", len(seen))
	}
}

func TestHash(t *testing.T) {
	if Hash("123456") != Hash("123456") {
		t.Error("Hash is not deterministic")
	}
	if len(Hash("123456")) != 64 {
		t.Errorf("len(Hash) = %d, want 64", len(Hash("123456")))
	}
	if Hash("123456") == Hash("654321") {
		t.Error("different codes hashed equal")
	}
}

func TestEqual(t *testing.T) {
	stored := Hash("123456")
	testCases := []struct {
		code string
		want bool
	}{
		{"123456", true},
		{"000000", false},
		{"12345", false},
		{"", false},
	}
	for _, tc := range testCases {
		if got := Equal(tc.code, stored); got != tc.want {
			t.Errorf("Equal(%q) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestIssuer_NewChallenge(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewIssuer(GeneratorFunc(func() (string, error) { return "123456", nil }), 0)

	code, ch, err := issuer.NewChallenge(now)
	if err != nil {
		t.Fatalf("NewChallenge: %v", err)
	}
	if code != "123456" {
		t.Errorf("code = %q, want 123456", code)
	}
	if ch.CodeHash == code {
		t.Error("challenge must not hold the plaintext code")
	}
	if !ch.ExpiresAt.Equal(now.Add(DefaultTTL)) {
		t.Errorf("ExpiresAt = %v, want now+5m", ch.ExpiresAt)
	}
	if !ch.Matches("123456") || ch.Matches("000000") {
		t.Error("Matches mismatch")
	}
}

func TestIssuer_GeneratorError(t *testing.T) {
	boom := errors.New("entropy")
	issuer := NewIssuer(GeneratorFunc(func() (string, error) { return "", boom }), time.Minute)
	if _, _, err := issuer.NewChallenge(time.Now()); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestChallenge_Expired(t *testing.T) {
	exp := time.Date(2025, 3, 1, 12, 5, 0, 0, time.UTC)
	ch := &Challenge{CodeHash: Hash("1"), ExpiresAt: exp}
	if ch.Expired(exp) {
		t.Error("challenge should still be valid at its expiry instant")
	}
	if !ch.Expired(exp.Add(time.Second)) {
		t.Error("challenge should be expired after its expiry instant")
	}
	var nilCh *Challenge
	if !nilCh.Expired(exp) || nilCh.Matches("1") {
		t.Error("nil challenge must be expired and never match")
	}
}
