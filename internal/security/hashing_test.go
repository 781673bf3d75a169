package security

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	hash, err := h.Hash("Abc123!")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "" {
		t.Fatal("Hash returned empty")
	}
	if strings.Contains(hash, "Abc123!") {
		t.Fatal("hash must not contain the plaintext")
	}
	if !h.Verify("Abc123!", hash) {
		t.Fatal("Verify should accept the original password")
	}
}

func TestHasher_VerifyWrongPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	hash, _ := h.Hash("Abc123!")
	if h.Verify("abc123!", hash) {
		t.Fatal("Verify with wrong password should fail")
	}
}

func TestHasher_VerifyMalformedHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	if h.Verify("Abc123!", "") {
		t.Error("empty hash must not verify")
	}
	if h.Verify("Abc123!", "not-a-bcrypt-hash") {
		t.Error("malformed hash must not verify")
	}
}

func TestHasher_SaltedHashesDiffer(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	a, _ := h.Hash("Abc123!")
	b, _ := h.Hash("Abc123!")
	if a == b {
		t.Error("two hashes of the same password should differ by salt")
	}
}

func TestHasher_Cost(t *testing.T) {
	testCases := []struct {
		in   int
		want int
	}{
		{0, DefaultBcryptCost},
		{-1, DefaultBcryptCost},
		{2, bcrypt.MinCost},
		{12, 12},
		{40, bcrypt.MaxCost},
	}
	for _, tc := range testCases {
		if got := NewHasher(tc.in).Cost; got != tc.want {
			t.Errorf("NewHasher(%d).Cost = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestHasher_HashUsesCost(t *testing.T) {
	h := NewHasher(5)
	hash, err := h.Hash("Abc123!")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("bcrypt.Cost: %v", err)
	}
	if cost != 5 {
		t.Errorf("hash cost = %d, want 5", cost)
	}
}

func TestHasher_PasswordTooLong(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	if _, err := h.Hash(strings.Repeat("a", MaxPasswordBytes)); err != nil {
		t.Fatalf("Hash at the limit: %v", err)
	}
	_, err := h.Hash("Abc123!" + strings.Repeat("a", 70))
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Errorf("Hash = %v, want ErrPasswordTooLong", err)
	}
	// 40 two-byte runes: short in characters, long in bytes.
	if _, err := h.Hash("Abc1!" + strings.Repeat("é", 40)); !errors.Is(err, ErrPasswordTooLong) {
		t.Errorf("Hash(multibyte) = %v, want ErrPasswordTooLong", err)
	}
}
