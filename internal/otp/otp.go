// Package otp issues and checks the six-digit email verification codes attached to pending accounts.
package otp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"
)

// Digits is the length of every code.
const Digits = 6

// DefaultTTL is how long a challenge stays valid when no TTL is configured.
const DefaultTTL = 5 * time.Minute

// Generator produces plaintext codes.
type Generator interface {
	Generate() (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func() (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate() (string, error) { return f() }

// RandomGenerator draws codes from crypto/rand.
type RandomGenerator struct{}

// Generate returns a uniformly distributed 6-digit numeric code.
func (RandomGenerator) Generate() (string, error) {
	out := make([]byte, 0, Digits)
	buf := make([]byte, Digits*2)
	for len(out) < Digits {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			// 250 is the largest multiple of 10 below 256; higher bytes would skew toward 0-5.
			if b >= 250 {
				continue
			}
			out = append(out, '0'+b%10)
			if len(out) == Digits {
				break
			}
		}
	}
	return string(out), nil
}

// Hash returns the hex SHA-256 of code. Only the hash is persisted.
func Hash(code string) string {
	h := sha256.Sum256([]byte(code))
	return hex.EncodeToString(h[:])
}

// Equal compares code against a stored hash in constant time.
func Equal(code, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(Hash(code)), []byte(storedHash)) == 1
}

// Challenge is a pending verification: the code hash and the instant after which it is dead.
type Challenge struct {
	CodeHash  string
	ExpiresAt time.Time
}

// Matches reports whether code is the one this challenge was issued for.
func (c *Challenge) Matches(code string) bool {
	return c != nil && Equal(code, c.CodeHash)
}

// Expired reports whether now is past the challenge expiry.
func (c *Challenge) Expired(now time.Time) bool {
	return c == nil || now.After(c.ExpiresAt)
}

// Issuer creates fresh challenges. Each call replaces, never extends, whatever the account held before.
type Issuer struct {
	gen Generator
	ttl time.Duration
}

// NewIssuer returns an Issuer. A nil gen selects RandomGenerator; a non-positive ttl selects DefaultTTL.
func NewIssuer(gen Generator, ttl time.Duration) *Issuer {
	if gen == nil {
		gen = RandomGenerator{}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{gen: gen, ttl: ttl}
}

// TTL returns the validity window of issued challenges.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// NewChallenge generates a code and returns it with its challenge expiring at now+TTL.
// The plaintext code is for delivery only and must not be stored or logged.
func (i *Issuer) NewChallenge(now time.Time) (string, *Challenge, error) {
	code, err := i.gen.Generate()
	if err != nil {
		return "", nil, err
	}
	return code, &Challenge{CodeHash: Hash(code), ExpiresAt: now.Add(i.ttl)}, nil
}
