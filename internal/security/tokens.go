package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure: bad signature, malformed structure,
// expired, wrong kind, wrong issuer or audience. Callers cannot tell them apart.
var ErrInvalidToken = errors.New("invalid token")

// TokenKind separates session tokens from reset tokens so one cannot stand in for the other.
type TokenKind string

const (
	KindSession TokenKind = "session"
	KindReset   TokenKind = "reset"
)

// SessionClaims is the identity carried by a session token.
type SessionClaims struct {
	AccountID string
	Email     string
	Name      string
	ExpiresAt time.Time
}

// ResetClaims is the identity carried by a password reset token.
type ResetClaims struct {
	AccountID string
	Email     string
	ExpiresAt time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Kind  TokenKind `json:"kind"`
	Email string    `json:"email"`
	Name  string    `json:"name,omitempty"`
}

// TokenIssuer signs and verifies session and reset tokens with a single injected SigningKey.
type TokenIssuer struct {
	key        *SigningKey
	issuer     string
	audience   string
	sessionTTL time.Duration
	resetTTL   time.Duration
	now        func() time.Time
}

// TokenOption configures a TokenIssuer.
type TokenOption func(*TokenIssuer)

// WithTokenClock overrides the clock used for iat/exp and for expiry checks.
func WithTokenClock(now func() time.Time) TokenOption {
	return func(i *TokenIssuer) {
		if now != nil {
			i.now = now
		}
	}
}

// NewTokenIssuer returns a TokenIssuer. issuer and audience are written into every token and
// required on verification.
func NewTokenIssuer(key *SigningKey, issuer, audience string, sessionTTL, resetTTL time.Duration, opts ...TokenOption) *TokenIssuer {
	i := &TokenIssuer{
		key:        key,
		issuer:     issuer,
		audience:   audience,
		sessionTTL: sessionTTL,
		resetTTL:   resetTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// IssueSession signs a session token for the account. Returns the token and its expiry.
func (i *TokenIssuer) IssueSession(accountID, email, name string) (string, time.Time, error) {
	return i.issue(KindSession, accountID, email, name, i.sessionTTL)
}

// IssueReset signs a password reset token for the account. Returns the token and its expiry.
func (i *TokenIssuer) IssueReset(accountID, email string) (string, time.Time, error) {
	return i.issue(KindReset, accountID, email, "", i.resetTTL)
}

// VerifySession validates a session token and returns its claims.
func (i *TokenIssuer) VerifySession(token string) (*SessionClaims, error) {
	c, err := i.parse(token, KindSession)
	if err != nil {
		return nil, err
	}
	return &SessionClaims{AccountID: c.Subject, Email: c.Email, Name: c.Name, ExpiresAt: c.ExpiresAt.Time}, nil
}

// VerifyReset validates a reset token and returns its claims. A valid token verifies any
// number of times until it expires.
func (i *TokenIssuer) VerifyReset(token string) (*ResetClaims, error) {
	c, err := i.parse(token, KindReset)
	if err != nil {
		return nil, err
	}
	return &ResetClaims{AccountID: c.Subject, Email: c.Email, ExpiresAt: c.ExpiresAt.Time}, nil
}

func (i *TokenIssuer) issue(kind TokenKind, accountID, email, name string, ttl time.Duration) (string, time.Time, error) {
	now := i.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(ttl)
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Kind:  kind,
		Email: email,
		Name:  name,
	}
	signed, err := jwt.NewWithClaims(i.key.method, claims).SignedString(i.key.sign)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (i *TokenIssuer) parse(token string, kind TokenKind) (*tokenClaims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{i.key.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	var c tokenClaims
	parsed, err := parser.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return i.key.verify, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if c.Kind != kind || c.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &c, nil
}
