package middleware

import (
	"context"

	"storefront-auth/backend/internal/security"
)

type contextKey struct{ name string }

var (
	sessionKey  = contextKey{"session"}
	clientIPKey = contextKey{"client_ip"}
)

// WithSession returns a context carrying the verified session claims.
func WithSession(ctx context.Context, claims *security.SessionClaims) context.Context {
	return context.WithValue(ctx, sessionKey, claims)
}

// SessionFromContext returns the session claims set by RequireSession, or nil, false.
func SessionFromContext(ctx context.Context) (*security.SessionClaims, bool) {
	c, ok := ctx.Value(sessionKey).(*security.SessionClaims)
	return c, ok && c != nil
}

// AccountID returns the authenticated account id, or "" if the request carries no session.
func AccountID(ctx context.Context) string {
	if c, ok := SessionFromContext(ctx); ok {
		return c.AccountID
	}
	return ""
}

// WithClientIP returns a context with the client IP set.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIP returns the IP stored by the ClientIP middleware, or "".
// It matches audit.IPExtractor.
func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey).(string)
	return v
}
