// Package middleware holds the HTTP middleware shared by every route: client IP capture,
// bearer session authentication, access logging and request spans.
package middleware

import (
	"net/http"
	"strings"

	"storefront-auth/backend/internal/security"
	"storefront-auth/backend/internal/server/httpx"
)

const bearerPrefix = "bearer "

// Authenticator verifies a session token.
type Authenticator interface {
	Authenticate(token string) (*security.SessionClaims, error)
}

// RequireSession rejects requests without a valid session bearer token with 401 and
// stores the claims in the request context for the next handler.
func RequireSession(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				httpx.Fail(w, http.StatusUnauthorized, "Authorization token is required.", "")
				return
			}
			claims, err := auth.Authenticate(token)
			if err != nil {
				httpx.Fail(w, http.StatusUnauthorized, "Invalid or expired token.", "")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), claims)))
		})
	}
}

// BearerToken returns the token from the Authorization header, or "" if missing or malformed.
func BearerToken(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
