package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-auth/backend/internal/security"
	"storefront-auth/backend/internal/server/httpx"
)

type issuerAuth struct{ tokens *security.TokenIssuer }

func (a issuerAuth) Authenticate(token string) (*security.SessionClaims, error) {
	return a.tokens.VerifySession(token)
}

func protected(t *testing.T) (http.Handler, *security.TokenIssuer) {
	t.Helper()
	tokens := security.NewTestTokenIssuer(time.Now)
	h := RequireSession(issuerAuth{tokens})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := SessionFromContext(r.Context())
		if !ok {
			t.Error("session claims missing from context")
			return
		}
		_, _ = w.Write([]byte(c.AccountID))
	}))
	return h, tokens
}

func TestRequireSession_NoToken(t *testing.T) {
	h, _ := protected(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var env httpx.Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Success || env.Message != "Authorization token is required." {
		t.Errorf("envelope = %+v", env)
	}
}

func TestRequireSession_ValidToken(t *testing.T) {
	h, tokens := protected(t)
	token, _, err := tokens.IssueSession("acct-1", "jane@x.com", "Jane")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "acct-1" {
		t.Errorf("body = %q, want acct-1", rec.Body.String())
	}
}

func TestRequireSession_RejectsResetToken(t *testing.T) {
	h, tokens := protected(t)
	token, _, err := tokens.IssueReset("acct-1", "jane@x.com")
	if err != nil {
		t.Fatalf("IssueReset: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer   abc  ", "abc"},
		{"BEARER abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"abc", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		if got := BearerToken(req); got != tt.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
