package devotp

import (
	"net/http"
	"strings"

	"storefront-auth/backend/internal/server/httpx"
)

const devOTPNote = "DEV MODE ONLY"

// Handler serves GET /dev/otp?email=. Register it only when dev OTP mode is enabled.
type Handler struct {
	store Store
}

// NewHandler returns a Handler reading from store.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

type otpData struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
	Note  string `json:"note"`
}

// ServeHTTP returns the last code sent to the email query parameter.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("email")))
	if email == "" {
		httpx.Fail(w, http.StatusBadRequest, "email is required", "")
		return
	}
	code, ok := h.store.Get(r.Context(), email)
	if !ok {
		httpx.Fail(w, http.StatusNotFound, "OTP not found or expired", "")
		return
	}
	httpx.Success(w, http.StatusOK, "OTP found", otpData{Email: email, OTP: code, Note: devOTPNote})
}
