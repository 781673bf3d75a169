package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"storefront-auth/backend/internal/account/service"
	"storefront-auth/backend/internal/server/httpx"
)

const internalErrorMessage = "Internal Server Error"

var errorTable = []struct {
	err     error
	status  int
	message string
}{
	{service.ErrValidation, http.StatusBadRequest, "Validation failed"},
	{service.ErrConflict, http.StatusConflict, "A user with this email already exists."},
	{service.ErrNotFound, http.StatusNotFound, "User not found."},
	{service.ErrNoPendingOTP, http.StatusNotFound, "No pending OTP for this account. Please request a new one."},
	{service.ErrInvalidCode, http.StatusBadRequest, "Invalid OTP."},
	{service.ErrExpired, http.StatusBadRequest, "OTP has expired. Please request a new one."},
	{service.ErrAlreadyVerified, http.StatusBadRequest, "User is already verified."},
	{service.ErrUnverified, http.StatusForbidden, "User is not verified. Please verify your account before logging in."},
	{service.ErrInvalidCredential, http.StatusUnauthorized, "Invalid email or password."},
	{service.ErrMissingToken, http.StatusUnauthorized, "Authorization token is required."},
	{service.ErrInvalidToken, http.StatusUnauthorized, "Invalid or expired token."},
	{service.ErrDeliveryFailed, http.StatusBadGateway, "Failed to send email. Please try again later."},
}

// statusFor returns the status and client message for err. ok is false for unexpected errors.
func statusFor(err error) (status int, message string, ok bool) {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.status, e.message, true
		}
	}
	return http.StatusInternalServerError, internalErrorMessage, false
}

// writeError maps a service error to the envelope. Unexpected errors are logged in full and
// the client only sees the generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, message, ok := statusFor(err)
	if !ok {
		h.logger.Error("account operation failed",
			zap.String("operation", op),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		httpx.Fail(w, status, message, internalErrorMessage)
		return
	}
	if status == http.StatusBadGateway {
		h.logger.Warn("account operation delivery failed", zap.String("operation", op), zap.Error(err))
	}
	httpx.Fail(w, status, message, "")
}
