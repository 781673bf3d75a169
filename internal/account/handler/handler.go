// Package handler serves the account lifecycle over HTTP under /api/v1/user_auth.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"storefront-auth/backend/internal/account/domain"
	"storefront-auth/backend/internal/account/service"
	"storefront-auth/backend/internal/audit"
	auditdomain "storefront-auth/backend/internal/audit/domain"
	"storefront-auth/backend/internal/security"
	"storefront-auth/backend/internal/server/httpx"
	"storefront-auth/backend/internal/server/middleware"
)

// activityLimit is how many audit entries GET /me/activity returns.
const activityLimit = 20

// AccountService is the lifecycle the handler drives. *service.Service implements it.
type AccountService interface {
	Register(ctx context.Context, name, email, password string) (domain.Profile, error)
	VerifyOTP(ctx context.Context, email, code string) (domain.Profile, error)
	ResendOTP(ctx context.Context, email string) (domain.Profile, error)
	SignIn(ctx context.Context, email, password string) (*service.SignInResult, error)
	RequestPasswordReset(ctx context.Context, email string) (domain.Profile, error)
	UpdatePassword(ctx context.Context, resetToken, newPassword string) (domain.Profile, error)
	Profile(ctx context.Context, accountID string) (domain.Profile, error)
	Authenticate(token string) (*security.SessionClaims, error)
}

// ActivityLister reads an account's audit trail.
type ActivityLister interface {
	ListByAccount(ctx context.Context, accountID string, limit int) ([]*auditdomain.AuditLog, error)
}

// Handler holds the account routes.
type Handler struct {
	svc      AccountService
	audit    audit.AuditLogger
	activity ActivityLister
	validate *validator.Validate
	logger   *zap.Logger
}

// New returns a Handler. auditLogger and activity may be nil; then nothing is audited and
// /me/activity is not mounted.
func New(svc AccountService, auditLogger audit.AuditLogger, activity ActivityLister, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		svc:      svc,
		audit:    auditLogger,
		activity: activity,
		validate: newValidator(),
		logger:   logger,
	}
}

// MountRoutes registers the account routes on r. The caller mounts r under /api/v1/user_auth.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/signUp", h.signUp)
	r.Patch("/otpValidation", h.otpValidation)
	r.Post("/resendOTP", h.resendOTP)
	r.Post("/signIn", h.signIn)
	r.Post("/forgotPassword", h.forgotPassword)
	r.Patch("/updateNewPassword", h.updateNewPassword)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(h.svc))
		r.Get("/me", h.me)
		if h.activity != nil {
			r.Get("/me/activity", h.meActivity)
		}
	})
}

type signUpData struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type signInData struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type activityEntry struct {
	Action    string    `json:"action"`
	IP        string    `json:"ip"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !h.bind(w, r, &req) {
		return
	}
	p, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password)
	if p.ID != "" {
		h.logAudit(r.Context(), p.ID, auditdomain.ActionSignUp, nil)
	}
	if err != nil {
		h.writeError(w, r, "register", err)
		return
	}
	httpx.Success(w, http.StatusCreated, "User signed up successfully. Please verify your email.",
		signUpData{Name: p.Name, Email: p.Email})
}

func (h *Handler) otpValidation(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if !h.bind(w, r, &req) {
		return
	}
	p, err := h.svc.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		h.writeError(w, r, "verify_otp", err)
		return
	}
	h.logAudit(r.Context(), p.ID, auditdomain.ActionOTPVerify, nil)
	httpx.Success(w, http.StatusOK, "OTP verified successfully. Your account is now active.", p)
}

func (h *Handler) resendOTP(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !h.bind(w, r, &req) {
		return
	}
	p, err := h.svc.ResendOTP(r.Context(), req.Email)
	if p.ID != "" {
		h.logAudit(r.Context(), p.ID, auditdomain.ActionOTPResend, nil)
	}
	if err != nil {
		h.writeError(w, r, "resend_otp", err)
		return
	}
	httpx.Success(w, http.StatusOK, "OTP resent successfully. Please check your email.", nil)
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !h.bind(w, r, &req) {
		return
	}
	res, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if id := service.AccountIDOf(err); id != "" {
			h.logAudit(r.Context(), id, auditdomain.ActionSignInFailed, map[string]string{"reason": service.Reason(err)})
		}
		h.writeError(w, r, "sign_in", err)
		return
	}
	h.logAudit(r.Context(), res.Profile.ID, auditdomain.ActionSignIn, nil)
	httpx.Success(w, http.StatusOK, "User signed in successfully.", signInData{
		Token:     res.Token,
		Email:     res.Profile.Email,
		Name:      res.Profile.Name,
		ExpiresAt: res.ExpiresAt,
	})
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !h.bind(w, r, &req) {
		return
	}
	p, err := h.svc.RequestPasswordReset(r.Context(), req.Email)
	if p.ID != "" {
		h.logAudit(r.Context(), p.ID, auditdomain.ActionPasswordResetRequest, nil)
	}
	if err != nil {
		h.writeError(w, r, "request_password_reset", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Password reset email sent successfully. Please check your inbox.", nil)
}

func (h *Handler) updateNewPassword(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		h.writeError(w, r, "update_password", service.ErrMissingToken)
		return
	}
	var req newPasswordRequest
	if !h.bind(w, r, &req) {
		return
	}
	p, err := h.svc.UpdatePassword(r.Context(), token, req.NewPassword)
	if err != nil {
		h.writeError(w, r, "update_password", err)
		return
	}
	h.logAudit(r.Context(), p.ID, auditdomain.ActionPasswordUpdate, nil)
	httpx.Success(w, http.StatusOK, "Password updated successfully.", nil)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Profile(r.Context(), middleware.AccountID(r.Context()))
	if err != nil {
		h.writeError(w, r, "profile", err)
		return
	}
	httpx.Success(w, http.StatusOK, "User profile fetched successfully.", p)
}

func (h *Handler) meActivity(w http.ResponseWriter, r *http.Request) {
	entries, err := h.activity.ListByAccount(r.Context(), middleware.AccountID(r.Context()), activityLimit)
	if err != nil {
		h.writeError(w, r, "activity", err)
		return
	}
	out := make([]activityEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, activityEntry{Action: e.Action, IP: e.IP, CreatedAt: e.CreatedAt})
	}
	httpx.Success(w, http.StatusOK, "User activity fetched successfully.", out)
}

type trimmable interface{ trim() }

func (r *signUpRequest) trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
}
func (r *otpRequest) trim()         { r.Email = strings.TrimSpace(r.Email) }
func (r *emailRequest) trim()       { r.Email = strings.TrimSpace(r.Email) }
func (r *signInRequest) trim()      { r.Email = strings.TrimSpace(r.Email) }
func (r *newPasswordRequest) trim() {}

// bind decodes and validates the body. On failure it writes the response and returns false.
func (h *Handler) bind(w http.ResponseWriter, r *http.Request, req trimmable) bool {
	if err := httpx.DecodeJSON(w, r, req); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.ValidationFailed(w, []httpx.FieldError{{Msg: "Request body must be valid JSON.", Param: "body", Location: "body"}})
		return false
	}
	req.trim()
	if err := h.validate.Struct(req); err != nil {
		if errs := fieldErrors(err); errs != nil {
			httpx.ValidationFailed(w, errs)
			return false
		}
		h.writeError(w, r, "validate", err)
		return false
	}
	return true
}

// logAudit records action against accountID.
func (h *Handler) logAudit(ctx context.Context, accountID, action string, meta map[string]string) {
	if h.audit == nil {
		return
	}
	h.audit.LogEvent(ctx, accountID, action, meta)
}
