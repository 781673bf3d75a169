// Package handler serves the user type catalogue under /api/v1/user_type.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"storefront-auth/backend/internal/server/httpx"
	"storefront-auth/backend/internal/usertype/domain"
	"storefront-auth/backend/internal/usertype/service"
)

// UserTypeService is implemented by *service.Service.
type UserTypeService interface {
	Create(ctx context.Context, name string) (domain.UserType, error)
	List(ctx context.Context) ([]domain.UserType, error)
}

type Handler struct {
	svc      UserTypeService
	validate *validator.Validate
	logger   *zap.Logger
}

func New(svc UserTypeService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		svc:      svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// MountRoutes registers the routes on r. The caller mounts r under /api/v1/user_type.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/newUserType", h.create)
	r.Get("/getAllUserTypes", h.list)
}

type newUserTypeRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req newUserTypeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.ValidationFailed(w, []httpx.FieldError{{Msg: "Request body must be valid JSON.", Param: "body", Location: "body"}})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationFailed(w, []httpx.FieldError{{Msg: "Name is required", Param: "name", Location: "body"}})
		return
	}

	ut, err := h.svc.Create(r.Context(), req.Name)
	switch {
	case err == nil:
		httpx.Success(w, http.StatusCreated, "New user type created successfully.", ut)
	case errors.Is(err, service.ErrValidation):
		httpx.ValidationFailed(w, []httpx.FieldError{{Msg: "Name is required", Param: "name", Location: "body"}})
	case errors.Is(err, service.ErrConflict):
		httpx.Fail(w, http.StatusConflict, fmt.Sprintf("User type %q already exists.", req.Name), "")
	default:
		h.internalError(w, r, "create_user_type", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	switch {
	case err == nil:
		httpx.Success(w, http.StatusOK, "User Types Found.", items)
	case errors.Is(err, service.ErrNotFound):
		httpx.Fail(w, http.StatusNotFound, "No User Type Found.", "")
	default:
		h.internalError(w, r, "list_user_types", err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Error("user type operation failed",
		zap.String("operation", op),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	httpx.Fail(w, http.StatusInternalServerError, "Internal Server Error", "Internal Server Error")
}
