// Package handler serves liveness and readiness checks.
package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"storefront-auth/backend/internal/server/httpx"
)

const readyTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler answers /healthz and /readyz.
type Handler struct {
	db     Pinger
	logger *zap.Logger
}

// New returns a Handler. db may be nil when running on the in-memory store; readiness then always succeeds.
func New(db Pinger, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{db: db, logger: logger}
}

// Live reports that the process is serving.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	httpx.Success(w, http.StatusOK, "ok", nil)
}

// Ready reports whether the database answers a ping.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Warn("readiness: database ping failed", zap.Error(err))
			httpx.Fail(w, http.StatusServiceUnavailable, "not ready", "database unavailable")
			return
		}
	}
	httpx.Success(w, http.StatusOK, "ready", nil)
}
