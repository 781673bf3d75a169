// Package server assembles the HTTP router: shared middleware, account and user type routes, health checks and
// the dev OTP endpoint.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	accounthandler "storefront-auth/backend/internal/account/handler"
	"storefront-auth/backend/internal/audit"
	healthhandler "storefront-auth/backend/internal/health/handler"
	"storefront-auth/backend/internal/server/httpx"
	"storefront-auth/backend/internal/server/middleware"
	usertypehandler "storefront-auth/backend/internal/usertype/handler"
)

// APIPrefix is where the account routes are mounted.
const APIPrefix = "/api/v1/user_auth"

// UserTypePrefix is where the user type catalogue is mounted.
const UserTypePrefix = "/api/v1/user_type"

// requestTimeout bounds a whole request. It exceeds the repository plus notifier budgets of one operation.
const requestTimeout = 30 * time.Second

// Deps holds the collaborators the router wires. Only Accounts is required.
type Deps struct {
	Accounts accounthandler.AccountService
	// UserTypes serves the user type catalogue. If nil, the routes are not mounted.
	UserTypes usertypehandler.UserTypeService
	// Audit records auth actions. If nil, nothing is audited.
	Audit audit.AuditLogger
	// Activity backs GET /me/activity. If nil, the route is not mounted.
	Activity accounthandler.ActivityLister
	// HealthPinger is used by /readyz (e.g. *sql.DB). If nil, readiness skips the DB ping.
	HealthPinger healthhandler.Pinger
	// DevOTP serves GET /dev/otp. Set only when dev OTP is enabled and not production.
	DevOTP http.Handler
	// TrustedProxies are the peers whose forwarding headers set the client IP. Nil trusts none.
	TrustedProxies *middleware.TrustedProxies
	// Tracer names one server span per request. If nil, no request spans are started.
	Tracer trace.Tracer
	Logger *zap.Logger
}

// NewRouter returns the HTTP handler for the API process.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.ClientIPMiddleware(deps.TrustedProxies))
	r.Use(middleware.AccessLog(logger))
	if deps.Tracer != nil {
		r.Use(middleware.Tracing(deps.Tracer))
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusNotFound, "Route not found.", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusMethodNotAllowed, "Method not allowed.", "")
	})

	health := healthhandler.New(deps.HealthPinger, logger)
	r.Get("/healthz", health.Live)
	r.Get("/readyz", health.Ready)

	if deps.DevOTP != nil {
		r.Method(http.MethodGet, "/dev/otp", deps.DevOTP)
	}

	accounts := accounthandler.New(deps.Accounts, deps.Audit, deps.Activity, logger)
	r.Route(APIPrefix, accounts.MountRoutes)

	if deps.UserTypes != nil {
		r.Route(UserTypePrefix, usertypehandler.New(deps.UserTypes, logger).MountRoutes)
	}

	return r
}
