// Package handler exposes the service over HTTP.
//
// The boundary is deliberately thin: handlers translate JSON requests into
// auth.Service calls and map the service's error taxonomy onto the wire
// format of the original deployment, a {"message": "<cause>: <url>"}
// envelope with status 400, 401 or 500.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/loginsvc/internal/auth"
	"github.com/dmitrymomot/loginsvc/internal/httpserver"
	"github.com/dmitrymomot/loginsvc/internal/metrics"
)

// TokenHeader is the request header carrying the session token.
const TokenHeader = "token"

// AuthService is the part of the auth service the HTTP boundary consumes.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Profile(ctx context.Context, token string) (auth.Profile, error)
	UpdateProfile(ctx context.Context, token string, patch auth.Patch) (auth.Profile, error)
}

// Deps carries everything the router needs. Metrics and HealthCheck are
// optional; the corresponding endpoints are only mounted when set.
type Deps struct {
	Auth              AuthService
	Logger            *slog.Logger
	Metrics           *metrics.Collector
	Gatherer          prometheus.Gatherer
	HealthCheck       func(context.Context) error
	CORSAllowedOrigin string
}

// NewRouter builds the service router.
func NewRouter(deps Deps) chi.Router {
	h := &handlers{
		auth:    deps.Auth,
		log:     deps.Logger,
		metrics: deps.Metrics,
	}
	if h.log == nil {
		h.log = slog.Default()
	}

	r := chi.NewRouter()

	if deps.Metrics != nil {
		r.Use(metricsMiddleware(deps.Metrics))
	}
	if deps.CORSAllowedOrigin != "" {
		r.Use(corsMiddleware(deps.CORSAllowedOrigin))
	}
	r.Use(recoverMiddleware(h.log))

	r.Get("/", h.info)
	r.Post("/login", h.login)
	r.Get("/profile", h.profile)
	r.Post("/profile", h.updateProfile)

	if deps.HealthCheck != nil {
		r.Get("/health", httpserver.HealthCheckHandler(h.log, deps.HealthCheck))
	}
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	return r
}
