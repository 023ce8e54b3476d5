// Package http exposes the account, dashboard and admin operations as a JSON
// API. Every request passes the route policy before reaching a handler.
package http

import (
	"context"
	"net/http"
	"net/netip"

	"github.com/dmitrijs2005/securelogin/internal/logging"
	"github.com/dmitrijs2005/securelogin/internal/server/access"
	"github.com/dmitrijs2005/securelogin/internal/server/metrics"
	"github.com/dmitrijs2005/securelogin/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// ReportExporter archives the current security report and returns where it
// was stored.
type ReportExporter interface {
	Export(ctx context.Context) (string, error)
}

type Handler struct {
	accounts *services.AccountService
	attempts *services.AttemptService
	auth     *services.AuthService
	exporter ReportExporter
	policy   access.Policy
	log      logging.Logger

	// X-Forwarded-For is only read from peers inside these prefixes.
	trustedProxies []netip.Prefix
}

func NewHandler(accounts *services.AccountService, attempts *services.AttemptService, auth *services.AuthService,
	exporter ReportExporter, trustedProxies []netip.Prefix, log logging.Logger) *Handler {
	return &Handler{
		accounts:       accounts,
		attempts:       attempts,
		auth:           auth,
		exporter:       exporter,
		policy:         access.DefaultPolicy,
		log:            log.With("module", "http"),
		trustedProxies: trustedProxies,
	}
}

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(h.recoverMiddleware)
	r.Use(h.loggingMiddleware)
	r.Use(h.authenticateMiddleware)
	r.Use(h.accessMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Get("/", h.home)
	r.Get("/healthz", h.health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/login", h.loginPage)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.Post("/register", h.register)
	r.Get("/error", h.errorPage)
	r.Get("/access-denied", h.accessDenied)

	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/", h.dashboard)
		r.Get("/profile", h.profile)
	})
	r.Put("/profile", h.updateProfile)
	r.Get("/api/me", h.me)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/users", h.listUsers)
		r.Get("/users/{id}", h.getUser)
		r.Patch("/users/{id}", h.updateUser)
		r.Post("/users/{id}/activate", h.activateUser)
		r.Post("/users/{id}/deactivate", h.deactivateUser)
		r.Post("/users/{id}/unlock", h.unlockUser)
		r.Get("/attempts", h.listAttempts)
		r.Get("/attempts/failures", h.failuresByAddress)
		r.Get("/report", h.report)
		r.Post("/report/export", h.exportReport)
	})

	return r
}
