package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/jwebster45206/plaidlibs/internal/metrics"
	"github.com/jwebster45206/plaidlibs/internal/middleware"
)

// Router groups what NewRouter mounts. Metrics is optional.
type Router struct {
	Health    http.Handler
	Workflows http.Handler
	Sessions  *SessionHandler
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// NewRouter builds the API's chi router with request IDs, request logging and
// panic recovery.
func NewRouter(cfg Router) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(chimw.Recoverer)

	r.Method(http.MethodGet, "/health", cfg.Health)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}
	r.Route("/v1", func(r chi.Router) {
		r.Method(http.MethodGet, "/workflows", cfg.Workflows)
		r.Route("/sessions", cfg.Sessions.Routes)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, cfg.Logger, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, cfg.Logger, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}
