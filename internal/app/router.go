package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	authzhttp "github.com/helios-campus/helios/internal/authz/http"
	"github.com/helios-campus/helios/internal/observability"
	"github.com/helios-campus/helios/internal/shared"
	"github.com/helios-campus/helios/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	AuthzHandler   *authzhttp.Handler
	JobsHandler    *jobs.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with Helios defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/metrics", params.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		params.AuthzHandler.MountRoutes(r)
		if params.JobsHandler != nil {
			r.Route("/jobs", params.JobsHandler.MountRoutes)
		}
	})

	return r
}
