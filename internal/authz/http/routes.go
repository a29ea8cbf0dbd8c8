package authzhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/helios-campus/helios/internal/shared"
)

const (
	mutationRateLimit  = 30
	mutationRateWindow = time.Minute
)

// MountRoutes registers the authorization API.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}

	// Any authenticated principal may resolve their own navigation.
	r.Get("/navigation", h.resolveNavigation)

	r.Group(func(r chi.Router) {
		r.Use(h.require(shared.PermAuthzView))
		r.Post("/authorize", h.authorize)
		r.Get("/permissions", h.listPermissions)
		r.Get("/users/{userID}/grants", h.listGrants)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.require(shared.PermAuthzManage))
		r.Use(httprate.Limit(mutationRateLimit, mutationRateWindow,
			httprate.WithKeyFuncs(mutationRateKey),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			}),
		))
		r.Post("/grants", h.assign)
		r.Delete("/grants/{grantID}", h.revoke)
	})
}

// mutationRateKey buckets mutation traffic per acting principal, falling
// back to the client IP for anonymous requests.
func mutationRateKey(r *http.Request) (string, error) {
	if actor := shared.ActorFromRequest(r); actor != "" {
		return actor, nil
	}
	return httprate.KeyByIP(r)
}
