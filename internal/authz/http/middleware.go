package authzhttp

import (
	"log/slog"
	"net/http"

	"github.com/helios-campus/helios/internal/authz"
	"github.com/helios-campus/helios/internal/shared"
)

// require gates a route group on the acting principal holding the named
// permission somewhere (the scope-free question). The engine that decides
// requests is the same one guarding its own management surface.
func (h *Handler) require(codename string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := shared.ActorFromRequest(r)
			if actor == "" {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			decision, err := h.engine.Authorize(r.Context(), actor, codename, authz.NewScope(nil))
			if err != nil {
				h.logger.Error("require permission", slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			h.metrics.ObserveDecision(decision)
			if !decision.Allowed {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
