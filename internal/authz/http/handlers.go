// Package authzhttp exposes the authorization engine over JSON endpoints.
package authzhttp

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/helios-campus/helios/internal/audit"
	"github.com/helios-campus/helios/internal/authz"
	"github.com/helios-campus/helios/internal/navigation"
	"github.com/helios-campus/helios/internal/observability"
	"github.com/helios-campus/helios/internal/platform/httpx"
	"github.com/helios-campus/helios/internal/shared"
)

// Handler wires the authorization and navigation endpoints.
type Handler struct {
	logger   *slog.Logger
	engine   *authz.Engine
	resolver *navigation.Resolver
	recorder *audit.Recorder
	metrics  *observability.Metrics
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, engine *authz.Engine, resolver *navigation.Resolver, recorder *audit.Recorder, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:   logger,
		engine:   engine,
		resolver: resolver,
		recorder: recorder,
		metrics:  metrics,
		validate: validator.New(),
	}
}

type authorizeRequest struct {
	UserID   string      `json:"userId" validate:"required"`
	Codename string      `json:"codename" validate:"required"`
	Scope    authz.Scope `json:"scope"`
}

type authorizeResponse struct {
	Allowed         bool     `json:"allowed"`
	Reason          string   `json:"reason"`
	MatchedGrantIDs []string `json:"matchedGrantIds,omitempty"`
}

type assignRequest struct {
	UserID   string      `json:"userId" validate:"required"`
	Codename string      `json:"codename" validate:"required"`
	Scope    authz.Scope `json:"scope"`
}

type grantResponse struct {
	ID           string      `json:"id"`
	UserID       string      `json:"userId"`
	PermissionID string      `json:"permissionId"`
	Scope        authz.Scope `json:"scope"`
	GrantedBy    string      `json:"grantedBy"`
	GrantedAt    time.Time   `json:"grantedAt"`
}

type permissionResponse struct {
	ID       string `json:"id"`
	Codename string `json:"codename"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) {
	var req authorizeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}

	decision, err := h.engine.Authorize(r.Context(), req.UserID, req.Codename, req.Scope)
	if err != nil {
		h.logger.Error("authorize", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.metrics.ObserveDecision(decision)
	httpx.JSON(w, http.StatusOK, toAuthorizeResponse(decision))
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromRequest(r)
	if actor == "" {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrUnauthorized, shared.ErrNoActor))
		return
	}

	var req assignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}

	grant, err := h.engine.AssignPermission(r.Context(), actor, req.UserID, req.Codename, req.Scope)
	if err != nil {
		httpx.RespondError(w, classify(err))
		return
	}

	h.recorder.Record(r.Context(), audit.Event{
		ActorID: actor,
		Action:  audit.ActionAssign,
		GrantID: grant.ID,
		UserID:  grant.UserID,
		Meta:    map[string]any{"codename": req.Codename, "scope": grant.Scope.String()},
	})
	httpx.JSON(w, http.StatusCreated, toGrantResponse(grant))
}

func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromRequest(r)
	if actor == "" {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrUnauthorized, shared.ErrNoActor))
		return
	}

	grantID, err := uuid.Parse(chi.URLParam(r, "grantID"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed grant id", httpx.ErrValidation))
		return
	}

	if err := h.engine.RevokePermission(r.Context(), actor, grantID); err != nil {
		httpx.RespondError(w, classify(err))
		return
	}

	h.recorder.Record(r.Context(), audit.Event{
		ActorID: actor,
		Action:  audit.ActionRevoke,
		GrantID: grantID,
	})
	httpx.NoContent(w)
}

func (h *Handler) listGrants(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	grants, err := h.engine.GrantsFor(r.Context(), userID)
	if err != nil {
		h.logger.Error("list grants", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]grantResponse, 0, len(grants))
	for _, grant := range grants {
		out = append(out, toGrantResponse(grant))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"grants": out})
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms := h.engine.Catalog().List()
	out := make([]permissionResponse, 0, len(perms))
	for _, perm := range perms {
		out = append(out, permissionResponse{
			ID:       perm.ID.String(),
			Codename: perm.Codename,
			Name:     perm.Name,
			Category: perm.Category,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": out})
}

func (h *Handler) resolveNavigation(w http.ResponseWriter, r *http.Request) {
	userID := shared.ActorFromRequest(r)
	if userID == "" {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrUnauthorized, shared.ErrNoActor))
		return
	}
	role := r.URL.Query().Get("role")
	if role == "" {
		if sess := shared.SessionFromContext(r.Context()); sess != nil {
			role = sess.Role()
		}
	}
	if role == "" {
		httpx.RespondError(w, fmt.Errorf("%w: role required", httpx.ErrValidation))
		return
	}

	descriptor, err := h.resolver.Resolve(r.Context(), userID, role)
	if err != nil {
		if errors.Is(err, navigation.ErrUnknownRole) {
			httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrNotFound, err))
			return
		}
		h.logger.Error("resolve navigation", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"role": role, "entries": descriptor})
}

// classify maps engine errors onto the transport sentinels.
func classify(err error) error {
	switch {
	case errors.Is(err, authz.ErrPermissionNotFound):
		return fmt.Errorf("%w: %v", httpx.ErrNotFound, err)
	case errors.Is(err, authz.ErrGrantNotFound):
		return fmt.Errorf("%w: %v", httpx.ErrNotFound, err)
	case errors.Is(err, authz.ErrDuplicateGrant):
		return fmt.Errorf("%w: %v", httpx.ErrDuplicate, err)
	case errors.Is(err, authz.ErrInvalidScope):
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	default:
		return err
	}
}

func toAuthorizeResponse(decision authz.Decision) authorizeResponse {
	resp := authorizeResponse{
		Allowed: decision.Allowed,
		Reason:  string(decision.Reason),
	}
	for _, id := range decision.MatchedGrantIDs {
		resp.MatchedGrantIDs = append(resp.MatchedGrantIDs, id.String())
	}
	return resp
}

func toGrantResponse(grant authz.UserPermissionGrant) grantResponse {
	return grantResponse{
		ID:           grant.ID.String(),
		UserID:       grant.UserID,
		PermissionID: grant.PermissionID.String(),
		Scope:        grant.Scope,
		GrantedBy:    grant.GrantedBy,
		GrantedAt:    grant.GrantedAt,
	}
}
