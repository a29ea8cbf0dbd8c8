package authz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Mutation-time errors returned by AssignPermission and RevokePermission.
var (
	// ErrPermissionNotFound indicates the codename is not in the catalog.
	ErrPermissionNotFound = errors.New("authz: permission not found")
	// ErrInvalidScope indicates a malformed scope or an unregistered
	// scope dimension.
	ErrInvalidScope = errors.New("authz: invalid scope")
)

// grantFinder is an optional GrantStore capability. Stores that can look a
// grant up by id let the engine serialize revocations per user; stores
// without it still delete atomically, just outside the per-user section.
type grantFinder interface {
	FindGrant(ctx context.Context, grantID uuid.UUID) (UserPermissionGrant, error)
}

// Engine answers authorization queries and owns the grant mutation
// discipline. Reads run lock-free over store snapshots; assign/revoke for
// the same user are serialized through a per-user exclusive section.
//
// The engine has no side effects beyond the store mutation: it emits no
// notifications and writes no audit records. Decisions carry the matched
// grant ids so a collaborator can do both.
type Engine struct {
	catalog *Catalog
	store   GrantStore
	coord   *revocationCoordinator
	now     func() time.Time
}

// NewEngine constructs an Engine over a catalog and grant store.
func NewEngine(catalog *Catalog, store GrantStore) *Engine {
	return &Engine{
		catalog: catalog,
		store:   store,
		coord:   newRevocationCoordinator(),
		now:     time.Now,
	}
}

// Authorize decides whether the user may exercise the permission within
// the requested scope. Denies are decision values, never errors; only
// store failures are reported as errors.
func (e *Engine) Authorize(ctx context.Context, userID, codename string, requested Scope) (Decision, error) {
	perm, ok := e.catalog.Lookup(codename)
	if !ok {
		return deny(ReasonNoSuchPermission), nil
	}
	grants, err := e.store.GrantsFor(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("authz: load grants: %w", err)
	}
	return decide(perm, grants, requested), nil
}

// AuthorizeAll evaluates many codename/scope pairs over a single grant
// snapshot. Decisions are returned in request order.
func (e *Engine) AuthorizeAll(ctx context.Context, userID string, requests []AccessRequest) ([]Decision, error) {
	if len(requests) == 0 {
		return nil, nil
	}
	grants, err := e.store.GrantsFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("authz: load grants: %w", err)
	}
	decisions := make([]Decision, len(requests))
	for i, req := range requests {
		perm, ok := e.catalog.Lookup(req.Codename)
		if !ok {
			decisions[i] = deny(ReasonNoSuchPermission)
			continue
		}
		decisions[i] = decide(perm, grants, req.Scope)
	}
	return decisions, nil
}

// decide evaluates one permission against a grant snapshot.
func decide(perm Permission, grants []UserPermissionGrant, requested Scope) Decision {
	var matched []uuid.UUID
	sawPermission := false
	for _, grant := range grants {
		if grant.PermissionID != perm.ID {
			continue
		}
		sawPermission = true
		if Matches(grant.Scope, requested) {
			matched = append(matched, grant.ID)
		}
	}
	switch {
	case len(matched) > 0:
		return allow(matched)
	case sawPermission:
		return deny(ReasonScopeMismatch)
	default:
		return deny(ReasonNoGrant)
	}
}

// AssignPermission grants a permission to a user. It validates the
// codename against the catalog and the scope against the registered
// dimension vocabulary, then checks the exact-tuple duplicate invariant
// inside the user's exclusive section before inserting.
func (e *Engine) AssignPermission(ctx context.Context, actorID, userID, codename string, scope Scope) (UserPermissionGrant, error) {
	perm, ok := e.catalog.Lookup(codename)
	if !ok {
		return UserPermissionGrant{}, fmt.Errorf("%w: %s", ErrPermissionNotFound, codename)
	}
	if err := e.validateScope(scope); err != nil {
		return UserPermissionGrant{}, err
	}

	unlock := e.coord.lock(userID)
	defer unlock()

	existing, err := e.store.GrantsFor(ctx, userID)
	if err != nil {
		return UserPermissionGrant{}, fmt.Errorf("authz: load grants: %w", err)
	}
	for _, grant := range existing {
		if grant.PermissionID == perm.ID && grant.Scope.Equal(scope) {
			return UserPermissionGrant{}, fmt.Errorf("%w: user %s permission %s scope %s",
				ErrDuplicateGrant, userID, codename, scope)
		}
	}

	grant := UserPermissionGrant{
		ID:           uuid.New(),
		UserID:       userID,
		PermissionID: perm.ID,
		Scope:        scope,
		GrantedBy:    actorID,
		GrantedAt:    e.now().UTC(),
	}
	if err := e.store.Insert(ctx, grant); err != nil {
		return UserPermissionGrant{}, err
	}
	return grant, nil
}

// RevokePermission deletes exactly the identified grant. When the store
// can resolve the grant's owner, the delete runs inside that user's
// exclusive section alongside concurrent assigns.
func (e *Engine) RevokePermission(ctx context.Context, actorID string, grantID uuid.UUID) error {
	if finder, ok := e.store.(grantFinder); ok {
		grant, err := finder.FindGrant(ctx, grantID)
		if err != nil {
			return err
		}
		unlock := e.coord.lock(grant.UserID)
		defer unlock()
	}
	return e.store.Delete(ctx, grantID)
}

// GrantsFor exposes the user's current grants for the admin listing
// surface. The returned slice is the store's snapshot; callers must not
// mutate it.
func (e *Engine) GrantsFor(ctx context.Context, userID string) ([]UserPermissionGrant, error) {
	return e.store.GrantsFor(ctx, userID)
}

// Catalog exposes the read-only permission catalog.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

func (e *Engine) validateScope(scope Scope) error {
	if scope.IsUnrestricted() {
		return nil
	}
	for _, dim := range scope.Dimensions() {
		if !e.catalog.KnownDimension(dim) {
			return fmt.Errorf("%w: unknown dimension %q", ErrInvalidScope, dim)
		}
	}
	return nil
}
