package authz

import (
	"time"

	"github.com/google/uuid"
)

// UserPermissionGrant records that a user may exercise a permission within
// a scope. Grants are never mutated in place; a scope change is modeled as
// revoke-then-reassign so the audit fields stay unambiguous.
type UserPermissionGrant struct {
	ID           uuid.UUID
	UserID       string
	PermissionID uuid.UUID
	Scope        Scope
	GrantedBy    string
	GrantedAt    time.Time
}

// Reason explains the outcome of an authorization decision.
type Reason string

const (
	// ReasonAllowed indicates at least one grant covered the request.
	ReasonAllowed Reason = "allowed"
	// ReasonNoSuchPermission indicates the codename is not in the catalog.
	ReasonNoSuchPermission Reason = "no_such_permission"
	// ReasonNoGrant indicates the user holds no grant for the permission.
	ReasonNoGrant Reason = "no_grant"
	// ReasonScopeMismatch indicates grants exist but none cover the
	// requested scope.
	ReasonScopeMismatch Reason = "scope_mismatch"
)

// Decision is the transient result of an Authorize call. Denies are data,
// not errors: the reason is sufficient for a caller to explain the outcome
// without re-deriving catalog or grant state.
type Decision struct {
	Allowed         bool
	MatchedGrantIDs []uuid.UUID
	Reason          Reason
}

// AccessRequest names one codename/scope pair for batched authorization.
type AccessRequest struct {
	Codename string
	Scope    Scope
}

func deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

func allow(matched []uuid.UUID) Decision {
	return Decision{Allowed: true, MatchedGrantIDs: matched, Reason: ReasonAllowed}
}
