package authz

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Sentinel errors shared by every GrantStore implementation.
var (
	// ErrDuplicateGrant indicates the exact (user, permission, scope)
	// tuple is already granted.
	ErrDuplicateGrant = errors.New("authz: duplicate grant")
	// ErrGrantNotFound indicates the grant id does not exist.
	ErrGrantNotFound = errors.New("authz: grant not found")
)

// GrantStore persists user permission grants. Implementations must return
// the sentinel errors above so callers can distinguish invariant
// violations from storage failures. GrantsFor must be safe for concurrent
// use and return a snapshot the caller may read without further locking.
type GrantStore interface {
	GrantsFor(ctx context.Context, userID string) ([]UserPermissionGrant, error)
	Insert(ctx context.Context, grant UserPermissionGrant) error
	Delete(ctx context.Context, grantID uuid.UUID) error
}
