package authz

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is the reference GrantStore: per-user ordered grant lists
// guarded by a single RWMutex. Reads return copies so callers hold an
// immutable snapshot while mutations proceed.
type MemoryStore struct {
	mu     sync.RWMutex
	byUser map[string][]UserPermissionGrant
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byUser: make(map[string][]UserPermissionGrant)}
}

// GrantsFor returns a copy of the user's grants in insertion order.
func (s *MemoryStore) GrantsFor(ctx context.Context, userID string) ([]UserPermissionGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	grants := s.byUser[userID]
	if len(grants) == 0 {
		return nil, nil
	}
	out := make([]UserPermissionGrant, len(grants))
	copy(out, grants)
	return out, nil
}

// Insert appends a grant, rejecting exact (user, permission, scope)
// duplicates with ErrDuplicateGrant.
func (s *MemoryStore) Insert(ctx context.Context, grant UserPermissionGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byUser[grant.UserID] {
		if existing.PermissionID == grant.PermissionID && existing.Scope.Equal(grant.Scope) {
			return fmt.Errorf("%w: user %s permission %s scope %s",
				ErrDuplicateGrant, grant.UserID, grant.PermissionID, grant.Scope)
		}
	}
	s.byUser[grant.UserID] = append(s.byUser[grant.UserID], grant)
	return nil
}

// Delete removes exactly the identified grant.
func (s *MemoryStore) Delete(ctx context.Context, grantID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for userID, grants := range s.byUser {
		for i, grant := range grants {
			if grant.ID != grantID {
				continue
			}
			s.byUser[userID] = append(grants[:i:i], grants[i+1:]...)
			if len(s.byUser[userID]) == 0 {
				delete(s.byUser, userID)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrGrantNotFound, grantID)
}

// FindGrant returns the grant with the given id.
func (s *MemoryStore) FindGrant(ctx context.Context, grantID uuid.UUID) (UserPermissionGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, grants := range s.byUser {
		for _, grant := range grants {
			if grant.ID == grantID {
				return grant, nil
			}
		}
	}
	return UserPermissionGrant{}, fmt.Errorf("%w: %s", ErrGrantNotFound, grantID)
}

// Users lists user ids holding at least one grant. Used by the integrity
// scan worker.
func (s *MemoryStore) Users(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]string, 0, len(s.byUser))
	for userID := range s.byUser {
		users = append(users, userID)
	}
	return users, nil
}
