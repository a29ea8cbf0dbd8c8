package authz

import "sync"

// revocationCoordinator serializes assign/revoke for the same user so
// concurrent mutations cannot race past the duplicate-tuple check.
// Mutations for different users never block each other; authorization
// reads take no lock here at all.
type revocationCoordinator struct {
	mu    sync.Mutex
	users map[string]*sync.Mutex
}

func newRevocationCoordinator() *revocationCoordinator {
	return &revocationCoordinator{users: make(map[string]*sync.Mutex)}
}

// lock acquires the exclusive section for a user and returns the unlock
// function. User locks are retained for the process lifetime; the user
// population is bounded by the portal's enrollment.
func (c *revocationCoordinator) lock(userID string) func() {
	c.mu.Lock()
	userMu, ok := c.users[userID]
	if !ok {
		userMu = &sync.Mutex{}
		c.users[userID] = userMu
	}
	c.mu.Unlock()

	userMu.Lock()
	return userMu.Unlock
}
