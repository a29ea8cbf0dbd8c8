package authz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testGrant(userID string, permID uuid.UUID, scope Scope) UserPermissionGrant {
	return UserPermissionGrant{
		ID:           uuid.New(),
		UserID:       userID,
		PermissionID: permID,
		Scope:        scope,
		GrantedBy:    "admin-1",
		GrantedAt:    time.Now().UTC(),
	}
}

func TestMemoryStoreInsertAndList(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	permID := uuid.New()

	first := testGrant("u-1", permID, NewScope(map[string][]string{"department": {"CS"}}))
	second := testGrant("u-1", permID, NewScope(map[string][]string{"department": {"MATH"}}))
	if err := store.Insert(ctx, first); err != nil {
		t.Fatalf("insert first: %v", err)
	}
	if err := store.Insert(ctx, second); err != nil {
		t.Fatalf("insert second: %v", err)
	}

	grants, err := store.GrantsFor(ctx, "u-1")
	if err != nil {
		t.Fatalf("grants for: %v", err)
	}
	if len(grants) != 2 {
		t.Fatalf("expected 2 grants, got %d", len(grants))
	}
	if grants[0].ID != first.ID || grants[1].ID != second.ID {
		t.Fatal("grants should come back in insertion order")
	}

	other, err := store.GrantsFor(ctx, "u-2")
	if err != nil {
		t.Fatalf("grants for other user: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no grants for other user, got %d", len(other))
	}
}

func TestMemoryStoreDuplicateTuple(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	permID := uuid.New()
	scope := NewScope(map[string][]string{"department": {"CS"}})

	if err := store.Insert(ctx, testGrant("u-1", permID, scope)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	err := store.Insert(ctx, testGrant("u-1", permID, NewScope(map[string][]string{"department": {"CS"}})))
	if !errors.Is(err, ErrDuplicateGrant) {
		t.Fatalf("expected ErrDuplicateGrant, got %v", err)
	}

	// Same permission with a different scope is a distinct tuple.
	if err := store.Insert(ctx, testGrant("u-1", permID, Unrestricted())); err != nil {
		t.Fatalf("insert unrestricted: %v", err)
	}
	// Same tuple for a different user is fine.
	if err := store.Insert(ctx, testGrant("u-2", permID, scope)); err != nil {
		t.Fatalf("insert other user: %v", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	permID := uuid.New()
	grant := testGrant("u-1", permID, Unrestricted())
	if err := store.Insert(ctx, grant); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := store.Delete(ctx, grant.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	grants, _ := store.GrantsFor(ctx, "u-1")
	if len(grants) != 0 {
		t.Fatalf("expected no grants after delete, got %d", len(grants))
	}

	err := store.Delete(ctx, grant.ID)
	if !errors.Is(err, ErrGrantNotFound) {
		t.Fatalf("expected ErrGrantNotFound, got %v", err)
	}
}

func TestMemoryStoreFindGrant(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	grant := testGrant("u-1", uuid.New(), Unrestricted())
	if err := store.Insert(ctx, grant); err != nil {
		t.Fatalf("insert: %v", err)
	}

	found, err := store.FindGrant(ctx, grant.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.UserID != "u-1" {
		t.Fatalf("unexpected owner %s", found.UserID)
	}
	if _, err := store.FindGrant(ctx, uuid.New()); !errors.Is(err, ErrGrantNotFound) {
		t.Fatalf("expected ErrGrantNotFound, got %v", err)
	}
}

func TestMemoryStoreSnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	grant := testGrant("u-1", uuid.New(), Unrestricted())
	if err := store.Insert(ctx, grant); err != nil {
		t.Fatalf("insert: %v", err)
	}

	snapshot, _ := store.GrantsFor(ctx, "u-1")
	if err := store.Delete(ctx, grant.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(snapshot) != 1 || snapshot[0].ID != grant.ID {
		t.Fatal("snapshot must not observe the concurrent delete")
	}
}
