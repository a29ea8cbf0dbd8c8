// Package navigation derives the menu surface a client may render for a
// user. Menus are data-driven manifests per role, with entries optionally
// gated by a permission, replacing hard-coded per-role branching.
package navigation

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/helios-campus/helios/internal/authz"
)

// ErrUnknownRole indicates no manifest is registered for the role.
var ErrUnknownRole = errors.New("navigation: unknown role")

// Entry describes one menu item in a role manifest. An entry without a
// required permission is included for everyone holding the role; an entry
// with one is included only when the engine allows the user that
// permission, asked at the entry's contextual scope (the scope-free
// question when no scope is set).
type Entry struct {
	ViewID             string `validate:"required"`
	Label              string `validate:"required"`
	RequiredPermission string
	Scope              authz.Scope
}

// Manifest is the ordered menu list for one role.
type Manifest struct {
	Role    string  `validate:"required"`
	Entries []Entry `validate:"required,dive"`
}

// DescriptorEntry is one visible menu item.
type DescriptorEntry struct {
	ViewID             string `json:"viewId"`
	Label              string `json:"label"`
	RequiredPermission string `json:"requiredPermission,omitempty"`
}

// Descriptor is the ordered, filtered menu for a user. Recomputed per
// session, never persisted.
type Descriptor []DescriptorEntry

// Resolver builds navigation descriptors from registered role manifests
// and the authorization engine's decisions.
type Resolver struct {
	engine    *authz.Engine
	manifests map[string]Manifest
}

// NewResolver validates and registers the given manifests. A role may
// appear only once.
func NewResolver(engine *authz.Engine, manifests []Manifest) (*Resolver, error) {
	validate := validator.New()
	indexed := make(map[string]Manifest, len(manifests))
	for _, manifest := range manifests {
		if err := validate.Struct(manifest); err != nil {
			return nil, fmt.Errorf("navigation: manifest %q: %w", manifest.Role, err)
		}
		if _, ok := indexed[manifest.Role]; ok {
			return nil, fmt.Errorf("navigation: duplicate manifest for role %q", manifest.Role)
		}
		indexed[manifest.Role] = manifest
	}
	return &Resolver{engine: engine, manifests: indexed}, nil
}

// Resolve builds the descriptor for a user under the role's registered
// manifest.
func (r *Resolver) Resolve(ctx context.Context, userID, role string) (Descriptor, error) {
	manifest, ok := r.manifests[role]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
	return r.ResolveManifest(ctx, userID, manifest)
}

// ResolveManifest builds the descriptor for an explicit manifest,
// preserving manifest order. Permission checks for all gated entries run
// over a single grant snapshot.
func (r *Resolver) ResolveManifest(ctx context.Context, userID string, manifest Manifest) (Descriptor, error) {
	var requests []authz.AccessRequest
	gated := make([]int, 0, len(manifest.Entries))
	for i, entry := range manifest.Entries {
		if entry.RequiredPermission == "" {
			continue
		}
		requests = append(requests, authz.AccessRequest{Codename: entry.RequiredPermission, Scope: entry.Scope})
		gated = append(gated, i)
	}

	allowed := make(map[int]bool, len(gated))
	if len(requests) > 0 {
		decisions, err := r.engine.AuthorizeAll(ctx, userID, requests)
		if err != nil {
			return nil, fmt.Errorf("navigation: resolve %q: %w", manifest.Role, err)
		}
		for i, decision := range decisions {
			allowed[gated[i]] = decision.Allowed
		}
	}

	descriptor := make(Descriptor, 0, len(manifest.Entries))
	for i, entry := range manifest.Entries {
		if entry.RequiredPermission != "" && !allowed[i] {
			continue
		}
		descriptor = append(descriptor, DescriptorEntry{
			ViewID:             entry.ViewID,
			Label:              entry.Label,
			RequiredPermission: entry.RequiredPermission,
		})
	}
	return descriptor, nil
}

// Roles lists the roles with a registered manifest.
func (r *Resolver) Roles() []string {
	roles := make([]string, 0, len(r.manifests))
	for role := range r.manifests {
		roles = append(roles, role)
	}
	return roles
}
