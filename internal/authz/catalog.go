// Package authz implements the scoped permission authorization core: the
// permission catalog, scope matching, grant storage contracts and the
// decision engine consumed by the portal's HTTP surface and worker.
package authz

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrDuplicateCodename indicates a codename registered twice.
var ErrDuplicateCodename = errors.New("authz: duplicate permission codename")

// permissionNamespace seeds deterministic permission identifiers so the
// same codename maps to the same id across processes and restarts.
var permissionNamespace = uuid.MustParse("9b2f68a1-4c1d-4f0e-9a35-7d1c2b5e8f04")

// Permission is an atomic capability registered in the catalog. Immutable
// after registration.
type Permission struct {
	ID       uuid.UUID
	Codename string
	Name     string
	Category string
}

// Catalog is the process-wide registry of permissions and scope dimensions.
// It is populated once at startup from a fixed manifest and read-only
// afterwards; the mutex only protects against misuse during init ordering.
type Catalog struct {
	mu         sync.RWMutex
	byCodename map[string]Permission
	byID       map[uuid.UUID]Permission
	dimensions map[string]struct{}
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byCodename: make(map[string]Permission),
		byID:       make(map[uuid.UUID]Permission),
		dimensions: make(map[string]struct{}),
	}
}

// Register adds a permission to the catalog. The id is derived
// deterministically from the codename.
func (c *Catalog) Register(codename, name, category string) (Permission, error) {
	codename = strings.TrimSpace(strings.ToLower(codename))
	if codename == "" {
		return Permission{}, errors.New("authz: permission codename required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byCodename[codename]; ok {
		return Permission{}, fmt.Errorf("%w: %s", ErrDuplicateCodename, codename)
	}
	perm := Permission{
		ID:       uuid.NewSHA1(permissionNamespace, []byte(codename)),
		Codename: codename,
		Name:     strings.TrimSpace(name),
		Category: strings.TrimSpace(category),
	}
	c.byCodename[codename] = perm
	c.byID[perm.ID] = perm
	return perm, nil
}

// MustRegister registers a permission and panics on failure. Intended for
// startup manifests where a duplicate is a programming error.
func (c *Catalog) MustRegister(codename, name, category string) Permission {
	perm, err := c.Register(codename, name, category)
	if err != nil {
		panic(err)
	}
	return perm
}

// RegisterDimension declares a scope dimension name as part of the closed
// vocabulary accepted on grants. Registering twice is harmless.
func (c *Catalog) RegisterDimension(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dimensions[name] = struct{}{}
}

// KnownDimension reports whether a scope dimension is registered.
func (c *Catalog) KnownDimension(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.dimensions[name]
	return ok
}

// Lookup fetches a permission by codename.
func (c *Catalog) Lookup(codename string) (Permission, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	perm, ok := c.byCodename[strings.TrimSpace(strings.ToLower(codename))]
	return perm, ok
}

// LookupID fetches a permission by id.
func (c *Catalog) LookupID(id uuid.UUID) (Permission, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	perm, ok := c.byID[id]
	return perm, ok
}

// List returns all permissions ordered by category then codename.
func (c *Catalog) List() []Permission {
	c.mu.RLock()
	defer c.mu.RUnlock()
	perms := make([]Permission, 0, len(c.byCodename))
	for _, perm := range c.byCodename {
		perms = append(perms, perm)
	}
	sort.Slice(perms, func(i, j int) bool {
		if perms[i].Category != perms[j].Category {
			return perms[i].Category < perms[j].Category
		}
		return perms[i].Codename < perms[j].Codename
	})
	return perms
}
