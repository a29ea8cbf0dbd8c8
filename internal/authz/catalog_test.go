package authz

import (
	"errors"
	"testing"
)

func TestCatalogRegisterAndLookup(t *testing.T) {
	catalog := NewCatalog()
	perm, err := catalog.Register("grade.edit", "Edit Grades", "academics")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if perm.Codename != "grade.edit" {
		t.Fatalf("unexpected codename %q", perm.Codename)
	}

	found, ok := catalog.Lookup("grade.edit")
	if !ok || found.ID != perm.ID {
		t.Fatalf("lookup mismatch: %+v", found)
	}
	if _, ok := catalog.Lookup("grade.view"); ok {
		t.Fatal("unregistered codename should not resolve")
	}

	byID, ok := catalog.LookupID(perm.ID)
	if !ok || byID.Codename != "grade.edit" {
		t.Fatalf("lookup by id mismatch: %+v", byID)
	}
}

func TestCatalogLookupNormalizesCodename(t *testing.T) {
	catalog := NewCatalog()
	catalog.MustRegister("Grade.Edit", "Edit Grades", "academics")
	if _, ok := catalog.Lookup("  GRADE.EDIT "); !ok {
		t.Fatal("lookup should normalize case and whitespace")
	}
}

func TestCatalogDuplicateCodename(t *testing.T) {
	catalog := NewCatalog()
	catalog.MustRegister("grade.edit", "Edit Grades", "academics")
	_, err := catalog.Register("grade.edit", "Edit Grades Again", "academics")
	if !errors.Is(err, ErrDuplicateCodename) {
		t.Fatalf("expected ErrDuplicateCodename, got %v", err)
	}
}

func TestCatalogStableIDs(t *testing.T) {
	a := NewCatalog().MustRegister("grade.edit", "Edit Grades", "academics")
	b := NewCatalog().MustRegister("grade.edit", "Edit Grades", "academics")
	if a.ID != b.ID {
		t.Fatal("permission ids must be stable across catalog instances")
	}
}

func TestCatalogListOrdered(t *testing.T) {
	catalog := NewCatalog()
	catalog.MustRegister("library.manage", "Manage Library", "library")
	catalog.MustRegister("grade.view", "View Grades", "academics")
	catalog.MustRegister("grade.edit", "Edit Grades", "academics")

	perms := catalog.List()
	if len(perms) != 3 {
		t.Fatalf("expected 3 permissions, got %d", len(perms))
	}
	order := []string{"grade.edit", "grade.view", "library.manage"}
	for i, want := range order {
		if perms[i].Codename != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, perms[i].Codename)
		}
	}
}

func TestCatalogDimensions(t *testing.T) {
	catalog := NewCatalog()
	catalog.RegisterDimension("department")
	catalog.RegisterDimension("department")
	if !catalog.KnownDimension("department") {
		t.Fatal("registered dimension should be known")
	}
	if catalog.KnownDimension("campus") {
		t.Fatal("unregistered dimension should not be known")
	}
}
