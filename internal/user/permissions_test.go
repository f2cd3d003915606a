package user

import (
	"testing"

	"github.com/evcraddock/domaindeck/internal/apperr"
)

func TestAuthorizeUpdate(t *testing.T) {
	admin := &User{ID: "a", Role: RoleSuperadmin}
	collab := &User{ID: "c", Role: RoleCollaborator}
	role := "superadmin"

	t.Run("collaborator updates self without role", func(t *testing.T) {
		p := Patch{Role: &role}
		if err := AuthorizeUpdate(collab, "c", &p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Role != nil {
			t.Error("role change should be dropped for collaborators")
		}
	})

	t.Run("collaborator cannot update others", func(t *testing.T) {
		p := Patch{}
		if err := AuthorizeUpdate(collab, "a", &p); !apperr.Is(err, apperr.KindPermission) {
			t.Errorf("err = %v, want permission error", err)
		}
	})

	t.Run("superadmin keeps role change", func(t *testing.T) {
		p := Patch{Role: &role}
		if err := AuthorizeUpdate(admin, "c", &p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Role == nil {
			t.Error("role change should be kept for superadmins")
		}
	})
}

func TestAuthorizeDelete(t *testing.T) {
	admin := &User{ID: "a", Role: RoleSuperadmin}
	collab := &User{ID: "c", Role: RoleCollaborator}

	if err := AuthorizeDelete(admin, "c"); err != nil {
		t.Errorf("admin deleting collaborator: %v", err)
	}
	if err := AuthorizeDelete(admin, "a"); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("self delete err = %v, want validation error", err)
	}
	if err := AuthorizeDelete(collab, "a"); !apperr.Is(err, apperr.KindPermission) {
		t.Errorf("collaborator delete err = %v, want permission error", err)
	}
}

func TestCanComment(t *testing.T) {
	if !CanComment(&User{Role: RoleCollaborator}) || !CanComment(&User{Role: RoleSuperadmin}) {
		t.Error("both roles should be able to comment")
	}
	if CanComment(&User{Role: "guest"}) || CanComment(nil) {
		t.Error("unknown roles should not comment")
	}
}
