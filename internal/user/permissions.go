package user

import "github.com/evcraddock/domaindeck/internal/apperr"

// AuthorizeUpdate checks that caller may apply p to the user with id target.
// Users may update their own profile and superadmins may update anyone's.
// A role change requested by a non-superadmin is dropped from p.
func AuthorizeUpdate(caller *User, target string, p *Patch) error {
	if caller.Role != RoleSuperadmin && caller.ID != target {
		return apperr.Permission("you can only update your own profile")
	}
	if caller.Role != RoleSuperadmin {
		p.Role = nil
	}
	return nil
}

// AuthorizeDelete checks that caller may delete the user with id target.
func AuthorizeDelete(caller *User, target string) error {
	if caller.Role != RoleSuperadmin {
		return apperr.Permission("insufficient permissions")
	}
	if caller.ID == target {
		return apperr.Validation("you cannot delete your own account")
	}
	return nil
}

// RequireRole fails with a permission error unless caller holds role.
func RequireRole(caller *User, role Role) error {
	if caller == nil || caller.Role != role {
		return apperr.Permission("insufficient permissions")
	}
	return nil
}

// CanComment reports whether caller's role may post comments.
func CanComment(caller *User) bool {
	return caller != nil && ValidRole(string(caller.Role))
}
