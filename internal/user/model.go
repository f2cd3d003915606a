// Package user provides the user domain model, roles, and data access.
package user

import "time"

// Role gates user and project administration.
type Role string

const (
	RoleSuperadmin   Role = "superadmin"
	RoleCollaborator Role = "collaborator"
)

// ValidRole returns true if s is a known role.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleSuperadmin, RoleCollaborator:
		return true
	}
	return false
}

// User is a stored account. PasswordHash never leaves the server; handlers
// expose Profile instead.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         Role       `json:"role"`
	PasswordHash string     `json:"passwordHash"`
	LastSeen     *time.Time `json:"lastSeen"`
}

// Profile is a user with the password stripped.
type Profile struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Role     Role       `json:"role"`
	LastSeen *time.Time `json:"lastSeen"`
}

// Profile returns the public view of u.
func (u *User) Profile() Profile {
	return Profile{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     u.Role,
		LastSeen: u.LastSeen,
	}
}

// Profiles maps users to their public views.
func Profiles(users []*User) []Profile {
	out := make([]Profile, 0, len(users))
	for _, u := range users {
		out = append(out, u.Profile())
	}
	return out
}

// NewUser is the input for creating a user.
type NewUser struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,oneof=superadmin collaborator"`
	Password string `json:"password" validate:"required"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=superadmin collaborator"`
	Password *string `json:"password,omitempty"`
}
