package web

import (
	"net/http"

	"github.com/evcraddock/domaindeck/internal/user"
)

// handleListUsers returns every user without passwords. Any caller may list
// users so they can pick someone to message.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request, caller *user.User) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.apiErr(w, r, err)
		return
	}
	apiJSON(w, user.Profiles(users), http.StatusOK)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request, caller *user.User) {
	if !s.requireRole(w, r, caller, user.RoleSuperadmin) {
		return
	}
	var req user.NewUser
	if err := decodeJSON(r, &req); err != nil {
		s.apiErr(w, r, err)
		return
	}
	u, err := s.users.Create(r.Context(), req)
	if err != nil {
		s.apiErr(w, r, err)
		return
	}
	apiJSON(w, u.Profile(), http.StatusCreated)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request, caller *user.User) {
	id := r.PathValue("id")
	var req user.Patch
	if err := decodeJSON(r, &req); err != nil {
		s.apiErr(w, r, err)
		return
	}
	if err := user.AuthorizeUpdate(caller, id, &req); err != nil {
		s.apiErr(w, r, err)
		return
	}
	u, err := s.users.Update(r.Context(), id, req)
	if err != nil {
		s.apiErr(w, r, err)
		return
	}
	apiJSON(w, u.Profile(), http.StatusOK)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, caller *user.User) {
	id := r.PathValue("id")
	if err := user.AuthorizeDelete(caller, id); err != nil {
		s.apiErr(w, r, err)
		return
	}
	if err := s.users.Delete(r.Context(), id); err != nil {
		s.apiErr(w, r, err)
		return
	}
	apiJSON(w, map[string]any{"id": id, "deleted": true}, http.StatusOK)
}
