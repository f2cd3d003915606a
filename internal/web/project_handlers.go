package web

import (
	"net/http"

	"github.com/evcraddock/domaindeck/internal/project"
	"github.com/evcraddock/domaindeck/internal/user"
)

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request, caller *user.User) {
	projects, err := s.projects.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		s.apiErr(w, r, err)
		return
	}
	apiJSON(w, projects, http.StatusOK)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request, caller *user.User) {
	p, err := s.projects.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.apiErr(w, r, err)
		return
	}
	apiJSON(w, p, http.StatusOK)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request, caller *user.User) {
	if !s.requireRole(w, r, caller, user.RoleSuperadmin) {
		return
	}
	var req project.Input
	if err := decodeJSON(r, &req); err != nil {
		s.apiErr(w, r, err)
		return
	}
	p, err := s.projects.Create(r.Context(), req)
	if err != nil {
		s.apiErr(w, r, err)
		return
	}
	apiJSON(w, p, http.StatusCreated)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request, caller *user.User) {
	if !s.requireRole(w, r, caller, user.RoleSuperadmin) {
		return
	}
	var req project.Input
	if err := decodeJSON(r, &req); err != nil {
		s.apiErr(w, r, err)
		return
	}
	p, err := s.projects.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		s.apiErr(w, r, err)
		return
	}
	apiJSON(w, p, http.StatusOK)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request, caller *user.User) {
	if !s.requireRole(w, r, caller, user.RoleSuperadmin) {
		return
	}
	id := r.PathValue("id")
	if err := s.projects.Delete(r.Context(), id); err != nil {
		s.apiErr(w, r, err)
		return
	}
	apiJSON(w, map[string]any{"id": id, "deleted": true}, http.StatusOK)
}
