package web

import (
	"net/http"
)

// handleLogin checks email and password and returns the caller's profile.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.apiErr(w, r, err)
		return
	}

	u, err := s.auth.Login(r.Context(), r.RemoteAddr, req.Email, req.Password)
	if err != nil {
		s.apiErr(w, r, err)
		return
	}
	apiJSON(w, u.Profile(), http.StatusOK)
}

// handleMe returns the profile of the user with the given ID.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.apiErr(w, r, err)
		return
	}
	apiJSON(w, u.Profile(), http.StatusOK)
}
