package web

import (
	"net/http"

	"github.com/evcraddock/domaindeck/internal/apperr"
	"github.com/evcraddock/domaindeck/internal/auth"
	"github.com/evcraddock/domaindeck/internal/user"
)

// callerHandler handles a request whose caller has been resolved.
type callerHandler func(w http.ResponseWriter, r *http.Request, caller *user.User)

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	s.handle("POST /api/auth/login", http.HandlerFunc(s.handleLogin))
	s.handle("GET /api/auth/me/{id}", http.HandlerFunc(s.handleMe))

	s.handle("GET /api/users", s.authed(s.handleListUsers))
	s.handle("POST /api/users", s.authed(s.handleCreateUser))
	s.handle("PUT /api/users/{id}", s.authed(s.handleUpdateUser))
	s.handle("DELETE /api/users/{id}", s.authed(s.handleDeleteUser))

	s.handle("GET /api/projects", s.authed(s.handleListProjects))
	s.handle("GET /api/projects/{id}", s.authed(s.handleGetProject))
	s.handle("POST /api/projects", s.authed(s.handleCreateProject))
	s.handle("PUT /api/projects/{id}", s.authed(s.handleUpdateProject))
	s.handle("DELETE /api/projects/{id}", s.authed(s.handleDeleteProject))

	s.handle("GET /api/comments", s.authed(s.handleListComments))
	s.handle("GET /api/comments/poll", s.authed(s.handlePollComments))
	s.handle("POST /api/comments", s.authed(s.handlePostComment))
	s.handle("POST /api/comments/{id}/read", s.authed(s.handleMarkCommentRead))
	s.handle("GET /api/notifications/comments", s.authed(s.handleCommentNotifications))
	s.handle("GET /api/notifications/comments/count", s.authed(s.handleCommentNotificationCount))

	s.handle("GET /api/messages/conversations", s.authed(s.handleConversations))
	s.handle("GET /api/messages/thread/{otherUserId}", s.authed(s.handleThread))
	s.handle("POST /api/messages", s.authed(s.handleSendMessage))
	s.handle("POST /api/messages/read", s.authed(s.handleMarkThreadRead))
	s.handle("GET /api/messages/poll", s.authed(s.handlePollMessages))
	s.handle("GET /api/notifications/messages/unread", s.authed(s.handleUnreadMessages))

	s.mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		apiError(w, "not found", http.StatusNotFound)
	})
}

// handle registers h under pattern with request metrics.
func (s *Server) handle(pattern string, h http.Handler) {
	s.mux.Handle(pattern, s.metrics.Instrument(pattern, h))
}

// authed resolves the caller from the X-User-Id header before calling fn.
func (s *Server) authed(fn callerHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, err := s.auth.Resolve(r)
		if err != nil {
			s.apiErr(w, r, err)
			return
		}
		fn(w, r.WithContext(auth.WithUser(r.Context(), caller)), caller)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// requireRole fails the request unless caller holds role.
func (s *Server) requireRole(w http.ResponseWriter, r *http.Request, caller *user.User, role user.Role) bool {
	if err := user.RequireRole(caller, role); err != nil {
		s.apiErr(w, r, err)
		return false
	}
	return true
}

var errInvalidBody = apperr.Validation("invalid JSON body")
