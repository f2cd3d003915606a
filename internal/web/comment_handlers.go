package web

import (
	"net/http"
	"strconv"

	"github.com/evcraddock/domaindeck/internal/apperr"
	"github.com/evcraddock/domaindeck/internal/comment"
	"github.com/evcraddock/domaindeck/internal/cursor"
	"github.com/evcraddock/domaindeck/internal/user"
)

// handleListComments returns visible comments, optionally for one project.
func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request, caller *user.User) {
	comments, err := s.comments.List(r.Context(), caller, r.URL.Query().Get("projectId"))
	if err != nil {
		s.apiErr(w, r, err)
		return
	}
	apiJSON(w, comments, http.StatusOK)
}

// handlePollComments returns visible comments created after the cursor.
func (s *Server) handlePollComments(w http.ResponseWriter, r *http.Request, caller *user.User) {
	q := r.URL.Query()
	cur, err := cursor.Parse(q.Get("since"), q.Get("sinceId"))
	if err != nil {
		s.apiErr(w, r, err)
		return
	}
	comments, err := s.comments.PollSince(r.Context(), caller, cur)
	if err != nil {
		s.apiErr(w, r, err)
		return
	}
	s.metrics.PollItems.WithLabelValues("comments").Add(float64(len(comments)))
	apiJSON(w, comments, http.StatusOK)
}

func (s *Server) handlePostComment(w http.ResponseWriter, r *http.Request, caller *user.User) {
	var req comment.NewComment
	if err := decodeJSON(r, &req); err != nil {
		s.apiErr(w, r, err)
		return
	}
	c, err := s.comments.Post(r.Context(), caller, req)
	if err != nil {
		s.apiErr(w, r, err)
		return
	}
	s.metrics.CommentsPosted.Inc()
	apiJSON(w, c, http.StatusCreated)
}

func (s *Server) handleMarkCommentRead(w http.ResponseWriter, r *http.Request, caller *user.User) {
	c, changed, err := s.comments.MarkRead(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		s.apiErr(w, r, err)
		return
	}
	s.metrics.CommentRead(changed)
	apiJSON(w, c, http.StatusOK)
}

// handleCommentNotifications returns comments addressed to the caller,
// newest first.
func (s *Server) handleCommentNotifications(w http.ResponseWriter, r *http.Request, caller *user.User) {
	comments, err := s.comments.Notifications(r.Context(), caller)
	if err != nil {
		s.apiErr(w, r, err)
		return
	}
	apiJSON(w, comments, http.StatusOK)
}

// handleCommentNotificationCount returns the comment badge count. By default
// every addressed comment counts; unread=true counts only unread ones.
func (s *Server) handleCommentNotificationCount(w http.ResponseWriter, r *http.Request, caller *user.User) {
	unreadOnly := false
	if v := r.URL.Query().Get("unread"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.apiErr(w, r, apperr.Validation("unread must be true or false"))
			return
		}
		unreadOnly = b
	}
	n, err := s.comments.NotificationCount(r.Context(), caller, unreadOnly)
	if err != nil {
		s.apiErr(w, r, err)
		return
	}
	apiJSON(w, map[string]int{"count": n}, http.StatusOK)
}
