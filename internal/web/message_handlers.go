package web

import (
	"net/http"

	"github.com/evcraddock/domaindeck/internal/cursor"
	"github.com/evcraddock/domaindeck/internal/message"
	"github.com/evcraddock/domaindeck/internal/user"
)

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request, caller *user.User) {
	convs, err := s.messages.Conversations(r.Context(), caller)
	if err != nil {
		s.apiErr(w, r, err)
		return
	}
	apiJSON(w, convs, http.StatusOK)
}

func (s *Server) handleThread(w http.ResponseWriter, r *http.Request, caller *user.User) {
	thread, err := s.messages.Thread(r.Context(), caller, r.PathValue("otherUserId"))
	if err != nil {
		s.apiErr(w, r, err)
		return
	}
	apiJSON(w, thread, http.StatusOK)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request, caller *user.User) {
	var req message.NewMessage
	if err := decodeJSON(r, &req); err != nil {
		s.apiErr(w, r, err)
		return
	}
	m, err := s.messages.Send(r.Context(), caller, req)
	if err != nil {
		s.apiErr(w, r, err)
		return
	}
	s.metrics.MessagesSent.Inc()
	apiJSON(w, m, http.StatusCreated)
}

// handleMarkThreadRead marks every unread message from otherUserId to the
// caller as read.
func (s *Server) handleMarkThreadRead(w http.ResponseWriter, r *http.Request, caller *user.User) {
	var req struct {
		OtherUserID string `json:"otherUserId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.apiErr(w, r, err)
		return
	}
	n, err := s.messages.MarkThreadRead(r.Context(), caller, req.OtherUserID)
	if err != nil {
		s.apiErr(w, r, err)
		return
	}
	s.metrics.MessagesMarked.Add(float64(n))
	apiJSON(w, map[string]int{"markedCount": n}, http.StatusOK)
}

// handlePollMessages returns messages to the caller created after the
// cursor, each with its sender.
func (s *Server) handlePollMessages(w http.ResponseWriter, r *http.Request, caller *user.User) {
	q := r.URL.Query()
	cur, err := cursor.Parse(q.Get("since"), q.Get("sinceId"))
	if err != nil {
		s.apiErr(w, r, err)
		return
	}
	items, err := s.messages.PollSince(r.Context(), caller, cur)
	if err != nil {
		s.apiErr(w, r, err)
		return
	}
	s.metrics.PollItems.WithLabelValues("messages").Add(float64(len(items)))
	apiJSON(w, items, http.StatusOK)
}

func (s *Server) handleUnreadMessages(w http.ResponseWriter, r *http.Request, caller *user.User) {
	n, err := s.messages.UnreadCount(r.Context(), caller)
	if err != nil {
		s.apiErr(w, r, err)
		return
	}
	apiJSON(w, map[string]int{"count": n}, http.StatusOK)
}
