package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/evcraddock/domaindeck/internal/comment"
	"github.com/evcraddock/domaindeck/internal/cursor"
	"github.com/evcraddock/domaindeck/internal/message"
	"github.com/evcraddock/domaindeck/internal/user"
)

func writeData(t *testing.T, w http.ResponseWriter, code int, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	body := map[string]any{"success": code < 400}
	if code < 400 {
		body["data"] = data
	} else {
		body["error"] = data
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestIdentityHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users" {
			t.Errorf("path = %q, want /api/users", r.URL.Path)
		}
		if got := r.Header.Get("X-User-Id"); got != "u1" {
			t.Errorf("X-User-Id = %q, want u1", got)
		}
		writeData(t, w, http.StatusOK, []user.Profile{{ID: "u1", Name: "Alice"}})
	}))
	defer srv.Close()

	users, err := New(srv.URL, "u1").ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 1 || users[0].Name != "Alice" {
		t.Errorf("users = %+v", users)
	}
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-User-Id") != "" {
			t.Error("login should not send an identity")
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["email"] != "a@example.com" || body["password"] != "pw" {
			t.Errorf("body = %v", body)
		}
		writeData(t, w, http.StatusOK, user.Profile{ID: "u1", Email: "a@example.com"})
	}))
	defer srv.Close()

	p, err := New(srv.URL, "").Login(context.Background(), "a@example.com", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if p.ID != "u1" {
		t.Errorf("id = %q", p.ID)
	}
}

func TestPollCommentsQuery(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 500000, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("since"); got != at.Format(time.RFC3339Nano) {
			t.Errorf("since = %q", got)
		}
		if got := q.Get("sinceId"); got != "c9" {
			t.Errorf("sinceId = %q", got)
		}
		writeData(t, w, http.StatusOK, []*comment.Comment{{ID: "c10", Text: "new"}})
	}))
	defer srv.Close()

	got, err := New(srv.URL, "u1").PollComments(context.Background(), cursor.Cursor{At: at, ID: "c9"})
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c10" {
		t.Errorf("comments = %+v", got)
	}
}

func TestPollMessagesOmitsEmptySinceID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.URL.Query()["sinceId"]; ok {
			t.Error("sinceId should be omitted")
		}
		writeData(t, w, http.StatusOK, []*message.Incoming{{
			Message: &message.Message{ID: "m1", Text: "hi"},
			Sender:  user.Profile{ID: "u2", Name: "Bob"},
		}})
	}))
	defer srv.Close()

	got, err := New(srv.URL, "u1").PollMessages(context.Background(), cursor.At(time.Now()))
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if len(got) != 1 || got[0].Sender.Name != "Bob" {
		t.Errorf("incoming = %+v", got)
	}
}

func TestPostComment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in comment.NewComment
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if in.Text != "hello" || len(in.VisibleTo) != 1 {
			t.Errorf("in = %+v", in)
		}
		writeData(t, w, http.StatusCreated, comment.Comment{ID: "c1", Text: in.Text, VisibleTo: in.VisibleTo})
	}))
	defer srv.Close()

	c, err := New(srv.URL, "u1").PostComment(context.Background(), comment.NewComment{Text: "hello", VisibleTo: []string{"u2"}})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if c.ID != "c1" {
		t.Errorf("id = %q", c.ID)
	}
}

func TestCommentNotificationCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("unread") != "true" {
			t.Errorf("unread = %q", r.URL.Query().Get("unread"))
		}
		writeData(t, w, http.StatusOK, map[string]int{"count": 3})
	}))
	defer srv.Close()

	n, err := New(srv.URL, "u1").CommentNotificationCount(context.Background(), true)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}

func TestMarkThreadRead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["otherUserId"] != "u2" {
			t.Errorf("otherUserId = %q", body["otherUserId"])
		}
		writeData(t, w, http.StatusOK, map[string]int{"markedCount": 2})
	}))
	defer srv.Close()

	n, err := New(srv.URL, "u1").MarkThreadRead(context.Background(), "u2")
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if n != 2 {
		t.Errorf("marked = %d, want 2", n)
	}
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeData(t, w, http.StatusNotFound, "recipient not found")
	}))
	defer srv.Close()

	_, err := New(srv.URL, "u1").SendMessage(context.Background(), "ghost", "hi")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T, want *APIError", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Message != "recipient not found" {
		t.Errorf("err = %+v", apiErr)
	}
}

func TestUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeData(t, w, http.StatusUnauthorized, "missing user ID")
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").UnreadMessages(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "missing user ID" {
		t.Errorf("error = %q", err.Error())
	}
}

func TestNonEnvelopeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "u1").Conversations(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadGateway {
		t.Errorf("err = %v", err)
	}
}
