// Package client provides an HTTP client for the domaindeck REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/evcraddock/domaindeck/internal/comment"
	"github.com/evcraddock/domaindeck/internal/cursor"
	"github.com/evcraddock/domaindeck/internal/message"
	"github.com/evcraddock/domaindeck/internal/user"
)

// DefaultTimeout bounds every request. An expired request is an ordinary
// error; pollers retry it on their next tick.
const DefaultTimeout = 10 * time.Second

// Client is an HTTP client for the domaindeck API acting as one user.
type Client struct {
	baseURL    string
	userID     string
	httpClient *http.Client
}

// New creates a new API client that identifies as userID.
func New(baseURL, userID string) *Client {
	return &Client{
		baseURL:    baseURL,
		userID:     userID,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// UserID returns the identity the client sends.
func (c *Client) UserID() string {
	return c.userID
}

// APIError is a failure reported by the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Login checks credentials and returns the matching profile.
func (c *Client) Login(ctx context.Context, email, password string) (*user.Profile, error) {
	body := map[string]string{"email": email, "password": password}
	var p user.Profile
	if err := c.send(ctx, http.MethodPost, "/api/auth/login", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Me returns the profile of the user with the given ID.
func (c *Client) Me(ctx context.Context, id string) (*user.Profile, error) {
	var p user.Profile
	if err := c.get(ctx, "/api/auth/me/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListUsers returns every user's profile.
func (c *Client) ListUsers(ctx context.Context) ([]user.Profile, error) {
	var users []user.Profile
	if err := c.get(ctx, "/api/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser adds a user. Only superadmins may do this.
func (c *Client) CreateUser(ctx context.Context, in user.NewUser) (*user.Profile, error) {
	var p user.Profile
	if err := c.send(ctx, http.MethodPost, "/api/users", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteUser removes a user. Only superadmins may do this.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), nil, nil)
}

// ListComments returns visible comments, optionally for one project.
func (c *Client) ListComments(ctx context.Context, projectID string) ([]*comment.Comment, error) {
	q := url.Values{}
	if projectID != "" {
		q.Set("projectId", projectID)
	}
	var comments []*comment.Comment
	if err := c.get(ctx, "/api/comments", q, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// PollComments returns visible comments created after cur.
func (c *Client) PollComments(ctx context.Context, cur cursor.Cursor) ([]*comment.Comment, error) {
	var comments []*comment.Comment
	if err := c.get(ctx, "/api/comments/poll", pollQuery(cur), &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// PostComment creates a comment or reply.
func (c *Client) PostComment(ctx context.Context, in comment.NewComment) (*comment.Comment, error) {
	var out comment.Comment
	if err := c.send(ctx, http.MethodPost, "/api/comments", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkCommentRead marks a comment read by the caller.
func (c *Client) MarkCommentRead(ctx context.Context, id string) (*comment.Comment, error) {
	var out comment.Comment
	if err := c.send(ctx, http.MethodPost, "/api/comments/"+url.PathEscape(id)+"/read", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CommentNotifications returns comments addressed to the caller, newest first.
func (c *Client) CommentNotifications(ctx context.Context) ([]*comment.Comment, error) {
	var comments []*comment.Comment
	if err := c.get(ctx, "/api/notifications/comments", nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CommentNotificationCount returns the comment badge count.
func (c *Client) CommentNotificationCount(ctx context.Context, unreadOnly bool) (int, error) {
	q := url.Values{}
	if unreadOnly {
		q.Set("unread", strconv.FormatBool(true))
	}
	var out struct {
		Count int `json:"count"`
	}
	if err := c.get(ctx, "/api/notifications/comments/count", q, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// Conversations returns the caller's per-peer conversation list.
func (c *Client) Conversations(ctx context.Context) ([]*message.Conversation, error) {
	var convs []*message.Conversation
	if err := c.get(ctx, "/api/messages/conversations", nil, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// Thread returns the full history with otherUserID.
func (c *Client) Thread(ctx context.Context, otherUserID string) ([]*message.Message, error) {
	var msgs []*message.Message
	if err := c.get(ctx, "/api/messages/thread/"+url.PathEscape(otherUserID), nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SendMessage sends text to receiverID.
func (c *Client) SendMessage(ctx context.Context, receiverID, text string) (*message.Message, error) {
	body := message.NewMessage{Text: text, ReceiverID: receiverID}
	var m message.Message
	if err := c.send(ctx, http.MethodPost, "/api/messages", body, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// MarkThreadRead marks every unread message from otherUserID as read and
// returns how many were marked.
func (c *Client) MarkThreadRead(ctx context.Context, otherUserID string) (int, error) {
	body := map[string]string{"otherUserId": otherUserID}
	var out struct {
		MarkedCount int `json:"markedCount"`
	}
	if err := c.send(ctx, http.MethodPost, "/api/messages/read", body, &out); err != nil {
		return 0, err
	}
	return out.MarkedCount, nil
}

// PollMessages returns messages to the caller created after cur.
func (c *Client) PollMessages(ctx context.Context, cur cursor.Cursor) ([]*message.Incoming, error) {
	var items []*message.Incoming
	if err := c.get(ctx, "/api/messages/poll", pollQuery(cur), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UnreadMessages returns the number of unread messages to the caller.
func (c *Client) UnreadMessages(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.get(ctx, "/api/notifications/messages/unread", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func pollQuery(cur cursor.Cursor) url.Values {
	q := url.Values{}
	q.Set("since", cur.Since())
	if cur.ID != "" {
		q.Set("sinceId", cur.ID)
	}
	return q
}

// get performs a GET request and decodes the response.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.send(ctx, http.MethodGet, path, nil, result)
}

// send performs a request with an optional JSON body and decodes the
// response data into result.
func (c *Client) send(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, result)
}

// do executes an HTTP request with the identity header and unwraps the
// response envelope.
func (c *Client) do(req *http.Request, result any) error {
	if c.userID != "" {
		req.Header.Set("X-User-Id", c.userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			fmt.Printf("warning: closing response body: %v\n", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	decodeErr := json.Unmarshal(respBody, &env)

	if resp.StatusCode >= 400 || (decodeErr == nil && !env.Success) {
		if decodeErr == nil && env.Error != "" {
			return &APIError{Status: resp.StatusCode, Message: env.Error}
		}
		return &APIError{Status: resp.StatusCode, Message: "server error: " + http.StatusText(resp.StatusCode)}
	}
	if decodeErr != nil {
		return fmt.Errorf("decoding response: %w", decodeErr)
	}

	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
