package poll

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/evcraddock/domaindeck/internal/comment"
	"github.com/evcraddock/domaindeck/internal/cursor"
	"github.com/evcraddock/domaindeck/internal/message"
	"github.com/evcraddock/domaindeck/internal/user"
)

var errUnavailable = errors.New("server unavailable")

// fakeAPI serves canned comments and messages and records mutations.
type fakeAPI struct {
	mu sync.Mutex

	comments []*comment.Comment
	incoming []*message.Incoming
	convs    []*message.Conversation
	threads  map[string][]*message.Message

	unread       int
	commentBadge int

	pollErr     error
	markReadErr error

	pollCalls     []cursor.Cursor
	markedThreads []string
	markedReads   []string
	sent          []*message.Message
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{threads: make(map[string][]*message.Message)}
}

func (f *fakeAPI) ListComments(_ context.Context, projectID string) ([]*comment.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*comment.Comment
	for _, c := range f.comments {
		if projectID == "" || (c.ProjectID != nil && *c.ProjectID == projectID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeAPI) PollComments(_ context.Context, cur cursor.Cursor) ([]*comment.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pollCalls = append(f.pollCalls, cur)
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	var out []*comment.Comment
	for _, c := range f.comments {
		if cur.Admits(c.CreatedAt, c.ID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeAPI) PostComment(_ context.Context, in comment.NewComment) (*comment.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &comment.Comment{
		ID:        "posted",
		AuthorID:  "me",
		Text:      in.Text,
		CreatedAt: base.Add(time.Hour),
		ReadBy:    []string{"me"},
	}
	f.comments = append(f.comments, c)
	return c, nil
}

func (f *fakeAPI) MarkCommentRead(_ context.Context, id string) (*comment.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markedReads = append(f.markedReads, id)
	if f.markReadErr != nil {
		return nil, f.markReadErr
	}
	return &comment.Comment{ID: id}, nil
}

func (f *fakeAPI) CommentNotificationCount(context.Context, bool) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commentBadge, nil
}

func (f *fakeAPI) Conversations(context.Context) ([]*message.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.convs, nil
}

func (f *fakeAPI) Thread(_ context.Context, otherUserID string) ([]*message.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*message.Message(nil), f.threads[otherUserID]...), nil
}

func (f *fakeAPI) SendMessage(_ context.Context, receiverID, text string) (*message.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := &message.Message{
		ID:         "sent-" + receiverID,
		SenderID:   "me",
		ReceiverID: receiverID,
		Text:       text,
		CreatedAt:  base.Add(time.Hour),
	}
	f.sent = append(f.sent, m)
	return m, nil
}

func (f *fakeAPI) MarkThreadRead(_ context.Context, otherUserID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markedThreads = append(f.markedThreads, otherUserID)
	return 0, nil
}

func (f *fakeAPI) PollMessages(_ context.Context, cur cursor.Cursor) ([]*message.Incoming, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	var out []*message.Incoming
	for _, in := range f.incoming {
		if cur.Admits(in.Message.CreatedAt, in.Message.ID) {
			out = append(out, in)
		}
	}
	return out, nil
}

func (f *fakeAPI) UnreadMessages(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unread, nil
}

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func at(sec int) time.Time {
	return base.Add(time.Duration(sec) * time.Second)
}

func newComment(id, author string, sec int, text string) *comment.Comment {
	return &comment.Comment{
		ID:         id,
		AuthorID:   author,
		AuthorName: author,
		Text:       text,
		CreatedAt:  at(sec),
		ReadBy:     []string{author},
	}
}

func newIncoming(id, sender string, sec int, text string) *message.Incoming {
	return &message.Incoming{
		Message: &message.Message{
			ID:         id,
			SenderID:   sender,
			ReceiverID: "me",
			SenderName: sender,
			Text:       text,
			CreatedAt:  at(sec),
		},
		Sender: user.Profile{ID: sender, Name: sender},
	}
}

// recorder collects notifications.
type recorder struct {
	mu  sync.Mutex
	got []Notification
}

func (r *recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
}

func (r *recorder) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.got...)
}
