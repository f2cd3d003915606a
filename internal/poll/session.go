package poll

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/evcraddock/domaindeck/internal/apperr"
	"github.com/evcraddock/domaindeck/internal/comment"
	"github.com/evcraddock/domaindeck/internal/cursor"
	"github.com/evcraddock/domaindeck/internal/message"
	"github.com/evcraddock/domaindeck/internal/user"
)

// Stream names.
const (
	StreamComments = "comments"
	StreamMessages = "messages"
)

// DefaultInterval is the time between polls.
const DefaultInterval = 15 * time.Second

// API is the server surface a Session drives. *client.Client implements it.
type API interface {
	ListComments(ctx context.Context, projectID string) ([]*comment.Comment, error)
	PollComments(ctx context.Context, cur cursor.Cursor) ([]*comment.Comment, error)
	PostComment(ctx context.Context, in comment.NewComment) (*comment.Comment, error)
	MarkCommentRead(ctx context.Context, id string) (*comment.Comment, error)
	CommentNotificationCount(ctx context.Context, unreadOnly bool) (int, error)
	Conversations(ctx context.Context) ([]*message.Conversation, error)
	Thread(ctx context.Context, otherUserID string) ([]*message.Message, error)
	SendMessage(ctx context.Context, receiverID, text string) (*message.Message, error)
	MarkThreadRead(ctx context.Context, otherUserID string) (int, error)
	PollMessages(ctx context.Context, cur cursor.Cursor) ([]*message.Incoming, error)
	UnreadMessages(ctx context.Context) (int, error)
}

// Session is the client's application state. It owns the local caches and
// is the only thing that mutates them.
type Session struct {
	api      API
	self     string
	logger   *slog.Logger
	notifier Notifier
	interval time.Duration
	now      func() time.Time

	comments *Stream[*comment.Comment]
	messages *Stream[*message.Incoming]

	mu            sync.Mutex
	commentCache  []*comment.Comment
	commentIDs    map[string]bool
	conversations []*message.Conversation
	thread        []*message.Message
	active        Chat
	unread        int
	commentBadge  int
	stop          context.CancelFunc
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithNotifier sets where delta notifications go.
func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// WithInterval sets the time between polls.
func WithInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithNow sets the time source used to initialize the cursors.
func WithNow(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession creates a session acting as the user selfID.
func NewSession(api API, selfID string, opts ...Option) *Session {
	s := &Session{
		api:        api,
		self:       selfID,
		logger:     slog.Default(),
		notifier:   discardNotifier{},
		interval:   DefaultInterval,
		now:        time.Now,
		commentIDs: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.comments = NewStream(StreamComments, api.PollComments, commentKey, s.logger)
	s.messages = NewStream(StreamMessages, api.PollMessages, incomingKey, s.logger)
	return s
}

func commentKey(c *comment.Comment) (time.Time, string) { return c.CreatedAt, c.ID }

func incomingKey(in *message.Incoming) (time.Time, string) {
	return in.Message.CreatedAt, in.Message.ID
}

// Start initializes both streams at the current time.
func (s *Session) Start() {
	now := s.now()
	s.comments.Init(now)
	s.messages.Init(now)
}

// Run polls both streams every interval until ctx is done or Stop is
// called. Streams are polled one after the other on a single timer.
func (s *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.stop = cancel
	s.mu.Unlock()
	defer cancel()

	if s.comments.State() == Uninitialized {
		s.Start()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sync(ctx)
		}
	}
}

// Stop ends Run. A poll already in flight is allowed to finish.
func (s *Session) Stop() {
	s.mu.Lock()
	stop := s.stop
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// Sync polls each stream once. Failures are logged and retried next time.
func (s *Session) Sync(ctx context.Context) {
	if _, err := s.PollComments(ctx); err != nil {
		s.logger.Debug("comment sync deferred", "error", err)
	}
	if _, err := s.PollMessages(ctx); err != nil {
		s.logger.Debug("message sync deferred", "error", err)
	}
}

// Cursors returns the current comment and message cursors.
func (s *Session) Cursors() (comments, messages cursor.Cursor) {
	return s.comments.Cursor(), s.messages.Cursor()
}

// PollComments fetches the comment delta, merges it into the cache and
// notifies once per author. Own comments are merged silently.
func (s *Session) PollComments(ctx context.Context) (int, error) {
	items, err := s.comments.Poll(ctx)
	if err != nil || len(items) == 0 {
		return 0, err
	}

	s.mu.Lock()
	added := make([]*comment.Comment, 0, len(items))
	for _, c := range items {
		if s.commentIDs[c.ID] {
			continue
		}
		s.commentIDs[c.ID] = true
		s.commentCache = append(s.commentCache, c)
		if c.AuthorID != s.self {
			added = append(added, c)
		}
	}
	s.mu.Unlock()

	groups := GroupBySender(added, func(c *comment.Comment) (string, string) { return c.AuthorID, c.AuthorName })
	for _, n := range CommentNotifications(groups) {
		s.notifier.Notify(ctx, n)
	}
	s.refreshCommentBadge(ctx)
	return len(added), nil
}

// PollMessages fetches the message delta. Messages from the peer of the open
// chat go straight into the thread and are marked read; the rest produce one
// notification per sender. Badges and conversations are refreshed after.
func (s *Session) PollMessages(ctx context.Context) (int, error) {
	items, err := s.messages.Poll(ctx)
	if err != nil || len(items) == 0 {
		return 0, err
	}

	groups := GroupBySender(items, func(in *message.Incoming) (string, string) {
		return in.Sender.ID, in.Sender.Name
	})

	var notify []Group[*message.Incoming]
	for _, g := range groups {
		if s.appendToOpenThread(g) {
			if err := s.markThreadRead(ctx, g.SenderID); err != nil {
				s.logger.Warn("marking open thread read", "peer", g.SenderID, "error", err)
			}
			continue
		}
		notify = append(notify, g)
	}
	for _, n := range MessageNotifications(notify) {
		s.notifier.Notify(ctx, n)
	}

	s.RefreshUnread(ctx)
	if err := s.LoadConversations(ctx); err != nil {
		s.logger.Warn("refreshing conversations", "error", err)
	}
	return len(items), nil
}

func (s *Session) appendToOpenThread(g Group[*message.Incoming]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil || s.active.Peer().ID != g.SenderID {
		return false
	}
	for _, in := range g.Items {
		if !slices.ContainsFunc(s.thread, func(m *message.Message) bool { return m.ID == in.Message.ID }) {
			s.thread = append(s.thread, in.Message)
		}
	}
	return true
}

// LoadComments replaces the comment cache with the visible comments,
// optionally for one project.
func (s *Session) LoadComments(ctx context.Context, projectID string) error {
	comments, err := s.api.ListComments(ctx, projectID)
	if err != nil {
		return fmt.Errorf("loading comments: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commentCache = comments
	s.commentIDs = make(map[string]bool, len(comments))
	for _, c := range comments {
		s.commentIDs[c.ID] = true
	}
	return nil
}

// Comments returns the cached comments in arrival order.
func (s *Session) Comments() []*comment.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.commentCache)
}

// PostComment creates a comment and adds it to the cache. The poll cursor
// is left alone so comments from others created meanwhile still arrive.
func (s *Session) PostComment(ctx context.Context, in comment.NewComment) (*comment.Comment, error) {
	c, err := s.api.PostComment(ctx, in)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.commentIDs[c.ID] {
		s.commentIDs[c.ID] = true
		s.commentCache = append(s.commentCache, c)
	}
	return c, nil
}

// MarkCommentRead marks a cached comment read. The cache is updated first
// and restored if the server rejects the change.
func (s *Session) MarkCommentRead(ctx context.Context, id string) error {
	s.mu.Lock()
	var target *comment.Comment
	for _, c := range s.commentCache {
		if c.ID == id {
			target = c
			break
		}
	}
	if target != nil && target.IsReadBy(s.self) {
		s.mu.Unlock()
		return nil
	}
	var original []string
	if target != nil {
		original = slices.Clone(target.ReadBy)
		target.ReadBy = append(target.ReadBy, s.self)
	}
	s.mu.Unlock()

	if _, err := s.api.MarkCommentRead(ctx, id); err != nil {
		if target != nil {
			s.mu.Lock()
			target.ReadBy = original
			s.mu.Unlock()
		}
		return fmt.Errorf("marking comment read: %w", err)
	}
	s.refreshCommentBadge(ctx)
	return nil
}

// CommentBadge returns the last fetched count of unread comment
// notifications.
func (s *Session) CommentBadge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commentBadge
}

func (s *Session) refreshCommentBadge(ctx context.Context) {
	n, err := s.api.CommentNotificationCount(ctx, true)
	if err != nil {
		s.logger.Warn("refreshing comment badge", "error", err)
		return
	}
	s.mu.Lock()
	s.commentBadge = n
	s.mu.Unlock()
}

// LoadConversations refreshes the conversation list.
func (s *Session) LoadConversations(ctx context.Context) error {
	convs, err := s.api.Conversations(ctx)
	if err != nil {
		return fmt.Errorf("loading conversations: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = convs
	if d, ok := s.active.(Draft); ok {
		if conv := findConversation(convs, d.OtherUser.ID); conv != nil {
			s.active = Persisted{Conversation: conv}
		}
	}
	return nil
}

// Conversations returns the cached conversation list.
func (s *Session) Conversations() []*message.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.conversations)
}

// RefreshUnread fetches the unread message badge.
func (s *Session) RefreshUnread(ctx context.Context) {
	n, err := s.api.UnreadMessages(ctx)
	if err != nil {
		s.logger.Warn("refreshing unread count", "error", err)
		return
	}
	s.mu.Lock()
	s.unread = n
	s.mu.Unlock()
}

// Unread returns the cached unread message count.
func (s *Session) Unread() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// OpenChat makes peer the active chat, loads the thread and marks it read.
func (s *Session) OpenChat(ctx context.Context, peer user.Profile) error {
	s.mu.Lock()
	if conv := findConversation(s.conversations, peer.ID); conv != nil {
		s.active = Persisted{Conversation: conv}
	} else {
		s.active = Draft{OtherUser: peer}
	}
	s.thread = nil
	s.mu.Unlock()

	return s.fetchThread(ctx, peer.ID)
}

// CloseChat clears the active chat and its thread.
func (s *Session) CloseChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = nil
	s.thread = nil
}

// ActiveChat returns the open chat, or nil.
func (s *Session) ActiveChat() Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Thread returns the messages of the open chat.
func (s *Session) Thread() []*message.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.thread)
}

func (s *Session) fetchThread(ctx context.Context, peerID string) error {
	msgs, err := s.api.Thread(ctx, peerID)
	if err != nil {
		return fmt.Errorf("loading thread: %w", err)
	}
	s.mu.Lock()
	if s.active == nil || s.active.Peer().ID != peerID {
		s.mu.Unlock()
		return nil
	}
	s.thread = msgs
	s.mu.Unlock()
	return s.markThreadRead(ctx, peerID)
}

// markThreadRead marks the peer's messages read and clears the matching
// share of the badges.
func (s *Session) markThreadRead(ctx context.Context, peerID string) error {
	if _, err := s.api.MarkThreadRead(ctx, peerID); err != nil {
		return fmt.Errorf("marking thread read: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv := findConversation(s.conversations, peerID); conv != nil {
		s.unread = max(0, s.unread-conv.UnreadCount)
		conv.UnreadCount = 0
	}
	now := s.now().UTC()
	for _, m := range s.thread {
		if m.ReceiverID == s.self && m.SenderID == peerID && m.ReadAt == nil {
			m.ReadAt = &now
		}
	}
	return nil
}

// Send sends text to the open chat and appends it to the thread. The first
// message to a draft creates the conversation.
func (s *Session) Send(ctx context.Context, text string) (*message.Message, error) {
	text = strings.TrimSpace(text)
	s.mu.Lock()
	active := s.active
	s.mu.Unlock()
	if active == nil {
		return nil, apperr.Validation("no conversation is open")
	}
	if text == "" {
		return nil, apperr.Validation("message text is required")
	}

	m, err := s.api.SendMessage(ctx, active.Peer().ID, text)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.thread = append(s.thread, m)
	_, draft := s.active.(Draft)
	s.mu.Unlock()

	if draft {
		if err := s.LoadConversations(ctx); err != nil {
			s.logger.Warn("refreshing conversations", "error", err)
		}
	}
	return m, nil
}

func findConversation(convs []*message.Conversation, peerID string) *message.Conversation {
	for _, c := range convs {
		if c.OtherUser.ID == peerID {
			return c
		}
	}
	return nil
}
