package message

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/evcraddock/domaindeck/internal/apperr"
	"github.com/evcraddock/domaindeck/internal/clock"
	"github.com/evcraddock/domaindeck/internal/cursor"
	"github.com/evcraddock/domaindeck/internal/store"
	"github.com/evcraddock/domaindeck/internal/user"
	"github.com/evcraddock/domaindeck/internal/validate"
)

// Kind is the entity store kind for messages.
const Kind = "message"

// Directory resolves users referenced by messages.
type Directory interface {
	Get(ctx context.Context, id string) (*user.User, error)
	Index(ctx context.Context) (map[string]*user.User, error)
}

// Service provides messaging business logic.
type Service struct {
	messages *store.Collection[Message]
	users    Directory
	clock    clock.Clock

	// mu serializes timestamp assignment with insertion.
	mu sync.Mutex
}

// NewService creates a messaging service.
func NewService(backend store.Backend, users Directory, clk clock.Clock) *Service {
	return &Service{
		messages: store.NewCollection[Message](backend, Kind),
		users:    users,
		clock:    clk,
	}
}

// Send stores a message from caller. The receiver must exist.
func (s *Service) Send(ctx context.Context, caller *user.User, in NewMessage) (*Message, error) {
	in.Text = strings.TrimSpace(in.Text)
	in.ReceiverID = strings.TrimSpace(in.ReceiverID)
	if err := validate.Struct(&in); err != nil {
		return nil, apperr.Validation("text and receiverId are required")
	}
	if _, err := s.users.Get(ctx, in.ReceiverID); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("recipient not found")
		}
		return nil, fmt.Errorf("loading recipient: %w", err)
	}

	m := &Message{
		ID:         uuid.NewString(),
		SenderID:   caller.ID,
		ReceiverID: in.ReceiverID,
		SenderName: caller.Name,
		Text:       in.Text,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m.CreatedAt = s.clock.Now()
	if err := s.messages.Create(ctx, m.ID, m); err != nil {
		return nil, fmt.Errorf("saving message: %w", err)
	}
	return m, nil
}

// Thread returns every message between caller and otherUserID, oldest first.
func (s *Service) Thread(ctx context.Context, caller *user.User, otherUserID string) ([]*Message, error) {
	all, err := s.sorted(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Message, 0)
	for _, m := range all {
		if m.Between(caller.ID, otherUserID) {
			out = append(out, m)
		}
	}
	return out, nil
}

// MarkThreadRead sets readAt on every unread message otherUserID sent to
// caller and returns how many it marked. A repeated call marks none.
func (s *Service) MarkThreadRead(ctx context.Context, caller *user.User, otherUserID string) (int, error) {
	otherUserID = strings.TrimSpace(otherUserID)
	if otherUserID == "" {
		return 0, apperr.Validation("otherUserId is required")
	}
	all, err := s.messages.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing messages: %w", err)
	}

	now := s.clock.Now()
	marked := 0
	for _, m := range all {
		if m.SenderID != otherUserID || !m.UnreadBy(caller.ID) {
			continue
		}
		_, changed, err := s.messages.Mutate(ctx, m.ID, func(m *Message) (bool, error) {
			if m.ReadAt != nil {
				return false, nil
			}
			m.ReadAt = &now
			return true, nil
		})
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return marked, fmt.Errorf("marking message %s read: %w", m.ID, err)
		}
		if changed {
			marked++
		}
	}
	return marked, nil
}

// Conversations returns one entry per peer caller has exchanged messages
// with, most recently active first. Peers that no longer exist are skipped.
func (s *Service) Conversations(ctx context.Context, caller *user.User) ([]*Conversation, error) {
	all, err := s.sorted(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.Index(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}

	byPeer := make(map[string]*Conversation)
	out := make([]*Conversation, 0)
	for _, m := range all {
		if m.SenderID != caller.ID && m.ReceiverID != caller.ID {
			continue
		}
		peer := m.Peer(caller.ID)
		conv, ok := byPeer[peer]
		if !ok {
			u, found := users[peer]
			if !found {
				continue
			}
			conv = &Conversation{OtherUser: u.Profile()}
			byPeer[peer] = conv
			out = append(out, conv)
		}
		conv.LastMessage = m
		if m.UnreadBy(caller.ID) {
			conv.UnreadCount++
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].LastMessage, out[j].LastMessage
		return cursor.Less(b.CreatedAt, b.ID, a.CreatedAt, a.ID)
	})
	return out, nil
}

// UnreadCount counts unread messages addressed to caller from all peers.
func (s *Service) UnreadCount(ctx context.Context, caller *user.User) (int, error) {
	all, err := s.messages.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing messages: %w", err)
	}
	n := 0
	for _, m := range all {
		if m.UnreadBy(caller.ID) {
			n++
		}
	}
	return n, nil
}

// PollSince returns messages addressed to caller that lie past cur, oldest
// first, each with its sender. Messages from unknown senders are dropped.
func (s *Service) PollSince(ctx context.Context, caller *user.User, cur cursor.Cursor) ([]*Incoming, error) {
	all, err := s.sorted(ctx)
	if err != nil {
		return nil, err
	}
	var fresh []*Message
	for _, m := range all {
		if m.ReceiverID == caller.ID && cur.Admits(m.CreatedAt, m.ID) {
			fresh = append(fresh, m)
		}
	}
	out := make([]*Incoming, 0, len(fresh))
	if len(fresh) == 0 {
		return out, nil
	}

	users, err := s.users.Index(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}
	for _, m := range fresh {
		sender, ok := users[m.SenderID]
		if !ok {
			continue
		}
		out = append(out, &Incoming{Message: m, Sender: sender.Profile()})
	}
	return out, nil
}

func (s *Service) sorted(ctx context.Context) ([]*Message, error) {
	all, err := s.messages.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return cursor.Less(all[i].CreatedAt, all[i].ID, all[j].CreatedAt, all[j].ID)
	})
	return all, nil
}
