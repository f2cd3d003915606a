package comment

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

// Kind is the entity store kind for comments.
const Kind = "comment"

// Service provides comment business logic.
type Service struct {
	comments *store.Collection[Comment]
	clock    clock.Clock

	// mu serializes timestamp assignment with insertion so that insertion
	// order matches createdAt order.
	mu sync.Mutex
}

// NewService creates a comment service.
func NewService(backend store.Backend, clk clock.Clock) *Service {
	return &Service{comments: store.NewCollection[Comment](backend, Kind), clock: clk}
}

// List returns the comments caller may see, optionally limited to one
// project, in insertion order.
func (s *Service) List(ctx context.Context, caller *user.User, projectID string) ([]*Comment, error) {
	all, err := s.comments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	out := make([]*Comment, 0, len(all))
	for _, c := range all {
		if projectID != "" && !c.inProject(projectID) {
			continue
		}
		if Visible(c, caller.ID) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Notifications returns every comment addressed to caller across all
// projects, newest first.
func (s *Service) Notifications(ctx context.Context, caller *user.User) ([]*Comment, error) {
	all, err := s.comments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	out := make([]*Comment, 0, len(all))
	for _, c := range all {
		if Addressed(c, caller.ID) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return cursor.Less(out[j].CreatedAt, out[j].ID, out[i].CreatedAt, out[i].ID)
	})
	return out, nil
}

// NotificationCount counts Notifications. With unreadOnly set, comments
// caller has already read are left out.
func (s *Service) NotificationCount(ctx context.Context, caller *user.User, unreadOnly bool) (int, error) {
	items, err := s.Notifications(ctx, caller)
	if err != nil {
		return 0, err
	}
	if !unreadOnly {
		return len(items), nil
	}
	n := 0
	for _, c := range items {
		if !c.IsReadBy(caller.ID) {
			n++
		}
	}
	return n, nil
}

// Post creates a comment authored by caller. A reply takes its audience and
// project from its parent, whatever the input says.
func (s *Service) Post(ctx context.Context, caller *user.User, in NewComment) (*Comment, error) {
	if !user.CanComment(caller) {
		return nil, apperr.Permission("you do not have permission to comment")
	}
	in.Text = strings.TrimSpace(in.Text)
	if err := validate.Struct(&in); err != nil {
		return nil, apperr.Validation("comment text is required")
	}

	c := &Comment{
		ID:         uuid.NewString(),
		AuthorID:   caller.ID,
		AuthorName: caller.Name,
		Text:       in.Text,
		ProjectID:  nonEmpty(in.ProjectID),
		VisibleTo:  dedupe(in.VisibleTo),
		ReadBy:     []string{caller.ID},
	}

	if parentID := nonEmpty(in.ParentID); parentID != nil {
		parent, err := s.comments.Get(ctx, *parentID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("parent comment not found")
		}
		if err != nil {
			return nil, fmt.Errorf("loading parent comment: %w", err)
		}
		c.ParentID = parentID
		c.ProjectID = parent.ProjectID
		c.VisibleTo = append([]string{}, parent.VisibleTo...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c.CreatedAt = s.clock.Now()
	if err := s.comments.Create(ctx, c.ID, c); err != nil {
		return nil, fmt.Errorf("saving comment: %w", err)
	}
	return c, nil
}

// MarkRead records that caller has read the comment. Marking an already
// read comment changes nothing.
func (s *Service) MarkRead(ctx context.Context, caller *user.User, id string) (*Comment, bool, error) {
	c, changed, err := s.comments.Mutate(ctx, id, func(c *Comment) (bool, error) {
		if c.IsReadBy(caller.ID) {
			return false, nil
		}
		c.ReadBy = append(c.ReadBy, caller.ID)
		return true, nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, apperr.NotFound("comment not found")
	}
	if err != nil {
		return nil, false, err
	}
	return c, changed, nil
}

// PollSince returns the comments caller may see that lie past cur, oldest
// first.
func (s *Service) PollSince(ctx context.Context, caller *user.User, cur cursor.Cursor) ([]*Comment, error) {
	all, err := s.comments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	out := make([]*Comment, 0)
	for _, c := range all {
		if cur.Admits(c.CreatedAt, c.ID) && Visible(c, caller.ID) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return cursor.Less(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return out, nil
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
