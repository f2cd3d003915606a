// Package poll keeps client state in step with the server by polling the
// comment and message delta endpoints.
package poll

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/evcraddock/domaindeck/internal/cursor"
)

// State is the lifecycle position of a Stream.
type State int

const (
	Uninitialized State = iota
	Idle
	Polling
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Polling:
		return "polling"
	default:
		return "uninitialized"
	}
}

// FetchFunc returns the items created after cur.
type FetchFunc[T any] func(ctx context.Context, cur cursor.Cursor) ([]T, error)

// KeyFunc returns the (createdAt, id) position of an item.
type KeyFunc[T any] func(item T) (time.Time, string)

// Stream tracks the cursor of one delta endpoint.
type Stream[T any] struct {
	name   string
	fetch  FetchFunc[T]
	key    KeyFunc[T]
	logger *slog.Logger

	mu    sync.Mutex
	state State
	cur   cursor.Cursor
	gen   uint64
}

// NewStream creates an uninitialized stream.
func NewStream[T any](name string, fetch FetchFunc[T], key KeyFunc[T], logger *slog.Logger) *Stream[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stream[T]{name: name, fetch: fetch, key: key, logger: logger}
}

// Name returns the stream name used in logs.
func (s *Stream[T]) Name() string {
	return s.name
}

// Init places the cursor at now so existing history is not reported as new.
func (s *Stream[T]) Init(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = cursor.At(now)
	s.state = Idle
	s.gen++
}

// Reset returns the stream to Uninitialized.
func (s *Stream[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = cursor.Cursor{}
	s.state = Uninitialized
	s.gen++
}

// State returns the current state.
func (s *Stream[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cursor returns the current cursor.
func (s *Stream[T]) Cursor() cursor.Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Poll fetches one delta. The cursor moves to the newest returned item and
// stays put on an empty result or an error. Polling an uninitialized or
// already polling stream is a no-op.
func (s *Stream[T]) Poll(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		return nil, nil
	}
	s.state = Polling
	cur, gen := s.cur, s.gen
	s.mu.Unlock()

	items, err := s.fetch(ctx, cur)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// Reset or re-initialized while the request was in flight.
		return nil, nil
	}
	s.state = Idle
	if err != nil {
		s.logger.Warn("poll failed", "stream", s.name, "cursor", cur.String(), "error", err)
		return nil, err
	}

	next := s.cur
	for _, item := range items {
		at, id := s.key(item)
		next = next.Advance(at, id)
	}
	s.cur = next
	if len(items) > 0 {
		s.logger.Debug("poll delta", "stream", s.name, "items", len(items), "cursor", next.String())
	}
	return items, nil
}
