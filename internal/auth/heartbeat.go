package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/evcraddock/domaindeck/internal/clock"
	"github.com/evcraddock/domaindeck/internal/user"
)

type toucher interface {
	Touch(ctx context.Context, id string, at time.Time) (*user.User, error)
}

// Heartbeat patches a user's lastSeen, throttled per user.
type Heartbeat struct {
	users    toucher
	clock    clock.Clock
	interval time.Duration
	logger   *slog.Logger

	mu   sync.Mutex
	last map[string]time.Time
}

func newHeartbeat(users toucher, clk clock.Clock, interval time.Duration, logger *slog.Logger) *Heartbeat {
	if logger == nil {
		logger = slog.Default()
	}
	return &Heartbeat{
		users:    users,
		clock:    clk,
		interval: interval,
		logger:   logger,
		last:     make(map[string]time.Time),
	}
}

// Beat records u as seen now unless it was recorded within the interval.
// Failures are logged and never reach the caller.
func (h *Heartbeat) Beat(ctx context.Context, u *user.User) {
	now := h.clock.Now()
	if !h.due(u, now) {
		return
	}
	if _, err := h.users.Touch(ctx, u.ID, now); err != nil {
		h.logger.Warn("updating lastSeen", "user_id", u.ID, "error", err)
		h.forget(u.ID)
		return
	}
}

func (h *Heartbeat) due(u *user.User, now time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	last, ok := h.last[u.ID]
	if !ok && u.LastSeen != nil {
		last, ok = *u.LastSeen, true
	}
	if ok && now.Sub(last) < h.interval {
		return false
	}
	h.last[u.ID] = now
	return true
}

func (h *Heartbeat) seen(id string, at time.Time) {
	h.mu.Lock()
	h.last[id] = at
	h.mu.Unlock()
}

func (h *Heartbeat) forget(id string) {
	h.mu.Lock()
	delete(h.last, id)
	h.mu.Unlock()
}
