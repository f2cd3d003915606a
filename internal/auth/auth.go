// Package auth resolves the caller of an API request to a user, keeps the
// caller's lastSeen fresh, and checks login credentials.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/evcraddock/domaindeck/internal/apperr"
	"github.com/evcraddock/domaindeck/internal/clock"
	"github.com/evcraddock/domaindeck/internal/user"
)

// HeaderUserID carries the caller's user ID on every API request.
const HeaderUserID = "X-User-Id"

// Users is the user lookup the authenticator depends on.
type Users interface {
	Get(ctx context.Context, id string) (*user.User, error)
	Touch(ctx context.Context, id string, at time.Time) (*user.User, error)
	Authenticate(ctx context.Context, email, password string) (*user.User, error)
}

// Authenticator resolves callers from request headers.
type Authenticator struct {
	users     Users
	heartbeat *Heartbeat
	limiter   *rateLimiter
	clock     clock.Clock
}

// New creates an Authenticator. lastSeen is written at most once per
// heartbeat interval per user.
func New(users Users, clk clock.Clock, heartbeatInterval time.Duration, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		users:     users,
		heartbeat: newHeartbeat(users, clk, heartbeatInterval, logger),
		limiter:   newRateLimiter(clk),
		clock:     clk,
	}
}

// Resolve returns the user named by the request's X-User-Id header and
// records a heartbeat for them.
func (a *Authenticator) Resolve(r *http.Request) (*user.User, error) {
	id := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if id == "" {
		return nil, apperr.Auth("missing user ID")
	}
	u, err := a.users.Get(r.Context(), id)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Auth("invalid user")
	}
	if err != nil {
		return nil, err
	}
	a.heartbeat.Beat(r.Context(), u)
	return u, nil
}

// Login checks credentials and stamps lastSeen on success. Repeated
// failures from one remote address are refused for a while.
func (a *Authenticator) Login(ctx context.Context, remoteAddr, email, password string) (*user.User, error) {
	if a.limiter.limited(remoteAddr) {
		return nil, apperr.RateLimit("too many failed login attempts")
	}
	u, err := a.users.Authenticate(ctx, email, password)
	if apperr.Is(err, apperr.KindAuth) {
		a.limiter.recordFailure(remoteAddr)
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	a.limiter.reset(remoteAddr)

	now := a.clock.Now()
	touched, err := a.users.Touch(ctx, u.ID, now)
	if err != nil {
		return nil, err
	}
	a.heartbeat.seen(u.ID, now)
	return touched, nil
}

type ctxKey struct{}

// WithUser returns a copy of ctx carrying u as the caller.
func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFrom returns the caller stored in ctx, if any.
func UserFrom(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*user.User)
	return u, ok && u != nil
}
