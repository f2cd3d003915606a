package auth

import (
	"sync"
	"time"

	"github.com/evcraddock/domaindeck/internal/clock"
)

const (
	rateLimitWindow  = 1 * time.Minute
	rateLimitMaxFail = 10
)

// rateLimiter tracks failed login attempts per remote address.
type rateLimiter struct {
	clock clock.Clock

	mu       sync.Mutex
	attempts map[string][]time.Time
}

func newRateLimiter(clk clock.Clock) *rateLimiter {
	return &rateLimiter{clock: clk, attempts: make(map[string][]time.Time)}
}

// prune drops attempts older than the window. Callers hold mu.
func (rl *rateLimiter) prune(addr string, now time.Time) []time.Time {
	cutoff := now.Add(-rateLimitWindow)
	valid := rl.attempts[addr][:0]
	for _, t := range rl.attempts[addr] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		delete(rl.attempts, addr)
		return nil
	}
	rl.attempts[addr] = valid
	return valid
}

// limited reports whether addr has used up its failures for the window.
func (rl *rateLimiter) limited(addr string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.prune(addr, rl.clock.Now())) >= rateLimitMaxFail
}

func (rl *rateLimiter) recordFailure(addr string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.clock.Now()
	rl.attempts[addr] = append(rl.prune(addr, now), now)
}

func (rl *rateLimiter) reset(addr string) {
	rl.mu.Lock()
	delete(rl.attempts, addr)
	rl.mu.Unlock()
}
