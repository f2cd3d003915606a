// Package clock provides timestamps for record creation.
package clock

import (
	"sync"
	"time"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// Func adapts a plain function to Clock.
type Func func() time.Time

// Now implements Clock.
func (f Func) Now() time.Time { return f() }

// Monotonic hands out strictly increasing UTC timestamps within a process.
// Two calls in the same microsecond (or a wall clock stepping backwards)
// still yield distinct, ordered values, which keeps createdAt usable as a
// poll cursor.
type Monotonic struct {
	mu   sync.Mutex
	last time.Time
	wall func() time.Time
}

// NewMonotonic creates a monotonic clock over the system wall clock.
func NewMonotonic() *Monotonic {
	return &Monotonic{wall: time.Now}
}

// Now returns a timestamp strictly after every previous return value.
func (m *Monotonic) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.wall().UTC().Truncate(time.Microsecond)
	if !now.After(m.last) {
		now = m.last.Add(time.Microsecond)
	}
	m.last = now
	return now
}
