package clock

import (
	"sync"
	"testing"
	"time"
)

func TestMonotonicStrictlyIncreasing(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m := &Monotonic{wall: func() time.Time { return fixed }}

	prev := m.Now()
	for i := 0; i < 100; i++ {
		next := m.Now()
		if !next.After(prev) {
			t.Fatalf("call %d: %v is not after %v", i, next, prev)
		}
		prev = next
	}
}

func TestMonotonicWallClockStepsBack(t *testing.T) {
	times := []time.Time{
		time.Date(2025, 3, 1, 12, 0, 1, 0, time.UTC),
		time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	i := 0
	m := &Monotonic{wall: func() time.Time {
		ts := times[i]
		i++
		return ts
	}}

	first := m.Now()
	second := m.Now()
	if !second.After(first) {
		t.Errorf("second = %v, want after %v", second, first)
	}
}

func TestMonotonicConcurrent(t *testing.T) {
	m := NewMonotonic()
	var mu sync.Mutex
	seen := make(map[time.Time]bool)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				ts := m.Now()
				mu.Lock()
				if seen[ts] {
					t.Errorf("duplicate timestamp %v", ts)
				}
				seen[ts] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}

func TestMonotonicReturnsUTC(t *testing.T) {
	if loc := NewMonotonic().Now().Location(); loc != time.UTC {
		t.Errorf("location = %v, want UTC", loc)
	}
}
