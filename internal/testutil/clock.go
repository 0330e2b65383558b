package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/visorhr/visorhr-ui/internal/ports"
)

// StubClock is a manual clock. Timers armed with AfterFunc fire synchronously
// from Advance once their deadline is reached. Safe for concurrent use.
type StubClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*stubTimer
	seq    int
}

var _ ports.Clock = (*StubClock)(nil)

// NewStubClock creates a StubClock set to the given time.
func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock returns a StubClock set to 2024-01-01 12:00:00 UTC.
func FixedClock() *StubClock {
	return NewStubClock(TestTime())
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t without firing timers.
func (c *StubClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *StubClock) AfterFunc(d time.Duration, f func()) ports.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &stubTimer{clock: c, at: c.now.Add(d), f: f, order: c.seq}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by d and runs every timer that came due, in deadline order.
// Callbacks run without the clock lock held so they may arm new timers.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due, pending []*stubTimer
	for _, t := range c.timers {
		if !t.at.After(c.now) {
			due = append(due, t)
		} else {
			pending = append(pending, t)
		}
	}
	c.timers = pending
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].order < due[j].order
		}
		return due[i].at.Before(due[j].at)
	})
	for _, t := range due {
		t.f()
	}
}

// Pending returns the number of armed timers.
func (c *StubClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

type stubTimer struct {
	clock *StubClock
	at    time.Time
	f     func()
	order int
}

func (t *stubTimer) Stop() bool {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, other := range c.timers {
		if other == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return true
		}
	}
	return false
}
