// Package clock implements Palmietopia's per-session chess clock: a
// single reschedulable wake-up for the active player's zero-time
// deadline.
package clock

import (
	"sync"
	"time"
)

// Clock owns at most one pending timer. Rescheduling cancels any timer
// already armed before arming the new one, so a session never
// accumulates stale wake-ups across turn changes.
type Clock struct {
	mu    sync.Mutex
	timer *time.Timer
}

// New returns an unarmed Clock.
func New() *Clock {
	return &Clock{}
}

// Reschedule cancels any pending wake-up and arms a new one to fire
// after d, calling fire exactly once unless canceled first by a later
// Reschedule or Stop. fire is called on its own goroutine (as
// time.AfterFunc does) and must not block.
func (c *Clock) Reschedule(d time.Duration, fire func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
	if d <= 0 {
		d = 0
	}
	c.timer = time.AfterFunc(d, fire)
}

// Stop cancels any pending wake-up without arming a new one.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Remaining is the pure query behind every clock display: the active
// player's effective remaining time is their bank minus elapsed
// wall-clock time since their turn began. It never goes negative.
func Remaining(bankMs, turnStartedAtMs, nowMs int64) int64 {
	elapsed := nowMs - turnStartedAtMs
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := bankMs - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// DeadlineFor returns the duration until bankMs would reach zero,
// given the turn began at turnStartedAtMs and now reads nowMs.
func DeadlineFor(bankMs, turnStartedAtMs, nowMs int64) time.Duration {
	remaining := Remaining(bankMs, turnStartedAtMs, nowMs)
	return time.Duration(remaining) * time.Millisecond
}
