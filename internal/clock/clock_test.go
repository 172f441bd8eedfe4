package clock

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestRemainingNeverNegative(t *testing.T) {
	if r := Remaining(1_000, 0, 5_000); r != 0 {
		t.Errorf("expected 0, got %d", r)
	}
}

func TestRemainingBeforeElapsed(t *testing.T) {
	if r := Remaining(10_000, 0, 3_000); r != 7_000 {
		t.Errorf("expected 7000, got %d", r)
	}
}

func TestAutoEndOnTimeoutScenario(t *testing.T) {
	// Boundary scenario (f): bank = 1000ms at turn start; after 1000ms
	// of real time the bank reads zero.
	if r := Remaining(1_000, 0, 1_000); r != 0 {
		t.Errorf("expected bank to read 0 at the deadline, got %d", r)
	}
}

func TestRescheduleFiresOnce(t *testing.T) {
	c := New()
	var fired atomic.Int32
	c.Reschedule(10*time.Millisecond, func() { fired.Add(1) })
	c.Reschedule(10*time.Millisecond, func() { fired.Add(1) })
	time.Sleep(50 * time.Millisecond)
	if fired.Load() != 1 {
		t.Errorf("expected exactly 1 fire after rescheduling, got %d", fired.Load())
	}
}

func TestStopCancelsPendingFire(t *testing.T) {
	c := New()
	var fired atomic.Int32
	c.Reschedule(10*time.Millisecond, func() { fired.Add(1) })
	c.Stop()
	time.Sleep(30 * time.Millisecond)
	if fired.Load() != 0 {
		t.Errorf("expected no fire after Stop, got %d", fired.Load())
	}
}
