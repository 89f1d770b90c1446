package reconcile

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalescesBurst(t *testing.T) {
	var fires atomic.Int32
	d := NewDebouncer(50*time.Millisecond, func() { fires.Add(1) })
	defer d.Stop()

	// A burst of triggers inside the quiet period fires exactly once.
	for i := 0; i < 10; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(120 * time.Millisecond)
	if got := fires.Load(); got != 1 {
		t.Errorf("Expected 1 fire for a coalesced burst, got %d", got)
	}
}

func TestDebouncerTrailingEdge(t *testing.T) {
	var fires atomic.Int32
	d := NewDebouncer(60*time.Millisecond, func() { fires.Add(1) })
	defer d.Stop()

	d.Trigger()
	time.Sleep(30 * time.Millisecond)
	if fires.Load() != 0 {
		t.Fatal("Fired before quiet period elapsed")
	}

	// The reset trigger pushes the deadline out again.
	d.Trigger()
	time.Sleep(40 * time.Millisecond)
	if fires.Load() != 0 {
		t.Fatal("Timer was not reset by second trigger")
	}

	time.Sleep(50 * time.Millisecond)
	if got := fires.Load(); got != 1 {
		t.Errorf("Expected exactly 1 trailing fire, got %d", got)
	}
}

func TestDebouncerSeparateBursts(t *testing.T) {
	var fires atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func() { fires.Add(1) })
	defer d.Stop()

	d.Trigger()
	time.Sleep(80 * time.Millisecond)
	d.Trigger()
	time.Sleep(80 * time.Millisecond)

	if got := fires.Load(); got != 2 {
		t.Errorf("Expected one fire per burst, got %d", got)
	}
}

func TestDebouncerStop(t *testing.T) {
	var fires atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func() { fires.Add(1) })

	d.Trigger()
	d.Stop()
	time.Sleep(80 * time.Millisecond)

	if fires.Load() != 0 {
		t.Error("Callback fired after Stop")
	}

	// Triggers after Stop are ignored.
	d.Trigger()
	time.Sleep(80 * time.Millisecond)
	if fires.Load() != 0 {
		t.Error("Trigger after Stop scheduled a callback")
	}
}
