package reconcile

import (
	"sync"
	"time"
)

// DefaultQuietPeriod coalesces status-update bursts from one polling cycle
// into a single downstream pass.
const DefaultQuietPeriod = time.Second

// Debouncer fires its callback once per burst, after a quiet period. Each
// Trigger resets the timer rather than queueing, so only the last event in a
// burst schedules the trailing pass. Letting the scheduled pass fire is the
// only cancellation semantics needed.
type Debouncer struct {
	quiet time.Duration
	fn    func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(quiet time.Duration, fn func()) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Debouncer{quiet: quiet, fn: fn}
}

// Trigger schedules (or reschedules) the trailing callback.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, d.fn)
}

// Stop cancels any pending callback and disables the debouncer.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
