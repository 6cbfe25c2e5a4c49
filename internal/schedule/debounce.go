package schedule

import (
	"sync"
	"time"
)

// Debouncer delays an action until no new trigger has arrived for a quiet
// period. Only the most recently triggered action runs.
type Debouncer struct {
	delay time.Duration
	task  Task

	mu      sync.Mutex
	seq     uint64
	pending func()
}

// NewDebouncer returns a Debouncer with the given quiet period.
// A non-positive delay runs actions synchronously on Trigger.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger replaces the pending action with fn and restarts the quiet period.
func (d *Debouncer) Trigger(fn func()) {
	if d.delay <= 0 {
		d.Cancel()
		fn()
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq
	d.pending = fn
	d.task.Schedule(d.delay, func() { d.run(seq) })
}

// Flush cancels the timer and runs the pending action immediately.
// It reports whether an action ran.
func (d *Debouncer) Flush() bool {
	d.task.Cancel()

	d.mu.Lock()
	fn := d.pending
	d.pending = nil
	d.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Cancel drops the pending action without running it.
func (d *Debouncer) Cancel() {
	d.task.Cancel()
	d.mu.Lock()
	d.pending = nil
	d.mu.Unlock()
}

// Pending reports whether an action is waiting for the quiet period to end.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) run(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.mu.Unlock()

	fn()
}
