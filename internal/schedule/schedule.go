// Package schedule provides cancellable delayed actions.
package schedule

import (
	"sync"
	"time"
)

// Task runs at most one pending action after a delay. Scheduling a new
// action cancels the previous one; an action that was superseded or
// cancelled never runs, even if its timer had already fired.
//
// The zero value is ready to use. A Task must not be copied after first use.
type Task struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// Schedule cancels any pending action and arranges for fn to run on its own
// goroutine once delay has elapsed.
func (t *Task) Schedule(delay time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(delay, func() {
		t.mu.Lock()
		if t.gen != gen {
			t.mu.Unlock()
			return
		}
		t.timer = nil
		t.mu.Unlock()
		fn()
	})
}

// Cancel stops the pending action. It reports whether one was pending.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	pending := t.timer != nil
	t.stopLocked()
	t.gen++
	return pending
}

// Pending reports whether an action is scheduled and has not started.
func (t *Task) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

func (t *Task) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
