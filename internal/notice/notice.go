// Package notice holds the single user-facing error message of the
// application and clears it automatically after a fixed delay.
package notice

import (
	"sync"
	"time"

	"github.com/nhle/todolist/internal/schedule"
)

// DefaultExpiry is how long a message stays visible when no expiry is given.
const DefaultExpiry = 3 * time.Second

// Channel holds zero or one message. Setting a message restarts the expiry
// timer; a newer message always survives the expiry of an older one.
type Channel struct {
	expiry   time.Duration
	onChange func()
	timer    schedule.Task

	mu  sync.Mutex
	msg string
	set bool
	seq uint64
}

// New creates a Channel. onChange, if non-nil, is called after every change,
// including automatic expiry, and must not block.
func New(expiry time.Duration, onChange func()) *Channel {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Channel{expiry: expiry, onChange: onChange}
}

// Set replaces the current message and restarts the expiry timer.
func (c *Channel) Set(msg string) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.msg = msg
	c.set = true
	// Scheduled under c.mu so timers are armed in seq order. The task
	// releases its own lock before calling expire.
	c.timer.Schedule(c.expiry, func() { c.expire(seq) })
	c.mu.Unlock()

	c.changed()
}

// Dismiss clears the current message and cancels its timer.
func (c *Channel) Dismiss() {
	c.mu.Lock()
	c.timer.Cancel()
	had := c.set
	c.seq++
	c.msg = ""
	c.set = false
	c.mu.Unlock()

	if had {
		c.changed()
	}
}

// Current returns the current message, if any.
func (c *Channel) Current() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.msg, c.set
}

// Expiry returns the configured visibility period.
func (c *Channel) Expiry() time.Duration {
	return c.expiry
}

func (c *Channel) expire(seq uint64) {
	c.mu.Lock()
	if seq != c.seq || !c.set {
		c.mu.Unlock()
		return
	}
	c.msg = ""
	c.set = false
	c.mu.Unlock()

	c.changed()
}

func (c *Channel) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}
