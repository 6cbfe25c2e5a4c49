package notice

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const (
	expiry  = 40 * time.Millisecond
	waitFor = time.Second
	tick    = 5 * time.Millisecond
)

func cleared(c *Channel) func() bool {
	return func() bool {
		_, ok := c.Current()
		return !ok
	}
}

func TestSetThenExpire(t *testing.T) {
	var changes atomic.Int32
	c := New(expiry, func() { changes.Add(1) })

	c.Set("Todo text cannot be empty")
	msg, ok := c.Current()
	assert.True(t, ok)
	assert.Equal(t, "Todo text cannot be empty", msg)

	assert.Eventually(t, cleared(c), waitFor, tick)
	assert.Equal(t, int32(2), changes.Load(), "one change for set, one for expiry")
}

func TestNewerMessageRestartsTimer(t *testing.T) {
	const slow = 200 * time.Millisecond
	c := New(slow, nil)

	c.Set("first")
	time.Sleep(slow / 2)
	c.Set("second")

	// The first timer would have fired by now; the second must still be visible.
	time.Sleep(slow * 3 / 4)
	msg, ok := c.Current()
	assert.True(t, ok)
	assert.Equal(t, "second", msg)

	assert.Eventually(t, cleared(c), waitFor, tick)
}

func TestDismissClearsImmediately(t *testing.T) {
	var changes atomic.Int32
	c := New(time.Hour, func() { changes.Add(1) })

	c.Set("boom")
	c.Dismiss()

	_, ok := c.Current()
	assert.False(t, ok)
	assert.Equal(t, int32(2), changes.Load())

	c.Dismiss()
	assert.Equal(t, int32(2), changes.Load(), "dismissing nothing is not a change")
}

func TestDismissCancelsStaleExpiry(t *testing.T) {
	c := New(expiry, nil)

	c.Set("old")
	c.Dismiss()
	c.Set("new")
	msg, ok := c.Current()
	assert.True(t, ok)
	assert.Equal(t, "new", msg)
}

func TestDefaultExpiry(t *testing.T) {
	assert.Equal(t, DefaultExpiry, New(0, nil).Expiry())
}

func TestConcurrentSetAlwaysExpires(t *testing.T) {
	for round := 0; round < 20; round++ {
		c := New(5*time.Millisecond, nil)

		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for i := 0; i < 25; i++ {
					c.Set(fmt.Sprintf("writer %d message %d", g, i))
				}
			}(g)
		}
		wg.Wait()

		assert.Eventually(t, cleared(c), waitFor, tick, "round %d left a message behind", round)
	}
}
