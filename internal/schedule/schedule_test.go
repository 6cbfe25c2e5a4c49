package schedule

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const (
	short   = 20 * time.Millisecond
	waitFor = time.Second
	tick    = 5 * time.Millisecond
)

func TestTaskRunsAfterDelay(t *testing.T) {
	var task Task
	var ran atomic.Bool

	task.Schedule(short, func() { ran.Store(true) })
	assert.True(t, task.Pending())

	assert.Eventually(t, ran.Load, waitFor, tick)
	assert.False(t, task.Pending())
}

func TestTaskRescheduleCancelsPrevious(t *testing.T) {
	var task Task
	var first, second atomic.Int32

	task.Schedule(short, func() { first.Add(1) })
	task.Schedule(short, func() { second.Add(1) })

	assert.Eventually(t, func() bool { return second.Load() == 1 }, waitFor, tick)
	time.Sleep(3 * short)
	assert.Equal(t, int32(0), first.Load())
	assert.Equal(t, int32(1), second.Load())
}

func TestTaskCancel(t *testing.T) {
	var task Task
	var ran atomic.Bool

	task.Schedule(short, func() { ran.Store(true) })
	assert.True(t, task.Cancel())
	assert.False(t, task.Cancel(), "second cancel has nothing pending")

	assert.Never(t, ran.Load, 4*short, tick)
}

func TestDebouncerRunsOnlyLastTrigger(t *testing.T) {
	d := NewDebouncer(short)
	var got atomic.Value

	for _, q := range []string{"m", "mi", "mil", "milk"} {
		d.Trigger(func() { got.Store(q) })
	}
	assert.True(t, d.Pending())

	assert.Eventually(t, func() bool { return got.Load() == "milk" }, waitFor, tick)
	assert.False(t, d.Pending())
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(short)
	var ran atomic.Bool

	d.Trigger(func() { ran.Store(true) })
	d.Cancel()

	assert.Never(t, ran.Load, 4*short, tick)
	assert.False(t, d.Flush())
}

func TestDebouncerFlush(t *testing.T) {
	d := NewDebouncer(time.Hour)
	ran := false

	d.Trigger(func() { ran = true })
	assert.True(t, d.Flush())
	assert.True(t, ran)
	assert.False(t, d.Pending())
}

func TestDebouncerZeroDelayRunsImmediately(t *testing.T) {
	d := NewDebouncer(0)
	ran := false

	d.Trigger(func() { ran = true })
	assert.True(t, ran)
}
