package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nhle/todolist/internal/ident"
	"github.com/nhle/todolist/internal/persist"
	"github.com/nhle/todolist/internal/store"
)

// TestKeys are the slot keys used by test adapters.
var TestKeys = persist.Keys{Todos: "test-todos", Tags: "test-tags"}

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a Clock reading start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current reading.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// NewTestAdapter returns an adapter over slot using the JSON codec.
// A nil slot selects a fresh MemorySlot.
func NewTestAdapter(t *testing.T, slot persist.Slot) *persist.Adapter {
	t.Helper()

	if slot == nil {
		slot = persist.NewMemorySlot()
	}
	return persist.NewAdapter(slot, persist.JSONCodec{}, TestKeys, nil)
}

// NewTestStore creates a loaded store backed by repo with deterministic ids
// and search applied without delay. A nil repo selects an in-memory
// adapter. opts are applied after the defaults. The store is closed when
// the test completes.
func NewTestStore(t *testing.T, repo store.Repository, opts ...store.Option) *store.Store {
	t.Helper()

	if repo == nil {
		repo = NewTestAdapter(t, nil)
	}
	defaults := []store.Option{
		store.WithIDGenerator(ident.Sequence("id")),
		store.WithSearchDebounce(0),
	}
	s := store.New(repo, append(defaults, opts...)...)
	s.Load(context.Background())

	t.Cleanup(func() {
		if err := s.Close(context.Background()); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}
