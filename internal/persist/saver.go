package persist

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nhle/todolist/internal/model"
)

// DefaultSaveTimeout bounds a single background write.
const DefaultSaveTimeout = 5 * time.Second

// ErrSaverClosed is returned by Flush after Close.
var ErrSaverClosed = errors.New("saver closed")

// Persister writes whole collections. *Adapter implements it.
type Persister interface {
	SaveTodos(ctx context.Context, todos []model.Todo) error
	SaveTags(ctx context.Context, tags []model.Tag) error
}

// Saver writes snapshots on a background goroutine so callers never wait on
// storage. Snapshots queued for the same collection before the worker picks
// them up are coalesced; only the latest is written.
type Saver struct {
	persister Persister
	onError   func(Kind, error)
	logger    *log.Logger
	timeout   time.Duration

	kick     chan struct{}
	stop     chan struct{}
	finished chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	todos    []model.Todo
	tags     []model.Tag
	hasTodos bool
	hasTags  bool
	queued   uint64
	written  uint64
	waiters  []waiter
	closed   bool
}

type waiter struct {
	target uint64
	done   chan struct{}
}

// NewSaver starts a Saver writing through p. onError, if non-nil, is called
// from the worker goroutine for every failed write.
func NewSaver(p Persister, onError func(Kind, error), logger *log.Logger) *Saver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Saver{
		persister: p,
		onError:   onError,
		logger:    logger.WithPrefix("saver"),
		timeout:   DefaultSaveTimeout,
		kick:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
		finished:  make(chan struct{}),
	}
	go s.run()
	return s
}

// SaveTodos queues todos for writing and returns immediately.
func (s *Saver) SaveTodos(todos []model.Todo) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Warn("dropping todos snapshot after close")
		return
	}
	s.todos = slices.Clone(todos)
	s.hasTodos = true
	s.queued++
	s.mu.Unlock()

	s.wake()
}

// SaveTags queues tags for writing and returns immediately.
func (s *Saver) SaveTags(tags []model.Tag) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Warn("dropping tags snapshot after close")
		return
	}
	s.tags = slices.Clone(tags)
	s.hasTags = true
	s.queued++
	s.mu.Unlock()

	s.wake()
}

// Flush blocks until every snapshot queued before the call has been written
// or ctx is done.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.written >= s.queued {
		s.mu.Unlock()
		return nil
	}
	if s.closed {
		s.mu.Unlock()
		return ErrSaverClosed
	}
	w := waiter{target: s.queued, done: make(chan struct{})}
	s.waiters = append(s.waiters, w)
	s.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes any queued snapshots and stops the worker.
func (s *Saver) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.stopOnce.Do(func() { close(s.stop) })

	select {
	case <-s.finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Saver) wake() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *Saver) run() {
	defer close(s.finished)
	for {
		select {
		case <-s.kick:
			s.drain()
		case <-s.stop:
			s.drain()
			s.release(true)
			return
		}
	}
}

// drain writes pending snapshots until none remain.
func (s *Saver) drain() {
	for {
		s.mu.Lock()
		if !s.hasTodos && !s.hasTags {
			s.mu.Unlock()
			return
		}
		todos, writeTodos := s.todos, s.hasTodos
		tags, writeTags := s.tags, s.hasTags
		target := s.queued
		s.todos, s.hasTodos = nil, false
		s.tags, s.hasTags = nil, false
		s.mu.Unlock()

		if writeTodos {
			s.write(KindTodos, func(ctx context.Context) error {
				return s.persister.SaveTodos(ctx, todos)
			})
		}
		if writeTags {
			s.write(KindTags, func(ctx context.Context) error {
				return s.persister.SaveTags(ctx, tags)
			})
		}

		s.mu.Lock()
		s.written = target
		s.mu.Unlock()
		s.release(false)
	}
}

func (s *Saver) write(kind Kind, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		s.logger.Error("background save failed", "kind", kind, "err", err)
		if s.onError != nil {
			s.onError(kind, err)
		}
	}
}

// release wakes waiters whose snapshots have been written. When all is set
// every waiter is released.
func (s *Saver) release(all bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.waiters[:0]
	for _, w := range s.waiters {
		if all || w.target <= s.written {
			close(w.done)
			continue
		}
		kept = append(kept, w)
	}
	s.waiters = kept
}
