// Package store owns the todo and tag collections, derives the visible
// subset and statistics from them, and persists every change in the
// background.
package store

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nhle/todolist/internal/ident"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/notice"
	"github.com/nhle/todolist/internal/persist"
	"github.com/nhle/todolist/internal/query"
	"github.com/nhle/todolist/internal/schedule"
)

// DefaultSearchDebounce is the quiet period before typed search input is
// applied to the visible list.
const DefaultSearchDebounce = 300 * time.Millisecond

// Repository loads and saves whole collections. *persist.Adapter
// implements it.
type Repository interface {
	persist.Persister
	LoadTodos(ctx context.Context) ([]model.Todo, error)
	LoadTags(ctx context.Context) ([]model.Tag, error)
}

// Snapshot is a consistent copy of the state exposed to views.
type Snapshot struct {
	Visible       []model.Todo
	Todos         []model.Todo
	Tags          []model.Tag
	Filter        model.Filter
	SearchQuery   string
	SearchInput   string
	SearchEnabled bool
	Loading       bool
	Error         string
	HasError      bool
	Stats         model.Stats
}

// Store is the single owner of application state. All methods are safe for
// concurrent use.
type Store struct {
	repo   Repository
	saver  *persist.Saver
	logger *log.Logger
	clock  func() time.Time
	ids    ident.Generator

	errorExpiry    time.Duration
	searchDebounce time.Duration
	searchEnabled  bool

	errors *notice.Channel
	search *schedule.Debouncer
	change chan struct{}

	mu          sync.Mutex
	todos       []model.Todo
	tags        []model.Tag
	filter      model.Filter
	searchQuery string
	searchInput string
	searchGen   uint64
	loading     bool
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithIDGenerator replaces the identifier generator.
func WithIDGenerator(g ident.Generator) Option {
	return func(s *Store) { s.ids = g }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithErrorExpiry sets how long an error message stays visible.
func WithErrorExpiry(d time.Duration) Option {
	return func(s *Store) { s.errorExpiry = d }
}

// WithSearchDebounce sets the search input quiet period. Zero applies input
// immediately.
func WithSearchDebounce(d time.Duration) Option {
	return func(s *Store) { s.searchDebounce = d }
}

// WithSearchEnabled turns text search on or off. When off the search query
// is kept but ignored by VisibleTodos.
func WithSearchEnabled(enabled bool) Option {
	return func(s *Store) { s.searchEnabled = enabled }
}

// New returns a Store in the loading state. Call Load to rehydrate it.
func New(repo Repository, opts ...Option) *Store {
	s := &Store{
		repo:           repo,
		clock:          time.Now,
		ids:            ident.UUID(),
		errorExpiry:    notice.DefaultExpiry,
		searchDebounce: DefaultSearchDebounce,
		searchEnabled:  true,
		change:         make(chan struct{}, 1),
		todos:          []model.Todo{},
		tags:           []model.Tag{},
		filter:         model.FilterAll,
		loading:        true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	s.logger = s.logger.WithPrefix("store")

	s.errors = notice.New(s.errorExpiry, s.notify)
	s.search = schedule.NewDebouncer(s.searchDebounce)
	s.saver = persist.NewSaver(repo, s.onSaveError, s.logger)
	return s
}

// Load rehydrates both collections from the repository. Unreadable
// snapshots are replaced by empty collections and reported as soft errors.
// Load replaces anything changed before it ran; later calls are no-ops.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	if !s.loading {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	todos, todoErr := s.repo.LoadTodos(ctx)
	if todoErr != nil {
		s.logger.Error("loading todos", "err", todoErr)
	}
	tags, tagErr := s.repo.LoadTags(ctx)
	if tagErr != nil {
		s.logger.Error("loading tags", "err", tagErr)
	}

	// Drop references to tags that no longer exist. Skipped when the tag
	// snapshot itself is unreadable so a later repair can restore them.
	if tagErr == nil {
		known := make(map[string]bool, len(tags))
		for _, tag := range tags {
			known[tag.ID] = true
		}
		for i, t := range todos {
			kept := slices.DeleteFunc(slices.Clone(t.Tags), func(id string) bool { return !known[id] })
			if len(kept) != len(t.Tags) {
				s.logger.Warn("dropping unknown tag references", "todo", t.ID, "count", len(t.Tags)-len(kept))
				todos[i].Tags = kept
			}
		}
	}

	s.mu.Lock()
	s.todos = todos
	s.tags = tags
	s.loading = false
	s.mu.Unlock()

	s.logger.Info("state loaded", "todos", len(todos), "tags", len(tags))

	switch {
	case todoErr != nil:
		s.errors.Set(MsgLoadTodos)
	case tagErr != nil:
		s.errors.Set(MsgLoadTags)
	default:
		s.notify()
	}
}

// Close cancels pending timers and waits for queued saves to finish.
func (s *Store) Close(ctx context.Context) error {
	s.search.Cancel()
	s.errors.Dismiss()
	return s.saver.Close(ctx)
}

// Flush waits until every change made so far has been written.
func (s *Store) Flush(ctx context.Context) error {
	return s.saver.Flush(ctx)
}

// Changes returns a channel that receives a value after state changes.
// Notifications are coalesced; receivers should re-read State.
func (s *Store) Changes() <-chan struct{} {
	return s.change
}

// State returns a copy of the current state.
func (s *Store) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, hasErr := s.errors.Current()
	return Snapshot{
		Visible:       s.visibleLocked(),
		Todos:         cloneTodos(s.todos),
		Tags:          slices.Clone(s.tags),
		Filter:        s.filter,
		SearchQuery:   s.searchQuery,
		SearchInput:   s.searchInput,
		SearchEnabled: s.searchEnabled,
		Loading:       s.loading,
		Error:         msg,
		HasError:      hasErr,
		Stats:         model.ComputeStats(s.todos),
	}
}

// Loading reports whether the initial load has not completed.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Todos returns every todo, newest first.
func (s *Store) Todos() []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTodos(s.todos)
}

// VisibleTodos returns the todos passing the current filter and search.
func (s *Store) VisibleTodos() []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibleLocked()
}

// Stats returns statistics over every todo.
func (s *Store) Stats() model.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.ComputeStats(s.todos)
}

// Error returns the current error message, if any.
func (s *Store) Error() (string, bool) {
	return s.errors.Current()
}

// ReportError shows msg on the error channel.
func (s *Store) ReportError(msg string) {
	s.errors.Set(msg)
}

// DismissError clears the current error message.
func (s *Store) DismissError() {
	s.errors.Dismiss()
}

// Filter returns the current status filter.
func (s *Store) Filter() model.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SetFilter changes the status filter.
func (s *Store) SetFilter(f model.Filter) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
	s.notify()
}

// SetSearchEnabled switches search on or off. The query is kept while
// search is off and applies again once it is switched back on.
func (s *Store) SetSearchEnabled(enabled bool) {
	s.mu.Lock()
	s.searchEnabled = enabled
	s.mu.Unlock()
	s.notify()
}

// SearchQuery returns the query applied to the visible list.
func (s *Store) SearchQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchQuery
}

// SetSearchQuery applies q immediately, replacing any pending input.
func (s *Store) SetSearchQuery(q string) {
	s.search.Cancel()
	s.applySearch(q)
}

// SetSearchInput records raw typed input and applies it after the debounce
// period. Each call restarts the period.
func (s *Store) SetSearchInput(raw string) {
	s.mu.Lock()
	s.searchInput = raw
	s.searchGen++
	gen := s.searchGen
	s.mu.Unlock()
	s.notify()

	s.search.Trigger(func() { s.applyDebounced(gen, raw) })
}

// ClearSearch drops pending input and clears the query.
func (s *Store) ClearSearch() {
	s.search.Cancel()
	s.applySearch("")
}

// applyDebounced applies raw unless newer input, SetSearchQuery or
// ClearSearch happened after it was scheduled.
func (s *Store) applyDebounced(gen uint64, raw string) {
	s.mu.Lock()
	if gen != s.searchGen {
		s.mu.Unlock()
		return
	}
	s.searchQuery = raw
	s.mu.Unlock()
	s.notify()
}

func (s *Store) applySearch(q string) {
	s.mu.Lock()
	s.searchGen++
	s.searchQuery = q
	s.searchInput = q
	s.mu.Unlock()
	s.notify()
}

func (s *Store) visibleLocked() []model.Todo {
	search := s.searchQuery
	if !s.searchEnabled {
		search = ""
	}
	return query.Visible(s.todos, s.filter, search)
}

// now returns the current time in UTC.
func (s *Store) now() time.Time {
	return s.clock().UTC()
}

// fail publishes msg and returns it as a ValidationError.
func (s *Store) fail(msg string) error {
	s.errors.Set(msg)
	return &ValidationError{Message: msg}
}

func (s *Store) saveTodosLocked() {
	if s.loading {
		return
	}
	s.saver.SaveTodos(s.todos)
}

func (s *Store) saveTagsLocked() {
	if s.loading {
		return
	}
	s.saver.SaveTags(s.tags)
}

func (s *Store) onSaveError(kind persist.Kind, err error) {
	s.logger.Error("saving snapshot", "kind", kind, "err", err)
	s.errors.Set(saveMessage(kind))
}

func (s *Store) notify() {
	select {
	case s.change <- struct{}{}:
	default:
	}
}

func cloneTodos(todos []model.Todo) []model.Todo {
	out := make([]model.Todo, len(todos))
	for i, t := range todos {
		out[i] = t.Clone()
	}
	return out
}
