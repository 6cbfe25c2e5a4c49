package store

import (
	"slices"
	"strings"

	"github.com/nhle/todolist/internal/model"
)

// TodoOption sets an optional field on AddTodo or UpdateTodo.
type TodoOption func(*todoFields)

type todoFields struct {
	priority    model.Priority
	hasPriority bool
	tags        []string
	hasTags     bool
}

// WithPriority sets the todo priority.
func WithPriority(p model.Priority) TodoOption {
	return func(f *todoFields) {
		f.priority = p
		f.hasPriority = true
	}
}

// WithTags sets the todo tags. Ids that name no existing tag are ignored.
func WithTags(ids ...string) TodoOption {
	return func(f *todoFields) {
		f.tags = ids
		f.hasTags = true
	}
}

func collectFields(opts []TodoOption) todoFields {
	var f todoFields
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// Todo returns the todo with the given id.
func (s *Store) Todo(id string) (model.Todo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexTodo(id)
	if i < 0 {
		return model.Todo{}, false
	}
	return s.todos[i].Clone(), true
}

// AddTodo prepends a new todo. Empty text and unknown priorities are
// rejected with a *ValidationError.
func (s *Store) AddTodo(text string, opts ...TodoOption) (model.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Todo{}, s.fail(MsgEmptyTodoText)
	}
	f := collectFields(opts)
	if f.hasPriority && !f.priority.Valid() {
		return model.Todo{}, s.fail(MsgInvalidPriority)
	}

	s.errors.Dismiss()

	s.mu.Lock()
	now := s.now()
	todo := model.Todo{
		ID:        s.ids.NewID(),
		Text:      text,
		Priority:  model.DefaultPriority,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if f.hasPriority {
		todo.Priority = f.priority
	}
	if f.hasTags {
		todo.Tags = s.knownTagsLocked(f.tags)
	}

	s.todos = append([]model.Todo{todo}, s.todos...)
	s.saveTodosLocked()
	s.mu.Unlock()

	s.logger.Debug("todo added", "id", todo.ID)
	s.notify()
	return todo.Clone(), nil
}

// ToggleTodo flips the completion state of the todo with the given id.
func (s *Store) ToggleTodo(id string) {
	s.mutateTodo(id, func(t *model.Todo) {
		t.Completed = !t.Completed
	})
}

// UpdateTodo replaces the text of the todo with the given id, and its
// priority and tags when the matching option is passed. Unknown ids are
// ignored once the input has been validated.
func (s *Store) UpdateTodo(id, text string, opts ...TodoOption) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return s.fail(MsgEmptyTodoText)
	}
	f := collectFields(opts)
	if f.hasPriority && !f.priority.Valid() {
		return s.fail(MsgInvalidPriority)
	}

	s.errors.Dismiss()
	s.mutateTodo(id, func(t *model.Todo) {
		t.Text = text
		if f.hasPriority {
			t.Priority = f.priority
		}
		if f.hasTags {
			t.Tags = s.knownTagsLocked(f.tags)
		}
	})
	return nil
}

// DeleteTodo removes the todo with the given id.
func (s *Store) DeleteTodo(id string) {
	s.mu.Lock()
	i := s.indexTodo(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.todos = slices.Delete(slices.Clone(s.todos), i, i+1)
	s.saveTodosLocked()
	s.mu.Unlock()

	s.logger.Debug("todo deleted", "id", id)
	s.notify()
}

// ClearCompleted removes every completed todo.
func (s *Store) ClearCompleted() {
	s.mu.Lock()
	kept := slices.DeleteFunc(slices.Clone(s.todos), func(t model.Todo) bool { return t.Completed })
	removed := len(s.todos) - len(kept)
	if removed == 0 {
		s.mu.Unlock()
		return
	}
	s.todos = kept
	s.saveTodosLocked()
	s.mu.Unlock()

	s.logger.Debug("completed todos cleared", "count", removed)
	s.notify()
}

// mutateTodo replaces the todo with the given id by a modified copy with a
// refreshed UpdatedAt. fn runs with s.mu held.
func (s *Store) mutateTodo(id string, fn func(*model.Todo)) {
	s.mu.Lock()
	i := s.indexTodo(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}

	next := s.todos[i].Clone()
	fn(&next)
	next.UpdatedAt = s.now()
	if next.UpdatedAt.Before(next.CreatedAt) {
		next.UpdatedAt = next.CreatedAt
	}

	todos := slices.Clone(s.todos)
	todos[i] = next
	s.todos = todos
	s.saveTodosLocked()
	s.mu.Unlock()

	s.notify()
}

func (s *Store) indexTodo(id string) int {
	return slices.IndexFunc(s.todos, func(t model.Todo) bool { return t.ID == id })
}

// knownTagsLocked normalizes ids and drops those naming no tag.
func (s *Store) knownTagsLocked(ids []string) []string {
	return slices.DeleteFunc(model.NormalizeTags(ids), func(id string) bool {
		return s.indexTag(id) < 0
	})
}
