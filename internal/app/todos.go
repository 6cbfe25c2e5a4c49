package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/todolist/internal/store"
	"github.com/nhle/todolist/internal/ui/todoform"
)

// startCreate opens the todo form for a new todo.
func (m *Model) startCreate() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewTodoCreate
	m.todoFormView.SetTags(m.store.Tags())
	return m.todoFormView.StartCreate()
}

// startEdit opens the todo form for the todo with the given id.
func (m *Model) startEdit(id string) tea.Cmd {
	todo, ok := m.store.Todo(id)
	if !ok {
		return nil
	}
	m.previousView = m.currentView
	m.currentView = ViewTodoEdit
	m.todoFormView.SetTags(m.store.Tags())
	return m.todoFormView.StartEdit(todo)
}

// submitTodo applies a submitted form to the store. Validation failures are
// shown through the store's error channel.
func (m *Model) submitTodo(sub todoform.TodoSubmittedMsg) {
	opts := []store.TodoOption{
		store.WithPriority(sub.Priority),
		store.WithTags(sub.TagIDs...),
	}
	if sub.ID == "" {
		_, _ = m.store.AddTodo(sub.Text, opts...)
		return
	}
	_ = m.store.UpdateTodo(sub.ID, sub.Text, opts...)
}

// openDetail shows the detail pane for the todo with the given id.
func (m *Model) openDetail(id string) {
	todo, ok := m.store.Todo(id)
	if !ok {
		return
	}
	m.detailView.SetTodo(todo, m.store.Tags())
	m.previousView = m.currentView
	m.currentView = ViewDetail
}

// returnView is the view to show after the todo form closes: the detail
// pane when the form was opened from it, otherwise the list.
func (m Model) returnView() ViewState {
	if m.previousView == ViewDetail {
		if _, ok := m.detailView.TodoID(); ok {
			return ViewDetail
		}
	}
	return ViewList
}
