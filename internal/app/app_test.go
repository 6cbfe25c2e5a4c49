package app

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/persist"
	"github.com/nhle/todolist/internal/store"
	"github.com/nhle/todolist/internal/ui/command"
	"github.com/nhle/todolist/internal/ui/detail"
	"github.com/nhle/todolist/internal/ui/settings"
	"github.com/nhle/todolist/internal/ui/tagmgr"
	"github.com/nhle/todolist/internal/ui/todoform"
	"github.com/nhle/todolist/internal/ui/todolist"
	"github.com/nhle/todolist/tests/testutil"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func newApp(t *testing.T) (Model, *store.Store) {
	t.Helper()
	s := testutil.NewTestStore(t, nil)
	m := New(s)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, s
}

func TestViewBeforeResize(t *testing.T) {
	s := testutil.NewTestStore(t, nil)
	assert.Equal(t, "Loading...", New(s).View())
}

func TestViewShowsStats(t *testing.T) {
	m, s := newApp(t)
	_, err := s.AddTodo("one")
	require.NoError(t, err)

	m, _ = send(t, m, stateChangedMsg{})
	assert.Contains(t, m.View(), "Total: 1 todos | Completed: 0 | Active: 1")
}

func TestStatsLine(t *testing.T) {
	stats := model.ComputeStats([]model.Todo{
		{ID: "a", Text: "a", Priority: model.PriorityHigh},
		{ID: "b", Text: "b", Priority: model.PriorityHigh, Completed: true},
	})
	assert.Equal(t, "Total: 2 todos | Completed: 1 | Active: 1 | High 2", StatsLine(stats))
	assert.Equal(t, "Total: 0 todos | Completed: 0 | Active: 0", StatsLine(model.ComputeStats(nil)))
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		m, _ := newApp(t)
		_, cmd := send(t, m, k)
		require.NotNil(t, cmd)
		assert.Equal(t, tea.QuitMsg{}, cmd())
	}
}

func TestHelpToggles(t *testing.T) {
	m, _ := newApp(t)

	m, _ = send(t, m, runes("?"))
	assert.Equal(t, ViewHelp, m.CurrentView())

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewList, m.CurrentView())
}

func TestCreateTodoThroughForm(t *testing.T) {
	m, s := newApp(t)

	m, _ = send(t, m, runes("n"))
	assert.Equal(t, ViewTodoCreate, m.CurrentView())

	m, _ = send(t, m, todoform.TodoSubmittedMsg{Text: "Write tests", Priority: model.PriorityHigh})
	assert.Equal(t, ViewList, m.CurrentView())

	todos := s.Todos()
	require.Len(t, todos, 1)
	assert.Equal(t, "Write tests", todos[0].Text)
	assert.Equal(t, model.PriorityHigh, todos[0].Priority)
	assert.Equal(t, 1, m.state.Stats.Total)
}

func TestCreateTodoRejectsBlankText(t *testing.T) {
	m, s := newApp(t)

	m, _ = send(t, m, todoform.TodoSubmittedMsg{Text: "   "})
	assert.Empty(t, s.Todos())
	assert.True(t, m.state.HasError)
	assert.Equal(t, store.MsgEmptyTodoText, m.state.Error)
	assert.Contains(t, m.View(), store.MsgEmptyTodoText)
}

func TestEditTodoThroughForm(t *testing.T) {
	m, s := newApp(t)
	tag, err := s.AddTag("work", "")
	require.NoError(t, err)
	todo, err := s.AddTodo("draft")
	require.NoError(t, err)
	m, _ = send(t, m, stateChangedMsg{})

	m, cmd := send(t, m, runes("e"))
	require.NotNil(t, cmd)
	assert.Equal(t, todolist.EditTodoMsg{TodoID: todo.ID}, cmd())

	m, _ = send(t, m, cmd())
	assert.Equal(t, ViewTodoEdit, m.CurrentView())

	m, _ = send(t, m, todoform.TodoSubmittedMsg{
		ID:       todo.ID,
		Text:     "final",
		Priority: model.PriorityUrgent,
		TagIDs:   []string{tag.ID},
	})
	assert.Equal(t, ViewList, m.CurrentView())

	got, ok := s.Todo(todo.ID)
	require.True(t, ok)
	assert.Equal(t, "final", got.Text)
	assert.Equal(t, model.PriorityUrgent, got.Priority)
	assert.Equal(t, []string{tag.ID}, got.Tags)
}

func TestEditUnknownTodoStaysOnList(t *testing.T) {
	m, _ := newApp(t)
	m, cmd := send(t, m, todolist.EditTodoMsg{TodoID: "missing"})
	assert.Nil(t, cmd)
	assert.Equal(t, ViewList, m.CurrentView())
}

func TestFormCancel(t *testing.T) {
	m, s := newApp(t)
	m, _ = send(t, m, runes("n"))
	m, _ = send(t, m, todoform.TodoFormCancelMsg{})
	assert.Equal(t, ViewList, m.CurrentView())
	assert.Empty(t, s.Todos())
}

func TestToggleFromList(t *testing.T) {
	m, s := newApp(t)
	todo, err := s.AddTodo("one")
	require.NoError(t, err)
	m, _ = send(t, m, stateChangedMsg{})

	m, _ = send(t, m, runes("x"))
	got, _ := s.Todo(todo.ID)
	assert.True(t, got.Completed)
	assert.Equal(t, 1, m.state.Stats.Completed)
}

func TestCommands(t *testing.T) {
	m, s := newApp(t)
	a, _ := s.AddTodo("a")
	_, _ = s.AddTodo("b")
	s.ToggleTodo(a.ID)

	m, _ = send(t, m, runes(":"))
	assert.Equal(t, ViewCommand, m.CurrentView())

	m, _ = send(t, m, command.CommandMsg{Command: command.Command{Kind: command.SetFilter, Filter: model.FilterActive}})
	assert.Equal(t, ViewList, m.CurrentView())
	assert.Equal(t, model.FilterActive, s.Filter())

	m, _ = send(t, m, command.CommandMsg{Command: command.Command{Kind: command.ClearCompleted}})
	assert.Len(t, s.Todos(), 1)

	m, _ = send(t, m, command.CommandMsg{Command: command.Command{Kind: command.Search, Query: "b"}})
	assert.Equal(t, "b", s.SearchQuery())
	assert.Equal(t, "b", m.state.SearchQuery)

	m, _ = send(t, m, command.CommandMsg{Command: command.Command{Kind: command.ClearSearch}})
	assert.Empty(t, s.SearchQuery())

	m, _ = send(t, m, command.CommandMsg{Command: command.Command{Kind: command.ManageTags}})
	assert.Equal(t, ViewTagList, m.CurrentView())

	m, _ = send(t, m, tagmgr.TagListCloseMsg{})
	assert.Equal(t, ViewList, m.CurrentView())

	m, _ = send(t, m, command.CommandMsg{Command: command.Command{Kind: command.NewTodo}})
	assert.Equal(t, ViewTodoCreate, m.CurrentView())

	_, cmd := send(t, m, command.CommandMsg{Command: command.Command{Kind: command.Quit}})
	require.NotNil(t, cmd)
}

func TestPriorityCommandUpdatesSelectedTodo(t *testing.T) {
	m, s := newApp(t)
	setPriority := command.CommandMsg{Command: command.Command{Kind: command.SetPriority, Priority: model.PriorityUrgent}}

	m, _ = send(t, m, setPriority)
	msg, ok := s.Error()
	assert.True(t, ok)
	assert.Equal(t, msgNoSelection, msg)

	todo, err := s.AddTodo("file taxes")
	require.NoError(t, err)
	m, _ = send(t, m, stateChangedMsg{})

	m, _ = send(t, m, setPriority)
	got, _ := s.Todo(todo.ID)
	assert.Equal(t, model.PriorityUrgent, got.Priority)
	assert.Equal(t, "file taxes", got.Text)
	assert.Equal(t, 1, m.state.Stats.PriorityCounts[model.PriorityUrgent])
	_, ok = s.Error()
	assert.False(t, ok)
}

func TestCommandErrorIsReported(t *testing.T) {
	m, s := newApp(t)
	_, err := command.Parse("frobnicate")
	require.Error(t, err)

	m, _ = send(t, m, command.CommandErrorMsg{Err: err})
	msg, ok := s.Error()
	assert.True(t, ok)
	assert.Equal(t, err.Error(), msg)

	// esc dismisses the error before touching the search.
	s.SetSearchQuery("keep")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	_, ok = s.Error()
	assert.False(t, ok)
	assert.Equal(t, "keep", s.SearchQuery())

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, s.SearchQuery())
	assert.False(t, m.state.HasError)
}

func TestSearchCapturesGlobalKeys(t *testing.T) {
	m, s := newApp(t)

	m, _ = send(t, m, runes("/"))
	m, _ = send(t, m, runes("q"))
	assert.True(t, m.todoList.Searching())
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "q", s.SearchQuery())
	assert.Equal(t, ViewList, m.CurrentView())
}

func TestInitWaitsForChanges(t *testing.T) {
	m, s := newApp(t)
	cmd := m.Init()
	require.NotNil(t, cmd)

	s.SetFilter(model.FilterCompleted)
	assert.Equal(t, stateChangedMsg{}, cmd())
}

func TestDetailView(t *testing.T) {
	m, s := newApp(t)
	todo, err := s.AddTodo("read the manual")
	require.NoError(t, err)
	m, _ = send(t, m, stateChangedMsg{})

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())
	assert.Equal(t, ViewDetail, m.CurrentView())
	assert.Contains(t, m.View(), "read the manual")

	m, _ = send(t, m, detail.ToggleMsg{TodoID: todo.ID})
	got, _ := s.Todo(todo.ID)
	assert.True(t, got.Completed)
	assert.Contains(t, m.View(), "Completed")

	m, _ = send(t, m, detail.EditMsg{TodoID: todo.ID})
	assert.Equal(t, ViewTodoEdit, m.CurrentView())
	m, _ = send(t, m, todoform.TodoSubmittedMsg{ID: todo.ID, Text: "read it twice", Priority: model.PriorityLow})
	assert.Equal(t, ViewDetail, m.CurrentView())
	assert.Contains(t, m.View(), "read it twice")

	m, _ = send(t, m, detail.BackMsg{})
	assert.Equal(t, ViewList, m.CurrentView())
}

func TestDetailClosesWhenTodoDisappears(t *testing.T) {
	m, s := newApp(t)
	todo, _ := s.AddTodo("short lived")
	m, _ = send(t, m, stateChangedMsg{})
	m, _ = send(t, m, todolist.OpenTodoMsg{TodoID: todo.ID})
	require.Equal(t, ViewDetail, m.CurrentView())

	s.DeleteTodo(todo.ID)
	m, _ = send(t, m, stateChangedMsg{})
	assert.Contains(t, m.View(), "No todo selected")
}

func TestSettingsView(t *testing.T) {
	s := testutil.NewTestStore(t, nil)
	path := filepath.Join(t.TempDir(), "config.yaml")
	m := New(s, WithSettings(*model.DefaultAppConfig(), path))
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	m, _ = send(t, m, runes("s"))
	assert.Equal(t, ViewSettings, m.CurrentView())
	assert.Contains(t, m.View(), path)

	cfg := *model.DefaultAppConfig()
	cfg.Behavior.SearchEnabled = false
	m, _ = send(t, m, settings.SavedMsg{Config: cfg, Path: path})
	assert.False(t, s.State().SearchEnabled)

	m, _ = send(t, m, settings.DoneMsg{})
	assert.Equal(t, ViewList, m.CurrentView())

	m, _ = send(t, m, command.CommandMsg{Command: command.Command{Kind: command.OpenSettings}})
	assert.Equal(t, ViewSettings, m.CurrentView())
}

func TestSettingsListsStoredSnapshots(t *testing.T) {
	slot, err := persist.NewSQLiteSlot(filepath.Join(t.TempDir(), "todos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { slot.Close() })
	require.NoError(t, slot.Put(context.Background(), testutil.TestKeys.Todos, []byte("[]")))

	s := testutil.NewTestStore(t, testutil.NewTestAdapter(t, slot))
	m := New(s, WithSnapshotLister(slot))
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.NotContains(t, m.View(), "Stored snapshots")

	m, _ = send(t, m, runes("s"))
	require.Equal(t, ViewSettings, m.CurrentView())
	view := m.View()
	assert.Contains(t, view, "Stored snapshots")
	assert.Contains(t, view, testutil.TestKeys.Todos)
	assert.Contains(t, view, "2 bytes")
}
