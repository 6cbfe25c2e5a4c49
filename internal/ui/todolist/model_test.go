package todolist

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todolist/internal/keys"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/store"
	"github.com/nhle/todolist/tests/testutil"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends k and refreshes the list from the store the way the root
// model does.
func press(m Model, s *store.Store, k tea.KeyMsg) (Model, tea.Cmd) {
	m, cmd := m.Update(k)
	m.SetState(s.State())
	return m, cmd
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Time{}, ""},
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-50 * time.Hour), "2d ago"},
		{now.Add(-15 * 24 * time.Hour), "2w ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, relativeTime(now, tt.at))
	}
}

func TestRenderRow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	d := ItemDelegate{Now: func() time.Time { return now }}

	row := d.RenderRow(TodoItem{
		Todo: model.Todo{Text: "ship it", Priority: model.PriorityUrgent, UpdatedAt: now.Add(-2 * time.Minute)},
		Tags: []model.Tag{
			{Name: "a", Color: "#3b82f6"},
			{Name: "b", Color: "#3b82f6"},
			{Name: "c", Color: "#3b82f6"},
			{Name: "d", Color: "#3b82f6"},
			{Name: "e", Color: "#3b82f6"},
		},
	}, false)

	assert.Contains(t, row, "○")
	assert.Contains(t, row, "URG")
	assert.Contains(t, row, "ship it")
	assert.Contains(t, row, "+2")
	assert.Contains(t, row, "2m ago")

	done := d.RenderRow(TodoItem{Todo: model.Todo{Text: "done", Completed: true, Priority: model.PriorityLow}}, true)
	assert.Contains(t, done, "✓")
}

func TestEmptyStates(t *testing.T) {
	s := testutil.NewTestStore(t, nil)
	m := New(s, keys.DefaultKeyMap(), 80, 20)
	assert.Contains(t, m.View(), "No todos yet")

	_, err := s.AddTodo("one")
	require.NoError(t, err)
	s.SetFilter(model.FilterCompleted)
	m.SetState(s.State())
	assert.Contains(t, m.View(), "No completed todos yet")

	s.SetFilter(model.FilterAll)
	s.SetSearchQuery("zzz")
	m.SetState(s.State())
	assert.Contains(t, m.View(), `No todos match "zzz"`)
}

func TestNormalKeys(t *testing.T) {
	s := testutil.NewTestStore(t, nil)
	first, err := s.AddTodo("first")
	require.NoError(t, err)
	_, err = s.AddTodo("second")
	require.NoError(t, err)

	m := New(s, keys.DefaultKeyMap(), 80, 20)
	assert.Contains(t, m.View(), "Todos (2)")

	// Newest first: the cursor starts on "second".
	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "second", sel.Text)

	m, _ = press(m, s, runes("j"))
	sel, _ = m.Selected()
	assert.Equal(t, first.ID, sel.ID)

	m, _ = press(m, s, runes("x"))
	got, _ := s.Todo(first.ID)
	assert.True(t, got.Completed)

	m, cmd := press(m, s, runes("e"))
	require.NotNil(t, cmd)
	assert.Equal(t, EditTodoMsg{TodoID: first.ID}, cmd())

	m, cmd = press(m, s, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, OpenTodoMsg{TodoID: first.ID}, cmd())

	m, _ = press(m, s, runes("2"))
	assert.Equal(t, model.FilterActive, s.Filter())
	m, _ = press(m, s, runes("f"))
	assert.Equal(t, model.FilterCompleted, s.Filter())
	m, _ = press(m, s, runes("1"))
	assert.Equal(t, model.FilterAll, s.Filter())

	m, _ = press(m, s, runes("C"))
	assert.Len(t, s.Todos(), 1)

	_, _ = press(m, s, runes("d"))
	assert.Empty(t, s.Todos())
}

func TestSearchMode(t *testing.T) {
	s := testutil.NewTestStore(t, nil)
	_, _ = s.AddTodo("Buy milk")
	_, _ = s.AddTodo("Walk dog")

	m := New(s, keys.DefaultKeyMap(), 80, 20)
	m, _ = press(m, s, runes("/"))
	require.True(t, m.Searching())

	// Global keys are plain text while searching.
	m, _ = press(m, s, runes("m"))
	m, _ = press(m, s, runes("i"))
	assert.Equal(t, "mi", s.State().SearchInput)

	m, _ = press(m, s, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Searching())
	assert.Equal(t, "mi", s.SearchQuery())
	assert.Len(t, s.VisibleTodos(), 1)
	assert.Contains(t, m.View(), `search: "mi"`)

	m, _ = press(m, s, runes("/"))
	assert.Equal(t, "mi", m.searchInput.Value())
	m, _ = press(m, s, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Searching())
	assert.Empty(t, s.SearchQuery())
	assert.Len(t, m.list.Items(), 2)
}
