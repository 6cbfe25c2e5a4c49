package detail

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todolist/internal/keys"
	"github.com/nhle/todolist/internal/model"
)

func sampleTodo() model.Todo {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return model.Todo{
		ID:        "t1",
		Text:      "Renew passport",
		Priority:  model.PriorityUrgent,
		Tags:      []string{"a"},
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestViewEmpty(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 60, 20)
	assert.Contains(t, m.View(), "No todo selected")

	_, ok := m.TodoID()
	assert.False(t, ok)
}

func TestSetTodoShowsReferencedTags(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 60, 20)
	m.SetTodo(sampleTodo(), []model.Tag{
		{ID: "a", Name: "errands", Color: "#3b82f6"},
		{ID: "b", Name: "work", Color: "#ef4444"},
	})

	view := m.View()
	assert.Contains(t, view, "Renew passport")
	assert.Contains(t, view, "Urgent")
	assert.Contains(t, view, "Active")
	assert.Contains(t, view, "Tags (1)")
	assert.Contains(t, view, "errands")
	assert.NotContains(t, view, "work")

	id, ok := m.TodoID()
	require.True(t, ok)
	assert.Equal(t, "t1", id)

	m.Clear()
	assert.Contains(t, m.View(), "No todo selected")
}

func TestKeysEmitMessages(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 60, 20)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	assert.Nil(t, cmd)

	m.SetTodo(sampleTodo(), nil)

	tests := []struct {
		key  tea.KeyMsg
		want tea.Msg
	}{
		{tea.KeyMsg{Type: tea.KeyEsc}, BackMsg{}},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")}, EditMsg{TodoID: "t1"}},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, ToggleMsg{TodoID: "t1"}},
	}
	for _, tt := range tests {
		_, cmd := m.Update(tt.key)
		require.NotNil(t, cmd, tt.key.String())
		assert.Equal(t, tt.want, cmd())
	}
}
