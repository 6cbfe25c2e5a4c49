package tagmgr

import (
	"testing"

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

func TestEmptyList(t *testing.T) {
	s := testutil.NewTestStore(t, nil)
	m := New(s, keys.DefaultKeyMap(), 80, 24)

	assert.Contains(t, m.View(), "No tags yet")
	for _, k := range []string{"e", "d", "j"} {
		var cmd tea.Cmd
		m, cmd = m.Update(runes(k))
		assert.Nil(t, cmd, k)
		assert.False(t, m.Editing(), k)
	}
}

func TestBackCloses(t *testing.T) {
	s := testutil.NewTestStore(t, nil)
	m := New(s, keys.DefaultKeyMap(), 80, 24)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, TagListCloseMsg{}, cmd())
}

func TestListShowsUsageAndWraps(t *testing.T) {
	s := testutil.NewTestStore(t, nil)
	work, err := s.AddTag("work", "")
	require.NoError(t, err)
	_, err = s.AddTag("home", "")
	require.NoError(t, err)
	_, err = s.AddTodo("report", store.WithTags(work.ID))
	require.NoError(t, err)

	m := New(s, keys.DefaultKeyMap(), 80, 24)
	view := m.View()
	assert.Contains(t, view, "work")
	assert.Contains(t, view, "(1)")
	assert.Contains(t, view, "(0)")

	m, _ = m.Update(runes("k"))
	assert.Equal(t, len(m.tags)-1, m.selectedIdx)
	m, _ = m.Update(runes("j"))
	assert.Equal(t, 0, m.selectedIdx)
}

func TestNewOpensFormWithNextPaletteColor(t *testing.T) {
	s := testutil.NewTestStore(t, nil)
	_, err := s.AddTag("one", "")
	require.NoError(t, err)

	m := New(s, keys.DefaultKeyMap(), 80, 24)
	m, cmd := m.Update(runes("n"))
	assert.NotNil(t, cmd)
	assert.True(t, m.Editing())
	assert.True(t, m.isNew)
	assert.Equal(t, model.TagPalette[1], m.fb.color)
}

func TestSaveTag(t *testing.T) {
	s := testutil.NewTestStore(t, nil)
	m := New(s, keys.DefaultKeyMap(), 80, 24)

	m.isNew = true
	m.fb.name = "  urgent "
	m.fb.color = "#ef4444"
	m.saveTag()

	tags := s.Tags()
	require.Len(t, tags, 1)
	assert.Equal(t, "urgent", tags[0].Name)
	assert.Equal(t, "Tag saved", m.statusMsg)
	assert.Len(t, m.tags, 1)

	m.isNew = false
	m.editingID = tags[0].ID
	m.fb.name = "later"
	m.saveTag()
	got, ok := s.Tag(tags[0].ID)
	require.True(t, ok)
	assert.Equal(t, "later", got.Name)
}

func TestSaveTagRejected(t *testing.T) {
	s := testutil.NewTestStore(t, nil)
	m := New(s, keys.DefaultKeyMap(), 80, 24)

	m.isNew = true
	m.fb.name = "   "
	m.saveTag()

	assert.Empty(t, s.Tags())
	assert.Empty(t, m.statusMsg)
	msg, ok := s.Error()
	assert.True(t, ok)
	assert.Equal(t, store.MsgEmptyTagName, msg)
}

func TestColorOptions(t *testing.T) {
	assert.Len(t, colorOptions(model.TagPalette[0]), len(model.TagPalette))

	opts := colorOptions("#123456")
	require.Len(t, opts, len(model.TagPalette)+1)
	assert.Equal(t, "#123456", opts[0].Value)
}
