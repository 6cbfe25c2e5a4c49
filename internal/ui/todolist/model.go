package todolist

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todolist/internal/keys"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/store"
	"github.com/nhle/todolist/internal/theme"
)

// EditTodoMsg is sent when the user asks to edit the selected todo.
type EditTodoMsg struct {
	TodoID string
}

// OpenTodoMsg is sent when the user asks for the details of the selected
// todo.
type OpenTodoMsg struct {
	TodoID string
}

// Model is the main todo list view component.
type Model struct {
	list        list.Model
	store       *store.Store
	keys        *keys.KeyMap
	searchMode  bool
	searchInput textinput.Model
	state       store.Snapshot
	width       int
	height      int
}

// New creates a todo list bound to s.
func New(s *store.Store, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{Now: time.Now}, width, max(height-2, 0))
	l.Title = "Todos"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search todos..."
	si.Prompt = "/ "
	si.Width = max(width-4, 0)

	m := Model{
		list:        l,
		store:       s,
		keys:        k,
		searchInput: si,
		width:       width,
		height:      height,
	}
	m.SetState(s.State())
	return m
}

// SetState replaces the rows with the visible todos of state.
func (m *Model) SetState(state store.Snapshot) tea.Cmd {
	m.state = state

	tags := make(map[string]model.Tag, len(state.Tags))
	for _, t := range state.Tags {
		tags[t.ID] = t
	}

	items := make([]list.Item, len(state.Visible))
	for i, todo := range state.Visible {
		item := TodoItem{Todo: todo}
		for _, id := range todo.Tags {
			if tag, ok := tags[id]; ok {
				item.Tags = append(item.Tags, tag)
			}
		}
		items[i] = item
	}
	m.list.Title = fmt.Sprintf("Todos (%d)", len(items))
	cmd := m.list.SetItems(items)
	if n := len(items); n > 0 && m.list.Index() >= n {
		m.list.Select(n - 1)
	}
	return cmd
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool {
	return m.searchMode
}

// Selected returns the todo under the cursor.
func (m Model) Selected() (model.Todo, bool) {
	item, ok := m.list.SelectedItem().(TodoItem)
	if !ok {
		return model.Todo{}, false
	}
	return item.Todo, true
}

// StartSearch focuses the search input, seeded with the current input.
func (m *Model) StartSearch() tea.Cmd {
	m.searchMode = true
	m.searchInput.SetValue(m.state.SearchInput)
	m.searchInput.CursorEnd()
	return m.searchInput.Focus()
}

// Update handles messages for the todo list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys forwards typing to the store's debounced search input.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.searchInput.Blur()
		m.store.SetSearchQuery(m.searchInput.Value())
		return m, nil

	case "esc":
		m.searchMode = false
		m.searchInput.Blur()
		m.searchInput.Reset()
		m.store.ClearSearch()
		return m, nil
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if v := m.searchInput.Value(); v != before {
		m.store.SetSearchInput(v)
	}
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Toggle):
		if todo, ok := m.Selected(); ok {
			m.store.ToggleTodo(todo.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if todo, ok := m.Selected(); ok {
			m.store.DeleteTodo(todo.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		todo, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg { return EditTodoMsg{TodoID: todo.ID} }

	case key.Matches(msg, m.keys.Open):
		todo, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg { return OpenTodoMsg{TodoID: todo.ID} }

	case key.Matches(msg, m.keys.ClearCompleted):
		m.store.ClearCompleted()
		return m, nil

	case key.Matches(msg, m.keys.CycleFilter):
		m.store.SetFilter(m.state.Filter.Next())
		return m, nil

	case key.Matches(msg, m.keys.FilterAll):
		m.store.SetFilter(model.FilterAll)
		return m, nil

	case key.Matches(msg, m.keys.FilterActive):
		m.store.SetFilter(model.FilterActive)
		return m, nil

	case key.Matches(msg, m.keys.FilterCompleted):
		m.store.SetFilter(model.FilterCompleted)
		return m, nil

	case key.Matches(msg, m.keys.Search):
		return m, m.StartSearch()
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the todo list view.
func (m Model) View() string {
	var search string
	switch {
	case m.searchMode:
		search = lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
	case m.state.SearchQuery != "":
		search = theme.MutedStyle.Padding(0, 1).
			Render(fmt.Sprintf("search: %q", m.state.SearchQuery))
	}

	body := m.list.View()
	if len(m.list.Items()) == 0 {
		body = m.renderEmptyState()
	}
	if search == "" {
		return body
	}
	return lipgloss.JoinVertical(lipgloss.Left, search, body)
}

// renderEmptyState shows guidance text when no todos are visible.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(max(m.height-2, 1)).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	switch {
	case m.state.Loading:
		return style.Render("Loading todos...")
	case m.state.SearchQuery != "":
		return style.Render(fmt.Sprintf("No todos match %q.", m.state.SearchQuery))
	case m.state.Filter == model.FilterActive && m.state.Stats.Total > 0:
		return style.Render("Nothing left to do.")
	case m.state.Filter == model.FilterCompleted && m.state.Stats.Total > 0:
		return style.Render("No completed todos yet.")
	default:
		return style.Render("No todos yet.\n\nPress n to add one.")
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, max(height-2, 0))
	m.searchInput.Width = max(width-4, 0)
}
