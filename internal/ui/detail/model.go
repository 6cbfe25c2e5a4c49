package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todolist/internal/keys"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/theme"
)

// timeLayout is used for the created and updated timestamps.
const timeLayout = "2006-01-02 15:04"

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// EditMsg asks the parent to open the edit form for the shown todo.
type EditMsg struct {
	TodoID string
}

// ToggleMsg asks the parent to flip the completion of the shown todo.
type ToggleMsg struct {
	TodoID string
}

// Model is the todo detail view component.
type Model struct {
	todo     *model.Todo
	tags     []model.Tag
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, max(height-2, 0))
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(msg, m.keys.Edit):
			if m.todo != nil {
				id := m.todo.ID
				return m, func() tea.Msg { return EditMsg{TodoID: id} }
			}
			return m, nil

		case key.Matches(msg, m.keys.Toggle):
			if m.todo != nil {
				id := m.todo.ID
				return m, func() tea.Msg { return ToggleMsg{TodoID: id} }
			}
			return m, nil
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.todo == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No todo selected")
	}

	hint := theme.MutedStyle.Render("e edit | x toggle | esc back")
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), hint)
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.todo == nil {
		return ""
	}

	todo := m.todo
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	text := todo.Text
	if m.width > 4 {
		text = lipgloss.NewStyle().Width(m.width - 4).Render(text)
	}
	sections = append(sections, titleStyle.Render(text))

	status := lipgloss.NewStyle().Foreground(theme.ColorYellow).Render("Active")
	if todo.Completed {
		status = lipgloss.NewStyle().Foreground(theme.ColorGreen).Render("Completed")
	}
	priBadge := theme.PriorityStyle(todo.Priority).Render(todo.Priority.Label())
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, status, "  ", priBadge))
	sections = append(sections, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	sections = append(sections, fmt.Sprintf("%s  %s",
		metaStyle.Render("Created:"),
		valStyle.Render(todo.CreatedAt.Local().Format(timeLayout)),
	))
	sections = append(sections, fmt.Sprintf("%s  %s",
		metaStyle.Render("Updated:"),
		valStyle.Render(todo.UpdatedAt.Local().Format(timeLayout)),
	))
	sections = append(sections, fmt.Sprintf("%s       %s",
		metaStyle.Render("ID:"),
		valStyle.Render(todo.ID),
	))

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 0)))
	sections = append(sections, "", separator, "")

	tagHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, tagHeaderStyle.Render(fmt.Sprintf("Tags (%d)", len(m.tags))))

	if len(m.tags) == 0 {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No tags"))
	} else {
		badges := make([]string, len(m.tags))
		for i, t := range m.tags {
			badges[i] = theme.TagStyle(t.Color).Render(t.Name)
		}
		sections = append(sections, strings.Join(badges, " "))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetTodo updates the todo being displayed and re-renders the content.
// tags is the full tag set; only those referenced by todo are shown.
func (m *Model) SetTodo(todo model.Todo, tags []model.Tag) {
	m.todo = &todo
	var shown []model.Tag
	for _, t := range tags {
		if todo.HasTag(t.ID) {
			shown = append(shown, t)
		}
	}
	m.tags = shown
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Clear drops the shown todo.
func (m *Model) Clear() {
	m.todo = nil
	m.tags = nil
	m.viewport.SetContent("")
}

// TodoID returns the id of the shown todo.
func (m Model) TodoID() (string, bool) {
	if m.todo == nil {
		return "", false
	}
	return m.todo.ID, true
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-2, 0)
	if m.todo != nil {
		m.viewport.SetContent(m.renderContent())
	}
}
