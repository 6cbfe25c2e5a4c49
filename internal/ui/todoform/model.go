package todoform

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/theme"
)

// TodoSubmittedMsg is dispatched when the form is submitted. ID is empty
// for a new todo.
type TodoSubmittedMsg struct {
	ID       string
	Text     string
	Priority model.Priority
	TagIDs   []string
}

// TodoFormCancelMsg is dispatched when the user cancels the form.
type TodoFormCancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	text     string
	priority model.Priority
	tagIDs   []string
}

// Model is the Bubble Tea model for the todo create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editID   string
	tags     []model.Tag
	width    int
	height   int
}

// New creates a new todo form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{priority: model.DefaultPriority},
		width:  width,
		height: height,
	}
}

// SetTags sets the tags offered by the tag selector.
func (m *Model) SetTags(tags []model.Tag) {
	m.tags = tags
}

// StartCreate initializes the form for creating a new todo.
func (m *Model) StartCreate() tea.Cmd {
	m.editMode = false
	m.editID = ""
	m.fb.text = ""
	m.fb.priority = model.DefaultPriority
	m.fb.tagIDs = nil
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form for editing an existing todo.
func (m *Model) StartEdit(todo model.Todo) tea.Cmd {
	m.editMode = true
	m.editID = todo.ID
	m.fb.text = todo.Text
	m.fb.priority = todo.Priority
	m.fb.tagIDs = append([]string(nil), todo.Tags...)
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the todo form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		sub := m.Submission()
		return m, func() tea.Msg { return sub }
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return TodoFormCancelMsg{} }
	}

	return m, cmd
}

// Submission returns the message the form sends with its current values.
func (m Model) Submission() TodoSubmittedMsg {
	sub := TodoSubmittedMsg{
		Text:     m.fb.text,
		Priority: m.fb.priority,
		TagIDs:   append([]string{}, m.fb.tagIDs...),
	}
	if m.editMode {
		sub.ID = m.editID
	}
	return sub
}

// View renders the todo form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Todo"
	if m.editMode {
		titleText = "Edit Todo"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// buildForm leaves text validation to the store, which reports empty text
// through the error channel.
func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Text").
			Placeholder("What needs to be done?").
			Value(&m.fb.text),
		m.priorityField(),
	}
	if tagField := m.tagField(); tagField != nil {
		fields = append(fields, tagField)
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) priorityField() huh.Field {
	opts := make([]huh.Option[model.Priority], len(model.Priorities))
	for i, p := range model.Priorities {
		opts[i] = huh.NewOption(p.Label(), p)
	}
	return huh.NewSelect[model.Priority]().
		Title("Priority").
		Options(opts...).
		Value(&m.fb.priority)
}

func (m *Model) tagField() huh.Field {
	if len(m.tags) == 0 {
		return nil
	}
	opts := make([]huh.Option[string], len(m.tags))
	for i, t := range m.tags {
		opts[i] = huh.NewOption(t.Name, t.ID)
	}
	return huh.NewMultiSelect[string]().
		Title("Tags").
		Options(opts...).
		Value(&m.fb.tagIDs)
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}
