package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todolist/internal/keys"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/persist"
	"github.com/nhle/todolist/internal/store"
	"github.com/nhle/todolist/internal/theme"
	"github.com/nhle/todolist/internal/ui"
	"github.com/nhle/todolist/internal/ui/command"
	"github.com/nhle/todolist/internal/ui/detail"
	helpview "github.com/nhle/todolist/internal/ui/help"
	"github.com/nhle/todolist/internal/ui/settings"
	"github.com/nhle/todolist/internal/ui/tagmgr"
	"github.com/nhle/todolist/internal/ui/todoform"
	"github.com/nhle/todolist/internal/ui/todolist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewHelp
	ViewCommand
	ViewTodoCreate
	ViewTodoEdit
	ViewTagList
	ViewDetail
	ViewSettings
)

// Model is the root Bubble Tea model. It routes input to the active view
// and re-renders from store snapshots; all state lives in the store.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	store        *store.Store
	keys         *keys.KeyMap
	state        store.Snapshot
	todoList     todolist.Model
	helpView     helpview.Model
	commandView  command.Model
	todoFormView todoform.Model
	tagView      tagmgr.Model
	detailView   detail.Model
	settingsView settings.Model
	snapshots    persist.Lister
	ready        bool
}

// msgNoSelection is reported when a command needs a selected todo.
const msgNoSelection = "No todo selected"

// Option configures the application model.
type Option func(*Model)

// WithSettings enables the settings view for cfg, saved to path.
func WithSettings(cfg model.AppConfig, path string) Option {
	return func(m *Model) {
		m.settingsView = settings.New(cfg, path, m.keys, 80, 24)
	}
}

// WithSnapshotLister lists the backend's stored snapshots whenever the
// settings view opens.
func WithSnapshotLister(l persist.Lister) Option {
	return func(m *Model) {
		m.snapshots = l
	}
}

// New creates a new root application model bound to s.
func New(s *store.Store, opts ...Option) Model {
	k := keys.DefaultKeyMap()

	m := Model{
		currentView:  ViewList,
		store:        s,
		keys:         k,
		state:        s.State(),
		layout:       ui.NewLayout(80, 24),
		todoList:     todolist.New(s, k, 80, 24),
		helpView:     helpview.New(k, 80, 24),
		commandView:  command.New(80, 24),
		todoFormView: todoform.New(80, 24),
		tagView:      tagmgr.New(s, k, 80, 24),
		detailView:   detail.New(k, 80, 24),
		settingsView: settings.New(*model.DefaultAppConfig(), "", k, 80, 24),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init subscribes to store changes.
func (m Model) Init() tea.Cmd {
	return waitForChange(m.store.Changes())
}

// CurrentView returns the active view.
func (m Model) CurrentView() ViewState {
	return m.currentView
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.todoList.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		m.todoFormView.SetSize(contentWidth, contentHeight)
		m.tagView.SetSize(contentWidth, contentHeight)
		m.detailView.SetSize(contentWidth, contentHeight)
		m.settingsView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case stateChangedMsg:
		cmd := m.refresh()
		return m, tea.Batch(cmd, waitForChange(m.store.Changes()))

	case todolist.EditTodoMsg:
		return m, m.startEdit(msg.TodoID)

	case todolist.OpenTodoMsg:
		m.openDetail(msg.TodoID)
		return m, nil

	case detail.EditMsg:
		return m, m.startEdit(msg.TodoID)

	case detail.ToggleMsg:
		m.store.ToggleTodo(msg.TodoID)
		return m, m.refresh()

	case detail.BackMsg:
		m.currentView = ViewList
		m.detailView.Clear()
		return m, nil

	case settings.DoneMsg:
		m.currentView = ViewList
		return m, nil

	case settings.SavedMsg:
		m.store.SetSearchEnabled(msg.Config.Behavior.SearchEnabled)
		return m, m.refresh()

	case todoform.TodoSubmittedMsg:
		m.currentView = m.returnView()
		m.submitTodo(msg)
		return m, m.refresh()

	case todoform.TodoFormCancelMsg:
		m.currentView = m.returnView()
		return m, nil

	case command.CommandMsg:
		m.currentView = ViewList
		cmd := m.executeCommand(msg.Command)
		return m, tea.Batch(cmd, m.refresh())

	case command.CommandErrorMsg:
		m.currentView = ViewList
		m.store.ReportError(msg.Err.Error())
		return m, m.refresh()

	case tagmgr.TagListCloseMsg:
		m.currentView = ViewList
		return m, m.refresh()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.capturingInput() {
			break
		}

		switch m.currentView {
		case ViewList:
			if next, cmd, ok := m.handleListKey(msg); ok {
				return next, cmd
			}

		case ViewHelp:
			if key.Matches(msg, m.keys.Help, m.keys.Back, m.keys.Quit) {
				m.currentView = m.previousView
				return m, nil
			}
			return m, nil

		case ViewCommand:
			if key.Matches(msg, m.keys.Back) {
				m.currentView = m.previousView
				return m, nil
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// capturingInput reports whether the active view is consuming raw text, in
// which case global shortcuts are not applied.
func (m Model) capturingInput() bool {
	switch m.currentView {
	case ViewList:
		return m.todoList.Searching()
	case ViewTodoCreate, ViewTodoEdit:
		return true
	case ViewTagList:
		return m.tagView.Editing()
	case ViewSettings:
		return m.settingsView.Editing()
	}
	return false
}

// handleListKey applies the global shortcuts of the list view. ok is false
// when the key belongs to the list itself.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m, m.commandView.Focus(), true

	case key.Matches(msg, m.keys.New):
		return m, m.startCreate(), true

	case key.Matches(msg, m.keys.Tags):
		m.openTags()
		return m, nil, true

	case key.Matches(msg, m.keys.Settings):
		m.openSettings()
		return m, nil, true

	case key.Matches(msg, m.keys.Back):
		if m.state.HasError {
			m.store.DismissError()
		} else if m.state.SearchQuery != "" || m.state.SearchInput != "" {
			m.store.ClearSearch()
		}
		return m, m.refresh(), true
	}
	return m, nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.todoList, cmd = m.todoList.Update(msg)
		// List keys mutate the store directly; show the result without
		// waiting for the change notification.
		if _, ok := msg.(tea.KeyMsg); ok {
			cmd = tea.Batch(cmd, m.refresh())
		}
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewTodoCreate, ViewTodoEdit:
		m.todoFormView, cmd = m.todoFormView.Update(msg)
	case ViewTagList:
		m.tagView, cmd = m.tagView.Update(msg)
	case ViewDetail:
		m.detailView, cmd = m.detailView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	}

	return m, cmd
}

// refresh pulls a fresh snapshot from the store into every view.
func (m *Model) refresh() tea.Cmd {
	m.state = m.store.State()
	m.tagView.SetState(m.state)
	if id, ok := m.detailView.TodoID(); ok {
		if todo, found := m.store.Todo(id); found {
			m.detailView.SetTodo(todo, m.state.Tags)
		} else {
			m.detailView.Clear()
		}
	}
	return m.todoList.SetState(m.state)
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Todo List", m.filterTabs())
	content := m.renderContent()
	statusBar := m.renderStatusBar()

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.todoList.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewTodoCreate, ViewTodoEdit:
		return m.todoFormView.View()
	case ViewTagList:
		return m.tagView.View()
	case ViewDetail:
		return m.detailView.View()
	case ViewSettings:
		return m.settingsView.View()
	default:
		return ""
	}
}

// filterTabs renders the status filters with the active one highlighted.
func (m Model) filterTabs() string {
	tabs := make([]string, len(model.Filters))
	for i, f := range model.Filters {
		label := fmt.Sprintf("%d %s", i+1, f)
		tabs[i] = theme.FilterStyle(f == m.state.Filter).Render(label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderStatusBar shows the current error if there is one, otherwise the
// statistics line and key hints.
func (m Model) renderStatusBar() string {
	if m.state.HasError {
		return m.layout.RenderStatusBar(theme.ErrorBarStyle, "⚠ "+m.state.Error+"  (esc to dismiss)")
	}
	return m.layout.RenderStatusBar(theme.StatusBarStyle, StatsLine(m.state.Stats)+"  ·  "+m.keyHints())
}

// StatsLine formats the summary shown in the status bar.
func StatsLine(s model.Stats) string {
	line := fmt.Sprintf("Total: %d todos | Completed: %d | Active: %d", s.Total, s.Completed, s.Active)
	var pri []string
	for _, p := range model.Priorities {
		if n := s.PriorityCounts[p]; n > 0 {
			pri = append(pri, fmt.Sprintf("%s %d", p.Label(), n))
		}
	}
	if len(pri) > 0 {
		line += " | " + strings.Join(pri, ", ")
	}
	return line
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewTodoCreate, ViewTodoEdit:
		return "enter submit | esc cancel"
	case ViewTagList:
		return "n new | e edit | d delete | esc back"
	case ViewDetail:
		return "e edit | x toggle | esc back"
	case ViewSettings:
		return "e edit | esc back"
	default:
		if m.todoList.Searching() {
			return "enter apply | esc clear"
		}
		return "n new | enter open | x toggle | e edit | d delete | f filter | / search | t tags | ? help"
	}
}

// executeCommand runs a command from the command palette.
func (m *Model) executeCommand(c command.Command) tea.Cmd {
	switch c.Kind {
	case command.ClearCompleted:
		m.store.ClearCompleted()
	case command.SetFilter:
		m.store.SetFilter(c.Filter)
	case command.SetPriority:
		todo, ok := m.todoList.Selected()
		if !ok {
			m.store.ReportError(msgNoSelection)
			return nil
		}
		_ = m.store.UpdateTodo(todo.ID, todo.Text, store.WithPriority(c.Priority))
	case command.Search:
		m.store.SetSearchQuery(c.Query)
	case command.ClearSearch:
		m.store.ClearSearch()
	case command.ManageTags:
		m.openTags()
	case command.NewTodo:
		return m.startCreate()
	case command.OpenSettings:
		m.openSettings()
	case command.Quit:
		return tea.Quit
	}
	return nil
}

func (m *Model) openSettings() {
	m.previousView = m.currentView
	m.currentView = ViewSettings
	if m.snapshots != nil {
		infos, err := m.snapshots.List(context.Background())
		m.settingsView.SetSnapshots(infos, err)
	}
}

func (m *Model) openTags() {
	m.previousView = m.currentView
	m.currentView = ViewTagList
	m.tagView.SetState(m.store.State())
}
