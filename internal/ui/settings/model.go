package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todolist/internal/keys"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/persist"
	"github.com/nhle/todolist/internal/theme"
)

// timeLayout formats snapshot update times.
const timeLayout = "2006-01-02 15:04"


// Mode represents the current state of the settings view.
type Mode int

const (
	ModeSummary Mode = iota // Show the current settings
	ModeForm                // Editing
)

// DoneMsg signals the settings view should close.
type DoneMsg struct{}

// SavedMsg is sent after the settings were written to disk.
type SavedMsg struct {
	Config model.AppConfig
	Path   string
}

// Model is the Bubble Tea model for viewing and editing the config file.
// Saved settings take effect on the next start.
type Model struct {
	mode Mode
	cfg  model.AppConfig
	path string
	form *huh.Form

	// Form field values (huh binds to these)
	formBackend  string
	formPath     string
	formCodec    string
	formExpiry   string
	formDebounce string
	formSearch   bool
	formLogLevel string

	// Status message for transient feedback
	statusMsg string
	statusErr bool

	// Stored snapshots, when the backend can list them
	snapshots    []persist.SlotInfo
	snapshotErr  error
	hasSnapshots bool

	keys          *keys.KeyMap
	width, height int
}

// New creates a settings view editing cfg, persisted to path. An empty
// path makes the view read-only.
func New(cfg model.AppConfig, path string, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:   ModeSummary,
		cfg:    cfg,
		path:   path,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Editing reports whether the form has focus.
func (m Model) Editing() bool {
	return m.mode == ModeForm
}

// Config returns the settings as last saved.
func (m Model) Config() model.AppConfig {
	return m.cfg
}

// SetSnapshots records what the storage backend currently holds.
func (m *Model) SetSnapshots(infos []persist.SlotInfo, err error) {
	m.snapshots = infos
	m.snapshotErr = err
	m.hasSnapshots = true
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.mode == ModeForm {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			m.statusMsg = ""
			return m, func() tea.Msg { return DoneMsg{} }

		case key.Matches(msg, m.keys.Edit):
			if m.path == "" {
				m.setStatus("No config file path; settings are read-only", true)
				return m, nil
			}
			m.loadFormFields()
			m.form = m.buildForm()
			m.mode = ModeForm
			return m, m.form.Init()
		}
	}
	return m, nil
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusErr = isErr
}

// --- Form ---

func (m *Model) loadFormFields() {
	m.formBackend = m.cfg.Storage.Backend
	m.formPath = m.cfg.Storage.Path
	m.formCodec = m.cfg.Storage.Codec
	m.formExpiry = strconv.Itoa(m.cfg.Behavior.ErrorExpiryMS)
	m.formDebounce = strconv.Itoa(m.cfg.Behavior.SearchDebounceMS)
	m.formSearch = m.cfg.Behavior.SearchEnabled
	m.formLogLevel = m.cfg.Log.Level
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Storage backend").
				Options(
					huh.NewOption("SQLite database", model.BackendSQLite),
					huh.NewOption("Files in a directory", model.BackendFile),
					huh.NewOption("System keyring", model.BackendKeyring),
					huh.NewOption("Memory (not saved)", model.BackendMemory),
				).
				Value(&m.formBackend),
			huh.NewInput().
				Title("Storage path").
				Description("Database file for sqlite, directory for file and keyring").
				Value(&m.formPath),
			huh.NewSelect[string]().
				Title("Snapshot format").
				Options(
					huh.NewOption("JSON", model.CodecJSON),
					huh.NewOption("MessagePack", model.CodecMsgpack),
				).
				Value(&m.formCodec),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Error display (ms)").
				Value(&m.formExpiry).
				Validate(validateMillis(1)),
			huh.NewInput().
				Title("Search delay (ms)").
				Value(&m.formDebounce).
				Validate(validateMillis(0)),
			huh.NewConfirm().
				Title("Enable search").
				Affirmative("Yes").
				Negative("No").
				Value(&m.formSearch),
			huh.NewSelect[string]().
				Title("Log level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&m.formLogLevel),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		m.mode = ModeSummary
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.mode = ModeSummary
		return m.save()
	case huh.StateAborted:
		m.mode = ModeSummary
		return m, nil
	}
	return m, cmd
}

// Submission returns the configuration described by the form fields.
func (m Model) Submission() (model.AppConfig, error) {
	cfg := m.cfg
	cfg.Storage.Backend = m.formBackend
	cfg.Storage.Path = strings.TrimSpace(m.formPath)
	cfg.Storage.Codec = m.formCodec
	cfg.Behavior.SearchEnabled = m.formSearch
	cfg.Log.Level = m.formLogLevel

	var err error
	if cfg.Behavior.ErrorExpiryMS, err = strconv.Atoi(strings.TrimSpace(m.formExpiry)); err != nil {
		return cfg, fmt.Errorf("error display: %w", err)
	}
	if cfg.Behavior.SearchDebounceMS, err = strconv.Atoi(strings.TrimSpace(m.formDebounce)); err != nil {
		return cfg, fmt.Errorf("search delay: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (m Model) save() (Model, tea.Cmd) {
	cfg, err := m.Submission()
	if err != nil {
		m.setStatus(fmt.Sprintf("Invalid settings: %v", err), true)
		return m, nil
	}
	if err := model.SaveConfig(m.path, &cfg); err != nil {
		m.setStatus(fmt.Sprintf("Error saving settings: %v", err), true)
		return m, nil
	}
	m.cfg = cfg
	m.setStatus("Saved. Restart to apply storage changes.", false)
	path := m.path
	return m, func() tea.Msg { return SavedMsg{Config: cfg, Path: path} }
}

// --- View ---

// View renders the settings UI based on the current mode.
func (m Model) View() string {
	style := lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height)

	if m.mode == ModeForm && m.form != nil {
		return style.Render(m.form.View())
	}
	return style.Render(m.viewSummary())
}

func (m Model) viewSummary() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n\n")

	labelStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(18)
	rows := [][2]string{
		{"Backend", m.cfg.Storage.Backend},
		{"Storage path", m.cfg.Storage.Path},
		{"Snapshot format", m.cfg.Storage.Codec},
		{"Error display", fmt.Sprintf("%d ms", m.cfg.Behavior.ErrorExpiryMS)},
		{"Search delay", fmt.Sprintf("%d ms", m.cfg.Behavior.SearchDebounceMS)},
		{"Search", enabledLabel(m.cfg.Behavior.SearchEnabled)},
		{"Log level", m.cfg.Log.Level},
	}
	if m.path != "" {
		rows = append(rows, [2]string{"Config file", m.path})
	}
	for _, r := range rows {
		b.WriteString(labelStyle.Render(r[0]))
		b.WriteString(r[1])
		b.WriteString("\n")
	}

	if m.hasSnapshots {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render("Stored snapshots"))
		b.WriteString("\n")
		b.WriteString(m.viewSnapshots(labelStyle))
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		color := theme.ColorGreen
		if m.statusErr {
			color = theme.ColorRed
		}
		b.WriteString(lipgloss.NewStyle().Foreground(color).Italic(true).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.MutedStyle.Render("e edit | esc back"))
	return b.String()
}

func (m Model) viewSnapshots(labelStyle lipgloss.Style) string {
	if m.snapshotErr != nil {
		return theme.MutedStyle.Render(fmt.Sprintf("unavailable: %v", m.snapshotErr)) + "\n"
	}
	if len(m.snapshots) == 0 {
		return theme.MutedStyle.Render("nothing saved yet") + "\n"
	}
	var b strings.Builder
	for _, info := range m.snapshots {
		b.WriteString(labelStyle.Render(info.Key))
		fmt.Fprintf(&b, "%d bytes, updated %s\n", info.Size, info.UpdatedAt.Local().Format(timeLayout))
	}
	return b.String()
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func enabledLabel(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}

// --- Validators ---

func validateMillis(minimum int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("must be a whole number of milliseconds")
		}
		if n < minimum {
			return fmt.Errorf("must be at least %d", minimum)
		}
		return nil
	}
}
