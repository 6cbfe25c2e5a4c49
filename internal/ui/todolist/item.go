package todolist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/theme"
)

// maxTagBadges is the number of tag badges shown before the rest collapse
// into a counter.
const maxTagBadges = 3

// TodoItem wraps a model.Todo so it can be used in a bubbles/list.
type TodoItem struct {
	Todo model.Todo
	Tags []model.Tag
}

// FilterValue returns the string used for fuzzy filtering.
func (i TodoItem) FilterValue() string { return i.Todo.Text }

// Title returns the todo text for the list.
func (i TodoItem) Title() string { return i.Todo.Text }

// Description returns a short summary line for the list.
func (i TodoItem) Description() string {
	names := make([]string, len(i.Tags))
	for j, t := range i.Tags {
		names[j] = t.Name
	}
	parts := []string{i.Todo.Priority.Label()}
	if len(names) > 0 {
		parts = append(parts, strings.Join(names, ", "))
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering todo rows.
type ItemDelegate struct {
	// Now is the reference time for relative timestamps.
	Now func() time.Time
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single todo row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TodoItem)
	if !ok {
		return
	}
	fmt.Fprint(w, d.RenderRow(ti, index == m.Index()))
}

// RenderRow renders one todo row.
func (d ItemDelegate) RenderRow(ti TodoItem, selected bool) string {
	todo := ti.Todo

	prefix := "○"
	if todo.Completed {
		prefix = "✓"
	}

	priBadge := theme.PriorityStyle(todo.Priority).Render(priorityBadge(todo.Priority))

	text := todo.Text
	if todo.Completed {
		text = theme.DimmedStyle.Render(text)
	}

	var badges []string
	for i, tag := range ti.Tags {
		if i == maxTagBadges {
			badges = append(badges, theme.MutedStyle.Render(fmt.Sprintf("+%d", len(ti.Tags)-maxTagBadges)))
			break
		}
		badges = append(badges, theme.TagStyle(tag.Color).Render(tag.Name))
	}
	tagStr := ""
	if len(badges) > 0 {
		tagStr = " " + strings.Join(badges, " ")
	}

	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	timeStr := theme.MutedStyle.Render(relativeTime(now(), todo.UpdatedAt))

	line := fmt.Sprintf("%s %s %s%s  %s", prefix, priBadge, text, tagStr, timeStr)

	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// relativeTime returns a human-friendly time of t relative to now.
func relativeTime(now, t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}

// priorityBadge returns a fixed-width label for p.
func priorityBadge(p model.Priority) string {
	switch p {
	case model.PriorityUrgent:
		return "URG"
	case model.PriorityHigh:
		return "HI "
	case model.PriorityMedium:
		return "MED"
	case model.PriorityLow:
		return "LO "
	default:
		return "?  "
	}
}
