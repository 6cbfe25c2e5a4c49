package model

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Priority is the urgency bucket of a todo.
type Priority string

// Priority levels, lowest to highest.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists every priority level in ascending order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// DefaultPriority is applied to new todos and to legacy records without one.
const DefaultPriority = PriorityMedium

// Valid reports whether p is one of the known priority levels.
func (p Priority) Valid() bool {
	return slices.Contains(Priorities, p)
}

// Label returns the capitalised display name.
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityUrgent:
		return "Urgent"
	default:
		return string(p)
	}
}

// ParsePriority converts a user-supplied string into a Priority.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q", s)
	}
	return p, nil
}

// Filter selects todos by completion status.
type Filter string

// Status filters.
const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Filters lists every filter in display order.
var Filters = []Filter{FilterAll, FilterActive, FilterCompleted}

// ParseFilter converts a user-supplied string into a Filter.
func ParseFilter(s string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Filters, f) {
		return "", fmt.Errorf("unknown filter %q", s)
	}
	return f, nil
}

// Next returns the filter that follows f in display order, wrapping around.
func (f Filter) Next() Filter {
	i := slices.Index(Filters, f)
	return Filters[(i+1)%len(Filters)]
}

// Todo is a single task created and managed by the user.
type Todo struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Priority  Priority  `json:"priority"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a copy of t that shares no memory with it.
func (t Todo) Clone() Todo {
	t.Tags = slices.Clone(t.Tags)
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t
}

// HasTag reports whether the todo references tagID.
func (t Todo) HasTag(tagID string) bool {
	return slices.Contains(t.Tags, tagID)
}

// NormalizeTags returns ids as a sorted set without empty entries.
// The result is never nil.
func NormalizeTags(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
