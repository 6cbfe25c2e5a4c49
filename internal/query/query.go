// Package query derives the visible subset of a todo collection.
package query

import (
	"strings"

	"github.com/nhle/todolist/internal/model"
)

// Visible returns the todos that pass filter and match search. Input order
// is preserved and the result never aliases the input slice.
func Visible(todos []model.Todo, filter model.Filter, search string) []model.Todo {
	out := make([]model.Todo, 0, len(todos))
	for _, t := range todos {
		if MatchFilter(t, filter) && MatchSearch(t, search) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// MatchFilter reports whether t passes the status filter. Unknown filters
// behave like model.FilterAll.
func MatchFilter(t model.Todo, filter model.Filter) bool {
	switch filter {
	case model.FilterActive:
		return !t.Completed
	case model.FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// MatchSearch reports whether t's text contains search, ignoring case.
// A blank search matches every todo.
func MatchSearch(t model.Todo, search string) bool {
	if strings.TrimSpace(search) == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Text), strings.ToLower(search))
}
