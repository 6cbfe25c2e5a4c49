package command

import (
	"fmt"
	"strings"

	"github.com/nhle/todolist/internal/model"
)

// Kind identifies a palette command.
type Kind int

const (
	ClearCompleted Kind = iota + 1
	SetFilter
	SetPriority
	Search
	ClearSearch
	ManageTags
	NewTodo
	OpenSettings
	Quit
)

// Command is a parsed palette command.
type Command struct {
	Kind     Kind
	Filter   model.Filter
	Priority model.Priority
	Query    string
}

var usage = []string{
	"clear completed",
	"filter all|active|completed",
	"priority low|medium|high|urgent",
	"search TEXT",
	"clear search",
	"tags",
	"new",
	"settings",
	"quit",
}

// Usage lists the accepted commands, one per line.
func Usage() string {
	return strings.Join(usage, "\n")
}

// Parse turns a palette line into a Command. Command words are matched
// case-insensitively; search text is kept as typed.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	word, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(word) {
	case "clear":
		switch strings.ToLower(rest) {
		case "completed", "done":
			return Command{Kind: ClearCompleted}, nil
		case "search":
			return Command{Kind: ClearSearch}, nil
		}
	case "filter":
		f, err := model.ParseFilter(rest)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: SetFilter, Filter: f}, nil
	case "priority", "pri":
		p, err := model.ParsePriority(rest)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: SetPriority, Priority: p}, nil
	case "search":
		return Command{Kind: Search, Query: rest}, nil
	case "tags":
		return Command{Kind: ManageTags}, nil
	case "new":
		return Command{Kind: NewTodo}, nil
	case "settings", "config":
		return Command{Kind: OpenSettings}, nil
	case "quit", "q", "exit":
		return Command{Kind: Quit}, nil
	}
	return Command{}, fmt.Errorf("unknown command %q", line)
}
