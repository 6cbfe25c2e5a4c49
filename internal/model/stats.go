package model

// Stats summarises a todo collection. PriorityCounts always holds every
// priority level, including zero counts; TagCounts only holds tag ids
// referenced by at least one todo.
type Stats struct {
	Total          int              `json:"total"`
	Completed      int              `json:"completed"`
	Active         int              `json:"active"`
	HasCompleted   bool             `json:"hasCompleted"`
	PriorityCounts map[Priority]int `json:"priorityCounts"`
	TagCounts      map[string]int   `json:"tagCounts"`
}

// ComputeStats derives Stats from todos. It is a pure function of its input.
func ComputeStats(todos []Todo) Stats {
	s := Stats{
		Total:          len(todos),
		PriorityCounts: make(map[Priority]int, len(Priorities)),
		TagCounts:      make(map[string]int),
	}
	for _, p := range Priorities {
		s.PriorityCounts[p] = 0
	}

	for _, t := range todos {
		if t.Completed {
			s.Completed++
		}
		p := t.Priority
		if !p.Valid() {
			p = DefaultPriority
		}
		s.PriorityCounts[p]++
		for _, id := range t.Tags {
			s.TagCounts[id]++
		}
	}

	s.Active = s.Total - s.Completed
	s.HasCompleted = s.Completed > 0
	return s
}
