package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStatsEmpty(t *testing.T) {
	s := ComputeStats(nil)

	assert.Zero(t, s.Total)
	assert.Zero(t, s.Completed)
	assert.Zero(t, s.Active)
	assert.False(t, s.HasCompleted)
	assert.Len(t, s.PriorityCounts, len(Priorities))
	for _, p := range Priorities {
		n, ok := s.PriorityCounts[p]
		assert.True(t, ok, "missing bucket %s", p)
		assert.Zero(t, n)
	}
	assert.NotNil(t, s.TagCounts)
	assert.Empty(t, s.TagCounts)
}

func TestComputeStats(t *testing.T) {
	s := ComputeStats([]Todo{
		{ID: "1", Priority: PriorityHigh, Tags: []string{"work"}},
		{ID: "2", Priority: PriorityHigh, Completed: true, Tags: []string{"work", "home"}},
		{ID: "3", Priority: "someday"},
		{ID: "4", Priority: ""},
	})

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Completed)
	assert.Equal(t, 3, s.Active)
	assert.True(t, s.HasCompleted)
	assert.Equal(t, map[Priority]int{
		PriorityLow:    0,
		PriorityMedium: 2,
		PriorityHigh:   2,
		PriorityUrgent: 0,
	}, s.PriorityCounts)
	assert.Equal(t, map[string]int{"work": 2, "home": 1}, s.TagCounts)
}
