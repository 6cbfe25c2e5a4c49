package ident

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDGeneratesDistinctValidIDs(t *testing.T) {
	gen := UUID()
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		id := gen.NewID()
		_, err := uuid.Parse(id)
		require.NoError(t, err, "id %q should be a UUID", id)
		assert.False(t, seen[id], "duplicate id %q", id)
		seen[id] = true
	}
}

func TestSequence(t *testing.T) {
	gen := Sequence("todo")
	assert.Equal(t, "todo-1", gen.NewID())
	assert.Equal(t, "todo-2", gen.NewID())
	assert.Equal(t, "todo-3", gen.NewID())
}

func TestFunc(t *testing.T) {
	var gen Generator = Func(func() string { return "fixed" })
	assert.Equal(t, "fixed", gen.NewID())
}
