// Package ident produces unique identifiers for new todos and tags.
package ident

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator returns a fresh identifier on every call.
type Generator interface {
	NewID() string
}

// Func adapts an ordinary function to the Generator interface.
type Func func() string

// NewID calls f.
func (f Func) NewID() string { return f() }

// UUID returns a Generator producing random (version 4) UUID strings.
func UUID() Generator {
	return Func(func() string { return uuid.New().String() })
}

// Sequence returns a Generator producing prefix-1, prefix-2, ... in order.
// It is safe for concurrent use.
func Sequence(prefix string) Generator {
	var n atomic.Uint64
	return Func(func() string {
		return fmt.Sprintf("%s-%d", prefix, n.Add(1))
	})
}
