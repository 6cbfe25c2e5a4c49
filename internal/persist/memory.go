package persist

import (
	"bytes"
	"context"
	"sync"
)

// MemorySlot keeps snapshots in process memory. It backs session-only mode
// when durable storage is unavailable.
type MemorySlot struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemorySlot returns an empty MemorySlot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{data: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key.
func (s *MemorySlot) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(v), nil
}

// Put stores a copy of data under key.
func (s *MemorySlot) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = bytes.Clone(data)
	return nil
}

// Close is a no-op.
func (s *MemorySlot) Close() error { return nil }
