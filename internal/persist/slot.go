// Package persist stores todo and tag snapshots in durable key-value slots.
//
// A Slot is a dumb byte store addressed by key. A Codec turns collections
// into bytes. The Adapter combines the two, tolerating missing and corrupt
// data, and the Saver performs writes in the background so callers never
// wait on storage.
package persist

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/nhle/todolist/internal/model"
)

// ErrNotFound is returned by Slot.Get when the key holds no value.
var ErrNotFound = errors.New("slot not found")

// Slot is a durable key-value cell holding one serialized snapshot per key.
type Slot interface {
	// Get returns the bytes stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put replaces the bytes stored under key.
	Put(ctx context.Context, key string, data []byte) error
	// Close releases any resources held by the slot.
	Close() error
}

// OpenSlot opens the backend selected by cfg.
func OpenSlot(cfg model.StorageConfig) (Slot, error) {
	switch cfg.Backend {
	case model.BackendSQLite:
		return NewSQLiteSlot(cfg.Path)
	case model.BackendFile:
		return NewFileSlot(cfg.Path, "."+cfg.Codec)
	case model.BackendKeyring:
		return NewKeyringSlot(keyringService, filepath.Join(cfg.Path, "keyring"))
	case model.BackendMemory:
		return NewMemorySlot(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
