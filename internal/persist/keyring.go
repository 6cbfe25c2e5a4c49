package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const keyringService = "todolist"

// KeyringSlot stores snapshots as items in the operating system keyring,
// falling back to an encrypted file keyring when no system service exists.
type KeyringSlot struct {
	ring keyring.Keyring
}

// NewKeyringSlot opens the keyring for service. fileDir is used by the
// encrypted file backend.
func NewKeyringSlot(service, fileDir string) (*KeyringSlot, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: service,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt(service + "-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &KeyringSlot{ring: ring}, nil
}

// NewKeyringSlotFrom wraps an already opened keyring.
func NewKeyringSlotFrom(ring keyring.Keyring) *KeyringSlot {
	return &KeyringSlot{ring: ring}
}

// Get returns the data of the item named key.
func (s *KeyringSlot) Get(_ context.Context, key string) ([]byte, error) {
	item, err := s.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading keyring item %q: %w", key, err)
	}
	return item.Data, nil
}

// Put stores data as the item named key.
func (s *KeyringSlot) Put(_ context.Context, key string, data []byte) error {
	err := s.ring.Set(keyring.Item{
		Key:         key,
		Data:        data,
		Label:       "todolist " + key,
		Description: "todolist snapshot",
	})
	if err != nil {
		return fmt.Errorf("writing keyring item %q: %w", key, err)
	}
	return nil
}

// Close is a no-op; keyrings hold no open handles.
func (s *KeyringSlot) Close() error { return nil }
