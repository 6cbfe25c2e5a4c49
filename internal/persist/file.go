package persist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileSlot stores each key as a file inside a directory.
type FileSlot struct {
	dir string
	ext string
}

// NewFileSlot returns a FileSlot rooted at dir, creating it if needed.
// Files are named key+ext.
func NewFileSlot(dir, ext string) (*FileSlot, error) {
	if dir == "" {
		return nil, errors.New("empty slot directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating slot directory %s: %w", dir, err)
	}
	return &FileSlot{dir: dir, ext: ext}, nil
}

// Get reads the file for key.
func (s *FileSlot) Get(_ context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading slot %s: %w", key, err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}
	return data, nil
}

// Put atomically replaces the file for key by writing a temporary file and
// renaming it into place.
func (s *FileSlot) Put(_ context.Context, key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing slot %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing slot %s: %w", key, err)
	}
	return nil
}

// Close is a no-op.
func (s *FileSlot) Close() error { return nil }

// Path returns the file that holds key.
func (s *FileSlot) Path(key string) string {
	return filepath.Join(s.dir, key+s.ext)
}

func (s *FileSlot) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid slot key %q", key)
	}
	return s.Path(key), nil
}
