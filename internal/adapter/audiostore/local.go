package audiostore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/seu-repo/voxmart/internal/ports"
)

// ErrNotFound is returned when no clip exists under the given filename.
var ErrNotFound = errors.New("audio clip not found")

// LocalStore keeps synthesized clips as plain files under one directory.
// Filenames are opaque to callers; anything with a path separator is
// rejected so the store never serves files outside its root.
type LocalStore struct {
	dir string
	log *zap.Logger
}

func NewLocalStore(dir string, log *zap.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating audio directory: %w", err)
	}
	return &LocalStore{dir: dir, log: log}, nil
}

var _ ports.AudioStore = (*LocalStore)(nil)

func (s *LocalStore) Put(ctx context.Context, filename string, data []byte) error {
	path, err := s.resolve(filename)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing audio clip: %w", err)
	}
	return nil
}

func (s *LocalStore) Open(ctx context.Context, filename string) ([]byte, error) {
	path, err := s.resolve(filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading audio clip: %w", err)
	}
	return data, nil
}

func (s *LocalStore) Remove(ctx context.Context, filename string) error {
	path, err := s.resolve(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing audio clip: %w", err)
	}
	return nil
}

func (s *LocalStore) resolve(filename string) (string, error) {
	if filename == "" || strings.ContainsAny(filename, `/\`) || filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid audio filename %q", filename)
	}
	return filepath.Join(s.dir, filename), nil
}
