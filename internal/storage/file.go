package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

type fileBackend struct {
	path string
}

// NewFileStore returns a store keeping the container in <dir>/<container>.json.
func NewFileStore(dir, container string, logger *slog.Logger) *Store {
	return newStore(container, &fileBackend{path: filepath.Join(dir, container+".json")}, logger)
}

func (f *fileBackend) read(_ context.Context) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage error reading %s: %w", f.path, err)
	}
	return data, true, nil
}

// write atomically replaces the container file.
func (f *fileBackend) write(_ context.Context, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}
	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

func (f *fileBackend) quarantine() (string, error) {
	backup := f.path + ".corrupt"
	if err := os.Rename(f.path, backup); err != nil {
		return "", err
	}
	return backup, nil
}

func (f *fileBackend) close() error { return nil }
