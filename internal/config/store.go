// Package config persists the server registry and converts it to and from
// OpenSSH client configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alpemreelmas/hop-cli/internal/registry"
)

// Store reads and writes one servers file. The path is fixed at
// construction; nothing here consults the environment.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Exists reports whether the servers file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load returns the stored registry. A missing or blank file is an empty
// registry. Unreadable files fail with ErrIO; anything that does not decode
// into valid, unique entries fails with ErrMalformed.
func (s *Store) Load() (*registry.Registry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("servers file not found, starting empty", "path", s.path)
			return registry.New()
		}
		return nil, ioError(s.path, err)
	}
	entries, err := Decode(data)
	if err != nil {
		return nil, malformed(s.path, err)
	}
	reg, err := registry.New(entries...)
	if err != nil {
		return nil, malformed(s.path, err)
	}
	slog.Debug("loaded servers", "path", s.path, "count", reg.Len())
	return reg, nil
}

// Save replaces the servers file with reg. The parent directory is created
// on first use and the file is swapped in with a rename, so a crash leaves
// either the old or the new contents.
func (s *Store) Save(reg *registry.Registry) error {
	data, err := Encode(reg.List())
	if err != nil {
		return ioError(s.path, err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return ioError(s.path, err)
	}
	slog.Debug("saved servers", "path", s.path, "count", reg.Len())
	return nil
}

// Init writes an empty servers file unless one already exists.
func (s *Store) Init() error {
	if s.Exists() {
		return nil
	}
	empty, err := registry.New()
	if err != nil {
		return err
	}
	return s.Save(empty)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	committed = true
	return nil
}
