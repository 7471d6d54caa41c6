package jsonstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Makepad-fr/tasklist/internal/store"
)

// File-backed slots. One human-readable file per slot, <dir>/<slot>.json.
// No locking; a single local user writes one slot at a time.

const fileExt = ".json"

// Ensure Store implements store.KV
var _ store.KV = (*Store)(nil)

// Store keeps each slot in its own file under Dir.
type Store struct {
	Dir string
}

// New creates dir (0o700) if needed and returns a store rooted there.
func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("jsonstore: empty data dir")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	return &Store{Dir: dir}, nil
}

func (s *Store) slotPath(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid slot name %q", key)
	}
	return filepath.Join(s.Dir, key+fileExt), nil
}

// Get reads the slot file. A missing file is store.ErrNotFound.
func (s *Store) Get(key string) ([]byte, error) {
	p, err := s.slotPath(key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return b, nil
}

// Put writes value to a temp file next to the slot and renames it over
// the slot, so a crash leaves either the old or the new contents.
func (s *Store) Put(key string, value []byte) error {
	p, err := s.slotPath(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.Dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return nil }
