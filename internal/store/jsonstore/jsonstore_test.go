package jsonstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Makepad-fr/tasklist/internal/store"
)

func TestStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	t.Run("missing slot is ErrNotFound", func(t *testing.T) {
		if _, err := s.Get("todos-v1"); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("put then get", func(t *testing.T) {
		if err := s.Put("todos-v1", []byte(`{"version":1}`)); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, err := s.Get("todos-v1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if string(got) != `{"version":1}` {
			t.Errorf("Get = %q", got)
		}
		if _, err := os.Stat(filepath.Join(dir, "todos-v1.json")); err != nil {
			t.Errorf("slot file: %v", err)
		}
	})

	t.Run("put overwrites and leaves no temp files", func(t *testing.T) {
		if err := s.Put("todos-v1", []byte("second")); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, _ := s.Get("todos-v1")
		if string(got) != "second" {
			t.Errorf("Get = %q", got)
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			names := make([]string, 0, len(entries))
			for _, e := range entries {
				names = append(names, e.Name())
			}
			t.Errorf("dir entries = %v, want only the slot file", names)
		}
	})

	t.Run("rejects path-like slot names", func(t *testing.T) {
		for _, key := range []string{"", "..", "a/b", `a\b`} {
			if err := s.Put(key, []byte("x")); err == nil {
				t.Errorf("Put(%q) succeeded", key)
			}
			if _, err := s.Get(key); err == nil || errors.Is(err, store.ErrNotFound) {
				t.Errorf("Get(%q) err = %v, want validation error", key, err)
			}
		}
	})
}

func TestNewRejectsEmptyDir(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatal("New with blank dir succeeded")
	}
}
