package todostore

import (
	"fmt"
	"testing"
	"time"

	"github.com/Makepad-fr/tasklist/internal/model"
)

// recorder is an in-memory Persistence that keeps every saved snapshot.
type recorder struct {
	initial model.Collection
	saves   []model.Collection
}

func (r *recorder) Load() model.Collection   { return r.initial }
func (r *recorder) Save(c model.Collection) { r.saves = append(r.saves, c) }

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func fixedClock() time.Time {
	return time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
}

func newTestStore(t *testing.T) (*Store, *recorder) {
	t.Helper()
	rec := &recorder{}
	s := New(rec, WithIDGenerator(seqIDs()), WithClock(fixedClock))
	return s, rec
}

func texts(c model.Collection) []string {
	out := make([]string, len(c))
	for i, it := range c {
		out[i] = it.Text
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAddBlankIsNoop(t *testing.T) {
	s, rec := newTestStore(t)
	for _, in := range []string{"", "   ", "\t\n"} {
		s.Add(in)
	}
	if len(s.Items()) != 0 {
		t.Fatalf("blank add changed collection: %v", texts(s.Items()))
	}
	if len(rec.saves) != 0 || s.Revision() != 0 {
		t.Errorf("blank add saved %d times, rev %d", len(rec.saves), s.Revision())
	}
}

func TestAddPrependsNewestFirst(t *testing.T) {
	s, rec := newTestStore(t)
	s.Add("buy milk")
	got := s.Add("  walk dog ")

	if want := []string{"walk dog", "buy milk"}; !equalStrings(texts(got), want) {
		t.Fatalf("items = %v, want %v", texts(got), want)
	}
	for _, it := range got {
		if it.Completed {
			t.Errorf("%q created completed", it.Text)
		}
		if !it.CreatedAt.Equal(fixedClock()) {
			t.Errorf("%q CreatedAt = %v", it.Text, it.CreatedAt)
		}
	}
	if got[0].ID != "id-2" || got[1].ID != "id-1" {
		t.Errorf("ids = %s, %s", got[0].ID, got[1].ID)
	}
	if len(rec.saves) != 2 {
		t.Errorf("saves = %d, want 2", len(rec.saves))
	}
}

func TestSnapshotsAreNotMutated(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add("a")
	before := s.Items()
	s.Toggle(before[0].ID)
	if before[0].Completed {
		t.Fatal("toggle mutated the previous snapshot")
	}
	s.Rename(before[0].ID, "b")
	if before[0].Text != "a" {
		t.Fatal("rename mutated the previous snapshot")
	}
}

func TestToggleTwiceRestores(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add("a")
	s.Add("b")
	s.Add("c")
	for _, it := range s.Items() {
		orig := it.Completed
		s.Toggle(it.ID)
		s.Toggle(it.ID)
		got, ok := s.Get(it.ID)
		if !ok || got.Completed != orig {
			t.Errorf("toggle twice on %q: completed = %v, want %v", it.Text, got.Completed, orig)
		}
	}
	if len(s.Items()) != 3 {
		t.Errorf("size changed to %d", len(s.Items()))
	}
}

func TestMissingIDIsNoop(t *testing.T) {
	s, rec := newTestStore(t)
	s.Add("a")
	saves := len(rec.saves)
	rev := s.Revision()

	s.Toggle("nope")
	s.Rename("nope", "x")
	s.Rename("nope", "")
	s.Remove("nope")

	if len(rec.saves) != saves || s.Revision() != rev {
		t.Errorf("missing-id ops saved: saves %d->%d rev %d->%d", saves, len(rec.saves), rev, s.Revision())
	}
	if want := []string{"a"}; !equalStrings(texts(s.Items()), want) {
		t.Errorf("items = %v", texts(s.Items()))
	}
}

func TestRename(t *testing.T) {
	t.Run("trims text", func(t *testing.T) {
		s, _ := newTestStore(t)
		s.Add("old")
		id := s.Items()[0].ID
		s.Rename(id, "  new text  ")
		got, _ := s.Get(id)
		if got.Text != "new text" {
			t.Errorf("text = %q, want %q", got.Text, "new text")
		}
	})

	t.Run("blank removes", func(t *testing.T) {
		s, _ := newTestStore(t)
		s.Add("keep")
		s.Add("drop")
		id := s.Items()[0].ID
		s.Rename(id, "   ")
		if _, ok := s.Get(id); ok {
			t.Fatal("blank rename kept the item")
		}
		if want := []string{"keep"}; !equalStrings(texts(s.Items()), want) {
			t.Errorf("items = %v", texts(s.Items()))
		}
	})

	t.Run("same text does not save", func(t *testing.T) {
		s, rec := newTestStore(t)
		s.Add("same")
		n := len(rec.saves)
		s.Rename(s.Items()[0].ID, " same ")
		if len(rec.saves) != n {
			t.Errorf("unchanged rename saved")
		}
	})
}

func TestRemove(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add("a")
	s.Add("b")
	s.Add("c")
	s.Remove(s.Items()[1].ID)
	if want := []string{"c", "a"}; !equalStrings(texts(s.Items()), want) {
		t.Errorf("items = %v, want %v", texts(s.Items()), want)
	}
}

func TestClearCompletedScenario(t *testing.T) {
	s, rec := newTestStore(t)
	s.Add("A")
	idA := s.Items()[0].ID
	s.Add("B")
	s.Toggle(idA)
	s.ClearCompleted()

	if want := []string{"B"}; !equalStrings(texts(s.Items()), want) {
		t.Fatalf("items = %v, want %v", texts(s.Items()), want)
	}
	want := model.Counts{Total: 1, Active: 1, Completed: 0}
	if got := s.Counts(); got != want {
		t.Errorf("counts = %+v, want %+v", got, want)
	}

	n := len(rec.saves)
	s.ClearCompleted()
	if len(rec.saves) != n {
		t.Error("clear with nothing completed saved")
	}
}

func TestResetAlwaysSaves(t *testing.T) {
	s, rec := newTestStore(t)
	s.Reset()
	if len(rec.saves) != 1 || len(rec.saves[0]) != 0 {
		t.Fatalf("reset on empty: saves = %v", rec.saves)
	}
	s.Add("a")
	s.Add("b")
	s.Reset()
	if len(s.Items()) != 0 {
		t.Errorf("items after reset = %v", texts(s.Items()))
	}
	if last := rec.saves[len(rec.saves)-1]; len(last) != 0 {
		t.Errorf("last save = %v", texts(last))
	}
}

func TestHydratesFromPersistence(t *testing.T) {
	rec := &recorder{initial: model.Collection{
		{ID: "x", Text: "from disk", CreatedAt: fixedClock()},
	}}
	s := New(rec)
	if want := []string{"from disk"}; !equalStrings(texts(s.Items()), want) {
		t.Fatalf("items = %v", texts(s.Items()))
	}
	if len(rec.saves) != 0 {
		t.Error("hydration triggered a save")
	}
}

func TestNilPersistence(t *testing.T) {
	s := New(nil)
	s.Add("memory only")
	s.Reset()
	if s.Items() == nil {
		t.Fatal("Items() returned nil collection")
	}
}

func TestDefaultIDsAreUnique(t *testing.T) {
	s := New(nil)
	const n = 10000
	for i := 0; i < n; i++ {
		s.Add("task")
	}
	seen := make(map[string]struct{}, n)
	for _, it := range s.Items() {
		if _, dup := seen[it.ID]; dup {
			t.Fatalf("duplicate id %q", it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	if len(seen) != n {
		t.Errorf("got %d distinct ids, want %d", len(seen), n)
	}
}
