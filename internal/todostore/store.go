// Package todostore owns the task collection and every change made to it.
//
// All operations normalize their input and never fail: blank text is ignored
// (or, on rename, treated as a delete) and unknown ids are no-ops. Each
// effective change swaps in a new snapshot and hands it to the Persistence.
package todostore

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Makepad-fr/tasklist/internal/model"
)

// Persistence hydrates the store once and receives every new snapshot.
// Save must not fail loudly; the in-memory state is already updated.
type Persistence interface {
	Load() model.Collection
	Save(model.Collection)
}

// Store holds the current snapshot. It is meant for a single mutator.
type Store struct {
	items   model.Collection
	rev     uint64
	persist Persistence

	newID  func() string
	now    func() time.Time
	logger *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the uuid-based id source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithClock replaces time.Now for CreatedAt stamps.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) { s.now = fn }
}

// WithLogger sets the logger used for debug tracing of mutations.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a store hydrated from p. A nil p keeps everything in memory.
func New(p Persistence, opts ...Option) *Store {
	s := &Store{
		persist: p,
		newID:   uuid.NewString,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if p != nil {
		s.items = p.Load()
	}
	if s.items == nil {
		s.items = model.Collection{}
	}
	s.logger.Debug("store hydrated", "items", len(s.items))
	return s
}

// Items returns the current snapshot. Callers must not modify it.
func (s *Store) Items() model.Collection { return s.items }

// Revision increases by one on every effective change.
func (s *Store) Revision() uint64 { return s.rev }

// Get returns the item with id, if present.
func (s *Store) Get(id string) (model.Item, bool) {
	if i := s.items.Index(id); i >= 0 {
		return s.items[i], true
	}
	return model.Item{}, false
}

// Add prepends a new item with trimmed text. Blank text is a no-op.
func (s *Store) Add(text string) model.Collection {
	text = strings.TrimSpace(text)
	if text == "" {
		return s.items
	}
	it := model.Item{
		ID:        s.newID(),
		Text:      text,
		Completed: false,
		CreatedAt: s.now(),
	}
	next := make(model.Collection, 0, len(s.items)+1)
	next = append(next, it)
	next = append(next, s.items...)
	s.commit("add", next)
	return s.items
}

// Toggle flips Completed on the item with id.
func (s *Store) Toggle(id string) model.Collection {
	i := s.items.Index(id)
	if i < 0 {
		return s.items
	}
	next := s.items.Clone()
	next[i].Completed = !next[i].Completed
	s.commit("toggle", next)
	return s.items
}

// Rename replaces the text of id with trimmed text.
// Blank text removes the item.
func (s *Store) Rename(id, text string) model.Collection {
	i := s.items.Index(id)
	if i < 0 {
		return s.items
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return s.Remove(id)
	}
	if s.items[i].Text == text {
		return s.items
	}
	next := s.items.Clone()
	next[i].Text = text
	s.commit("rename", next)
	return s.items
}

// Remove deletes the item with id.
func (s *Store) Remove(id string) model.Collection {
	i := s.items.Index(id)
	if i < 0 {
		return s.items
	}
	next := make(model.Collection, 0, len(s.items)-1)
	next = append(next, s.items[:i]...)
	next = append(next, s.items[i+1:]...)
	s.commit("remove", next)
	return s.items
}

// ClearCompleted drops every completed item.
func (s *Store) ClearCompleted() model.Collection {
	next := make(model.Collection, 0, len(s.items))
	for _, it := range s.items {
		if !it.Completed {
			next = append(next, it)
		}
	}
	if len(next) == len(s.items) {
		return s.items
	}
	s.commit("clear-completed", next)
	return s.items
}

// Reset empties the collection. It always saves, so a damaged slot is
// overwritten even when nothing was loaded from it.
func (s *Store) Reset() model.Collection {
	s.commit("reset", model.Collection{})
	return s.items
}

// Visible is the filtered and searched view of the current snapshot.
func (s *Store) Visible(f model.Filter, query string) model.Collection {
	return Visible(s.items, f, query)
}

// Counts summarizes the current snapshot.
func (s *Store) Counts() model.Counts { return Counts(s.items) }

func (s *Store) commit(op string, next model.Collection) {
	s.items = next
	s.rev++
	s.logger.Debug("mutation", "op", op, "items", len(next), "rev", s.rev)
	if s.persist != nil {
		s.persist.Save(next)
	}
}
