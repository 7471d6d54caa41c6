package model

import (
	"fmt"
	"strings"
	"time"
)

// Item is the domain model for a task entry.
// ID and CreatedAt are fixed at creation; Text is never blank.
type Item struct {
	ID        string
	Text      string
	Completed bool
	CreatedAt time.Time
}

// Collection is the ordered task list, newest first.
// A Collection value is a snapshot: mutations build a new slice.
type Collection []Item

// Clone returns a copy that shares no backing array with c.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	copy(out, c)
	return out
}

// Index returns the position of id in c, or -1.
func (c Collection) Index(id string) int {
	for i, it := range c {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Filter selects a subset of the collection for display.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Filters lists every filter in display order.
var Filters = []Filter{FilterAll, FilterActive, FilterCompleted}

// ParseFilter accepts a filter name, case-insensitively. Empty means all.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "active":
		return FilterActive, nil
	case "completed", "done":
		return FilterCompleted, nil
	}
	return FilterAll, fmt.Errorf("unknown filter %q (want all, active or completed)", s)
}

// Next cycles all -> active -> completed -> all.
func (f Filter) Next() Filter {
	switch f {
	case FilterAll:
		return FilterActive
	case FilterActive:
		return FilterCompleted
	default:
		return FilterAll
	}
}

// Label is the capitalized name used in headers.
func (f Filter) Label() string {
	s := string(f)
	if s == "" {
		s = string(FilterAll)
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Counts summarizes a collection.
type Counts struct {
	Total     int
	Active    int
	Completed int
}
