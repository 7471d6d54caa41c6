package todostore

import (
	"strings"

	"github.com/Makepad-fr/tasklist/internal/model"
)

// Visible restricts col by filter, then by a case-insensitive substring
// match of the trimmed query. Order is preserved. An unknown filter
// behaves like FilterAll.
func Visible(col model.Collection, f model.Filter, query string) model.Collection {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make(model.Collection, 0, len(col))
	for _, it := range col {
		switch f {
		case model.FilterActive:
			if it.Completed {
				continue
			}
		case model.FilterCompleted:
			if !it.Completed {
				continue
			}
		}
		if q != "" && !strings.Contains(strings.ToLower(it.Text), q) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Counts returns total, active and completed counts for col.
func Counts(col model.Collection) model.Counts {
	active := 0
	for _, it := range col {
		if !it.Completed {
			active++
		}
	}
	return model.Counts{
		Total:     len(col),
		Active:    active,
		Completed: len(col) - active,
	}
}
