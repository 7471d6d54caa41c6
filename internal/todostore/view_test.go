package todostore

import (
	"testing"

	"github.com/Makepad-fr/tasklist/internal/model"
)

func sample() model.Collection {
	return model.Collection{
		{ID: "4", Text: "Walk dog", Completed: false},
		{ID: "3", Text: "buy milk", Completed: true},
		{ID: "2", Text: "Do laundry", Completed: true},
		{ID: "1", Text: "read docs", Completed: false},
	}
}

func ids(c model.Collection) []string {
	out := make([]string, len(c))
	for i, it := range c {
		out[i] = it.ID
	}
	return out
}

func TestVisible(t *testing.T) {
	tests := []struct {
		name   string
		filter model.Filter
		query  string
		want   []string
	}{
		{"all no query", model.FilterAll, "", []string{"4", "3", "2", "1"}},
		{"active", model.FilterActive, "", []string{"4", "1"}},
		{"completed", model.FilterCompleted, "", []string{"3", "2"}},
		{"search is case-insensitive", model.FilterAll, "do", []string{"4", "2", "1"}},
		{"search query is trimmed", model.FilterAll, "  MILK ", []string{"3"}},
		{"blank query matches all", model.FilterActive, "   ", []string{"4", "1"}},
		{"filter then search", model.FilterCompleted, "do", []string{"2"}},
		{"no match", model.FilterAll, "zebra", []string{}},
		{"unknown filter acts as all", model.Filter("weird"), "", []string{"4", "3", "2", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Visible(sample(), tt.filter, tt.query))
			if !equalStrings(got, tt.want) {
				t.Errorf("Visible(%q, %q) = %v, want %v", tt.filter, tt.query, got, tt.want)
			}
		})
	}
}

func TestVisibleDoesNotAliasInput(t *testing.T) {
	col := sample()
	v := Visible(col, model.FilterAll, "")
	v[0].Text = "changed"
	if col[0].Text != "Walk dog" {
		t.Fatal("Visible returned a slice aliasing its input")
	}
}

func TestCounts(t *testing.T) {
	got := Counts(sample())
	want := model.Counts{Total: 4, Active: 2, Completed: 2}
	if got != want {
		t.Errorf("Counts = %+v, want %+v", got, want)
	}
	if got := Counts(nil); got != (model.Counts{}) {
		t.Errorf("Counts(nil) = %+v", got)
	}
}
