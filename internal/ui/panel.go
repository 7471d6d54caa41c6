package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tasklist/internal/model"
)

// ProgressBar renders a Unicode progress bar with percentage.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	pct := int(float64(done) / float64(total) * 100)
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// PanelString frames inner with the current theme's border.
func PanelString(inner string) string {
	t := Current()
	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1).
		Render(inner)
}

// Panel writes lines to w inside a framed box.
func Panel(w io.Writer, lines []string) {
	fmt.Fprintln(w, PanelString(strings.Join(lines, "\n")))
}

// Checkbox is the themed box for an item state.
func Checkbox(done bool) string {
	t := Current()
	if done {
		return t.Success.Render(t.BoxChecked)
	}
	return t.Muted.Render(t.BoxUnchecked)
}

// ItemLine renders "<box> <text>", striking completed items through.
func ItemLine(it model.Item) string {
	text := it.Text
	if it.Completed {
		text = Current().Done.Render(text)
	}
	return Checkbox(it.Completed) + " " + text
}

// Header is the title line with the number of active items.
func Header(title string, c model.Counts) string {
	t := Current()
	return fmt.Sprintf("%s   %s",
		t.Title.Render(title),
		t.Muted.Render(fmt.Sprintf("%d left", c.Active)),
	)
}

// CountsLine is the "total • active • completed" summary.
func CountsLine(c model.Counts) string {
	t := Current()
	return fmt.Sprintf("%s %d total  %s %d active  %s %d completed",
		t.Accent.Render("Σ"), c.Total,
		t.Pending.Render(t.SymActive), c.Active,
		t.Success.Render(t.SymDone), c.Completed,
	)
}

// OK prints a success line to w.
func OK(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, t.Success.Render(t.SymDone+" "+msg))
}

// Fail prints an error line to w.
func Fail(w io.Writer, msg string) {
	fmt.Fprintln(w, Current().Error.Render("✖ "+msg))
}

// Hint prints a muted line to w.
func Hint(w io.Writer, msg string) {
	fmt.Fprintln(w, Current().Muted.Render(msg))
}
