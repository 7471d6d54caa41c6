package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Makepad-fr/tasklist/internal/model"
	"github.com/Makepad-fr/tasklist/internal/persist"
	"github.com/Makepad-fr/tasklist/internal/todostore"
	"github.com/Makepad-fr/tasklist/internal/tui"
	"github.com/Makepad-fr/tasklist/internal/ui"
)

// Options carry the store and output settings from the root command.
type Options struct {
	Store *todostore.Store
	Group bool // list grouped by active/completed

	Stdout io.Writer
	Stderr io.Writer

	// RunUI starts the interactive editor. Defaults to tui.Run.
	RunUI func(*todostore.Store) error
}

type runner struct {
	store *todostore.Store
	group bool
	out   io.Writer
	errw  io.Writer
	runUI func(*todostore.Store) error
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, opt Options) int {
	r := &runner{
		store: opt.Store,
		group: opt.Group,
		out:   opt.Stdout,
		errw:  opt.Stderr,
		runUI: opt.RunUI,
	}
	if r.out == nil {
		r.out = os.Stdout
	}
	if r.errw == nil {
		r.errw = os.Stderr
	}
	if r.runUI == nil {
		r.runUI = tui.Run
	}

	if len(args) == 0 {
		return r.doUI()
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(r.out)
		return 0

	case "ui":
		return r.doUI()

	case "ls":
		return r.doList(a)

	case "add":
		if len(a) == 0 {
			return r.usage("tasklist add <text...>")
		}
		return r.doAdd(strings.Join(a, " "))

	case "done":
		if len(a) != 1 {
			return r.usage("tasklist done <ref>")
		}
		return r.doToggle(a[0])

	case "edit":
		if len(a) < 1 {
			return r.usage("tasklist edit <ref> <text...>")
		}
		return r.doEdit(a[0], strings.Join(a[1:], " "))

	case "rm":
		if len(a) != 1 {
			return r.usage("tasklist rm <ref>")
		}
		return r.doRemove(a[0])

	case "clear":
		return r.doClear()

	case "reset":
		r.store.Reset()
		ui.OK(r.out, "all tasks removed")
		return 0

	case "export":
		return r.doExport()
	}

	ui.Fail(r.errw, "unknown subcommand: "+cmd)
	fmt.Fprintln(r.errw)
	PrintHelp(r.errw)
	return 2
}

// PrintHelp writes the usage text to w.
func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `tasklist - keep a list of things to do

Usage:
  tasklist [flags] [subcommand] [args]

Subcommands:
  ui                     Interactive editor (default)
  add <text...>          Add a new task (text can be multiple words)
  ls [-filter f] [-search q]
                         List tasks; f is all, active or completed
  done <ref>             Toggle a task between active and completed
  edit <ref> <text...>   Change the text of a task (empty text removes it)
  rm <ref>               Remove a task
  clear                  Remove all completed tasks
  reset                  Remove every task
  export                 Print the stored list as JSON
  help                   Show this help

<ref> is the 1-based number shown by ls, or a task id (a unique prefix is enough).

Flags:
  -config path  -backend file|sqlite|memory  -data-dir dir  -slot name
  -theme classic|neon|mono  -log-level level  -log-format text|json|logfmt
  -log-file path  -group

Examples:
  tasklist add "Buy milk"
  tasklist ls -filter active
  tasklist done 2
  tasklist edit 1 Buy oat milk
  tasklist rm 3
`)
}

func (r *runner) usage(line string) int {
	ui.Fail(r.errw, "usage: "+line)
	return 2
}

// -------------- subcommand impls ----------------

func (r *runner) doUI() int {
	if err := r.runUI(r.store); err != nil {
		ui.Fail(r.errw, "ui: "+err.Error())
		return 1
	}
	return 0
}

func (r *runner) doList(args []string) int {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.SetOutput(r.errw)
	filterName := fs.String("filter", "all", "all, active or completed")
	query := fs.String("search", "", "case-insensitive text to look for")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		return r.usage("tasklist ls [-filter f] [-search q]")
	}
	f, err := model.ParseFilter(*filterName)
	if err != nil {
		ui.Fail(r.errw, "ls: "+err.Error())
		return 2
	}

	items := r.store.Items()
	visible := r.store.Visible(f, *query)
	c := r.store.Counts()

	t := ui.Current()
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		t.Title.Render("Tasks"),
		t.Success.Render(t.SymDone), c.Completed,
		t.Pending.Render(t.SymActive), c.Active,
		t.Accent.Render("Total"), c.Total,
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, t.Muted.Render(ui.ProgressBar(c.Completed, c.Total, 28)))
	if f != model.FilterAll || strings.TrimSpace(*query) != "" {
		lines = append(lines, t.Muted.Render(viewLabel(f, *query)))
	}
	lines = append(lines, "")

	if r.group {
		lines = append(lines, groupLines(items, visible)...)
	} else {
		lines = append(lines, flatLines(items, visible)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Muted.Render("Tip: add with `tasklist add \"Buy milk\"`"))
	ui.Panel(r.out, lines)
	return 0
}

func (r *runner) doAdd(text string) int {
	if strings.TrimSpace(text) == "" {
		ui.Fail(r.errw, "add: empty text")
		return 2
	}
	r.store.Add(text)
	ui.OK(r.out, "added")
	return 0
}

func (r *runner) doToggle(ref string) int {
	it, code := r.resolve(ref)
	if code != 0 {
		return code
	}
	r.store.Toggle(it.ID)
	if now, _ := r.store.Get(it.ID); now.Completed {
		ui.OK(r.out, "completed: "+it.Text)
	} else {
		ui.OK(r.out, "reopened: "+it.Text)
	}
	return 0
}

func (r *runner) doEdit(ref, text string) int {
	it, code := r.resolve(ref)
	if code != 0 {
		return code
	}
	r.store.Rename(it.ID, text)
	if _, ok := r.store.Get(it.ID); !ok {
		ui.OK(r.out, "removed")
		return 0
	}
	ui.OK(r.out, "renamed")
	return 0
}

func (r *runner) doRemove(ref string) int {
	it, code := r.resolve(ref)
	if code != 0 {
		return code
	}
	r.store.Remove(it.ID)
	ui.OK(r.out, "removed")
	return 0
}

func (r *runner) doClear() int {
	before := r.store.Counts().Total
	r.store.ClearCompleted()
	n := before - r.store.Counts().Total
	ui.OK(r.out, fmt.Sprintf("cleared %d completed", n))
	return 0
}

func (r *runner) doExport() int {
	b, err := persist.Encode(r.store.Items())
	if err != nil {
		ui.Fail(r.errw, "export: "+err.Error())
		return 1
	}
	if _, err := r.out.Write(b); err != nil {
		return 1
	}
	return 0
}

// resolve maps a ref to an item. On failure it reports and returns exit code 2.
func (r *runner) resolve(ref string) (model.Item, int) {
	it, err := resolveRef(r.store.Items(), ref)
	if err != nil {
		ui.Fail(r.errw, err.Error())
		ui.Hint(r.errw, "Hint: run `tasklist ls` to see valid numbers and ids")
		return model.Item{}, 2
	}
	return it, 0
}

// resolveRef accepts a 1-based position, an exact id or a unique id prefix.
func resolveRef(items model.Collection, ref string) (model.Item, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Item{}, errors.New("empty reference")
	}
	n, numErr := strconv.Atoi(ref)
	if numErr == nil && n >= 1 && n <= len(items) {
		return items[n-1], nil
	}
	if i := items.Index(ref); i >= 0 {
		return items[i], nil
	}
	// Digits that are not a valid position may still be an id prefix.
	var found []model.Item
	for _, it := range items {
		if strings.HasPrefix(it.ID, ref) {
			found = append(found, it)
		}
	}
	switch len(found) {
	case 0:
		if numErr == nil {
			return model.Item{}, fmt.Errorf("index out of range: have %d, got %d", len(items), n)
		}
		return model.Item{}, fmt.Errorf("no task with id %q", ref)
	case 1:
		return found[0], nil
	}
	return model.Item{}, fmt.Errorf("id prefix %q matches %d tasks", ref, len(found))
}

// -------------- rendering helpers --------------

func viewLabel(f model.Filter, query string) string {
	s := "Showing " + strings.ToLower(f.Label())
	if q := strings.TrimSpace(query); q != "" {
		s += fmt.Sprintf(" matching %q", q)
	}
	return s
}

// flatLines numbers visible items by their position in the full list,
// so the numbers stay valid refs under any filter.
func flatLines(all, visible model.Collection) []string {
	if len(visible) == 0 {
		if len(all) == 0 {
			return []string{ui.Current().Muted.Render("no tasks")}
		}
		return []string{ui.Current().Muted.Render("nothing matches")}
	}
	out := make([]string, 0, len(visible))
	for _, it := range visible {
		idx := ui.Current().Muted.Render(fmt.Sprintf("%2d.", all.Index(it.ID)+1))
		text := it.Text
		if r := []rune(text); len(r) > 80 {
			text = string(r[:77]) + "..."
		}
		it.Text = text
		out = append(out, fmt.Sprintf("%s %s %s", idx, ui.ItemLine(it), ui.Current().Muted.Render(shortID(it.ID))))
	}
	return out
}

func groupLines(all, visible model.Collection) []string {
	var active, done model.Collection
	for _, it := range visible {
		if it.Completed {
			done = append(done, it)
		} else {
			active = append(active, it)
		}
	}
	t := ui.Current()
	var lines []string
	lines = append(lines, t.Accent.Render("Active"))
	if len(active) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(all, active)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Accent.Render("Completed"))
	if len(done) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(all, done)...)
	}
	return lines
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
