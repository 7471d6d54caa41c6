// Package tui is the interactive task editor. Every key that changes the
// list goes through the todostore; the list is rebuilt from the store's
// derived view afterwards.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tasklist/internal/model"
	"github.com/Makepad-fr/tasklist/internal/todostore"
	"github.com/Makepad-fr/tasklist/internal/ui"
)

const emptyMessage = "No tasks yet. Add a new one above."

// listItem adapts model.Item to bubbles/list.Item
type listItem struct {
	model.Item
}

func (i listItem) Title() string       { return i.Text }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.Text }

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeEdit
	modeSearch
	modeConfirmReset
)

// Model is the Bubble Tea model for the editor.
type Model struct {
	store *todostore.Store
	list  list.Model
	input textinput.Model // shared by add, edit and search

	mode   mode
	editID string // item being edited; may vanish before enter
	filter model.Filter
	query  string

	width, height int
}

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	prefix := "  "
	if index == m.Index() {
		prefix = ui.Current().Selected.Render("> ")
	}
	fmt.Fprint(w, prefix+ui.ItemLine(it.Item))
}

var (
	addBind    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editBind   = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	toggleBind = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	deleteBind = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	filterBind = key.NewBinding(key.WithKeys("tab", "1", "2", "3"), key.WithHelp("tab/1-3", "filter"))
	searchBind = key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search"))
	clearBind  = key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear completed"))
	resetBind  = key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset"))
	quitBind   = key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit"))
)

// New builds the editor model over s.
func New(s *todostore.Store) Model {
	l := list.New(nil, itemDelegate{}, 80, 16)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(true)
	l.SetShowHelp(true)
	l.DisableQuitKeybindings()
	l.Styles.HelpStyle = ui.Current().Help
	l.Styles.PaginationStyle = ui.Current().Help
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{addBind, editBind, toggleBind, deleteBind, filterBind, searchBind, quitBind}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{addBind, editBind, toggleBind, deleteBind, filterBind, searchBind, clearBind, resetBind, quitBind}
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 0 // SetValue truncates to the limit, so none is set

	m := Model{
		store:  s,
		list:   l,
		input:  ti,
		filter: model.FilterAll,
		width:  80,
		height: 24,
	}
	m.refresh()
	return m
}

// Run starts the editor on the alternate screen and blocks until quit.
func Run(s *todostore.Store) error {
	p := tea.NewProgram(New(s), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Filter returns the active filter.
func (m Model) Filter() model.Filter { return m.filter }

// Query returns the active search query.
func (m Model) Query() string { return m.query }

// refresh rebuilds the list from the store's derived view, keeping the
// cursor in range.
func (m *Model) refresh() {
	visible := m.store.Visible(m.filter, m.query)
	items := make([]list.Item, 0, len(visible))
	for _, it := range visible {
		items = append(items, listItem{it})
	}
	idx := m.list.Index()
	m.list.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx < 0 {
		idx = 0
	}
	m.list.Select(idx)
}

func (m Model) selected() (model.Item, bool) {
	if li, ok := m.list.SelectedItem().(listItem); ok {
		return li.Item, true
	}
	return model.Item{}, false
}

func (m *Model) openInput(md mode, value, placeholder string) tea.Cmd {
	m.mode = md
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Placeholder = placeholder
	m.resize()
	return m.input.Focus()
}

func (m *Model) closeInput() {
	m.mode = modeBrowse
	m.editID = ""
	m.input.SetValue("")
	m.input.Blur()
	m.resize()
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = ws.Width, ws.Height
		m.resize()
		return m, nil
	}

	switch m.mode {
	case modeAdd, modeEdit, modeSearch:
		return m.updateInput(msg)
	case modeConfirmReset:
		if x, ok := msg.(tea.KeyMsg); ok {
			if x.String() == "y" || x.String() == "Y" {
				m.store.Reset()
				m.refresh()
			}
			m.mode = modeBrowse
		}
		return m, nil
	}

	if x, ok := msg.(tea.KeyMsg); ok {
		switch x.String() {
		case "esc":
			if m.query != "" {
				m.query = ""
				m.refresh()
				return m, nil
			}
			return m, tea.Quit
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if it, ok := m.selected(); ok {
				m.store.Toggle(it.ID)
				m.refresh()
			}
			return m, nil
		case "d":
			if it, ok := m.selected(); ok {
				m.store.Remove(it.ID)
				m.refresh()
			}
			return m, nil
		case "a":
			return m, m.openInput(modeAdd, "", "What needs to be done?")
		case "e":
			if it, ok := m.selected(); ok {
				m.editID = it.ID
				return m, m.openInput(modeEdit, it.Text, "Edit task (empty deletes)")
			}
			return m, nil
		case "/":
			return m, m.openInput(modeSearch, m.query, "Search tasks…")
		case "tab":
			m.filter = m.filter.Next()
			m.refresh()
			return m, nil
		case "1", "2", "3":
			m.filter = model.Filters[x.String()[0]-'1']
			m.refresh()
			return m, nil
		case "c":
			m.store.ClearCompleted()
			m.refresh()
			return m, nil
		case "R":
			m.mode = modeConfirmReset
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if x, ok := msg.(tea.KeyMsg); ok {
		switch x.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "enter":
			switch m.mode {
			case modeAdd:
				before := m.store.Revision()
				m.store.Add(m.input.Value())
				if m.store.Revision() != before {
					m.list.Select(0)
				}
			case modeEdit:
				m.store.Rename(m.editID, m.input.Value())
			case modeSearch:
				m.query = strings.TrimSpace(m.input.Value())
			}
			m.closeInput()
			m.refresh()
			return m, nil
		case "esc":
			if m.mode == modeSearch {
				m.query = ""
			}
			m.closeInput()
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == modeSearch && m.input.Value() != m.query {
		m.query = m.input.Value()
		m.refresh()
	}
	return m, cmd
}

// chrome is the number of lines around the list: header, tabs, blank,
// footer, border and the optional input bar.
func (m Model) chrome() int {
	n := 6
	if m.mode != modeBrowse {
		n += 4
	}
	return n
}

func (m *Model) resize() {
	h := m.height - m.chrome()
	if h < 3 {
		h = 3
	}
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	m.list.SetSize(w, h)
	m.input.Width = w - 6
}

func (m Model) tabs() string {
	t := ui.Current()
	parts := make([]string, 0, len(model.Filters))
	for _, f := range model.Filters {
		label := f.Label()
		if f == m.filter {
			parts = append(parts, t.Selected.Render(" "+label+" "))
		} else {
			parts = append(parts, t.Muted.Render(" "+label+" "))
		}
	}
	line := strings.Join(parts, " ")
	if m.query != "" && m.mode != modeSearch {
		line += "   " + t.Accent.Render("/ "+m.query)
	}
	return line
}

func (m Model) View() string {
	t := ui.Current()
	counts := m.store.Counts()

	var b strings.Builder
	b.WriteString(ui.Header("Tasks", counts))
	b.WriteString("\n")
	b.WriteString(m.tabs())
	b.WriteString("\n\n")

	if len(m.list.Items()) == 0 {
		msg := emptyMessage
		if counts.Total > 0 {
			msg = "Nothing matches this view."
		}
		b.WriteString(t.Muted.Render(msg))
		b.WriteString("\n")
	} else {
		b.WriteString(m.list.View())
		b.WriteString("\n")
	}

	b.WriteString(ui.CountsLine(counts))

	switch m.mode {
	case modeAdd, modeEdit, modeSearch:
		title := map[mode]string{
			modeAdd:    "Add task",
			modeEdit:   "Edit task",
			modeSearch: "Search",
		}[m.mode]
		bar := lipgloss.NewStyle().Border(t.Border).BorderForeground(t.BorderColor).Padding(0, 1)
		b.WriteString("\n")
		b.WriteString(bar.Render(t.Accent.Render(title) + "\n" + m.input.View()))
	case modeConfirmReset:
		b.WriteString("\n")
		b.WriteString(t.Error.Render("Remove all tasks? y/N"))
	}
	return ui.PanelString(b.String())
}
