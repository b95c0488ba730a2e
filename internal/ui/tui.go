// Package ui renders tasks and provides the interactive terminal interface.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nibzard/taskman/internal/todo"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

// tuiConfig holds TUI configuration.
type tuiConfig struct {
	sortKey todo.SortKey
	styles  Styles
	logger  *log.Logger
}

// WithSortKey sorts the list once on start.
func WithSortKey(k todo.SortKey) TUIOption {
	return func(c *tuiConfig) {
		c.sortKey = k
	}
}

// WithStyles overrides the color scheme.
func WithStyles(st Styles) TUIOption {
	return func(c *tuiConfig) {
		c.styles = st
	}
}

// WithLogger logs save failures.
func WithLogger(logger *log.Logger) TUIOption {
	return func(c *tuiConfig) {
		c.logger = logger
	}
}

// RunTUI runs the terminal UI over list until the user quits or ctx is done.
// The list is saved after every change and once more on exit.
func RunTUI(ctx context.Context, list *todo.List, opts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := newTUIModel(list, opts...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := program.Run()
	saveErr := list.Save()
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return errors.Join(runErr, saveErr)
	}
	return saveErr
}

// inputMode is the prompt currently shown, if any.
type inputMode int

const (
	modeBrowse inputMode = iota
	modeAddTitle
	modeAddPriority
	modeAddDeadline
	modeRename
	modeSearch
)

func (m inputMode) prompt() string {
	switch m {
	case modeAddTitle:
		return "Title: "
	case modeAddPriority:
		return "Priority (1 High, 2 Medium, 3 Low): "
	case modeAddDeadline:
		return "Deadline (YYYY-MM-DD, empty for none): "
	case modeRename:
		return "New title: "
	case modeSearch:
		return "Search: "
	default:
		return ""
	}
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Done   key.Binding
	Delete key.Binding
	Add    key.Binding
	Rename key.Binding
	Search key.Binding
	Clear  key.Binding
	Sort   key.Binding
	Filter key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Done:   key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space/x", "mark done")),
		Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove")),
		Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Rename: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "rename")),
		Search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Clear:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear search")),
		Sort:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle sort")),
		Filter: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "cycle filter")),
		Help:   key.NewBinding(key.WithKeys("h", "?"), key.WithHelp("h/?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "save and quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Done, k.Add, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Done, k.Delete},
		{k.Add, k.Rename, k.Search, k.Clear},
		{k.Sort, k.Filter, k.Help, k.Quit},
	}
}

type tuiModel struct {
	keys     keyMap
	help     help.Model
	list     *todo.List
	styles   Styles
	logger   *log.Logger
	cursor   int
	sortIdx  int // index into todo.SortKeys, -1 for insertion order
	filter   int // index into todo.FilterModes
	query    string
	mode     inputMode
	input    textinput.Model
	pending  [2]string // title and priority collected while adding
	status   []string
	showHelp bool
	quitting bool
}

func newTUIModel(list *todo.List, opts ...TUIOption) *tuiModel {
	c := &tuiConfig{styles: DefaultStyles()}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}

	ti := textinput.New()
	ti.Width = 50

	m := &tuiModel{
		keys:    defaultKeyMap(),
		help:    help.New(),
		list:    list,
		styles:  c.styles,
		logger:  c.logger,
		sortIdx: -1,
		input:   ti,
	}
	if c.sortKey != "" {
		for i, k := range todo.SortKeys {
			if k == c.sortKey {
				m.sortIdx = i
				m.applySort()
			}
		}
	}
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.mode != modeBrowse {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}
	if keyMsg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}
	if m.mode != modeBrowse {
		return m.updateInput(keyMsg)
	}
	return m.updateBrowse(keyMsg)
}

func (m *tuiModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = nil
	visible := m.visible()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Done):
		if e, ok := m.selected(visible); ok {
			m.apply("Completed", m.list.MarkDone(e.Index))
		}
	case key.Matches(msg, m.keys.Delete):
		if e, ok := m.selected(visible); ok {
			m.apply("Removed", m.list.Remove(e.Index))
		}
	case key.Matches(msg, m.keys.Add):
		return m, m.startInput(modeAddTitle, "")
	case key.Matches(msg, m.keys.Rename):
		if e, ok := m.selected(visible); ok {
			return m, m.startInput(modeRename, e.Task.Title)
		}
	case key.Matches(msg, m.keys.Search):
		return m, m.startInput(modeSearch, m.query)
	case key.Matches(msg, m.keys.Clear):
		m.query = ""
	case key.Matches(msg, m.keys.Sort):
		m.sortIdx = (m.sortIdx + 1) % len(todo.SortKeys)
		m.applySort()
		m.status = append(m.status, "Sorted by "+string(todo.SortKeys[m.sortIdx])+".")
		m.save()
	case key.Matches(msg, m.keys.Filter):
		m.filter = (m.filter + 1) % len(todo.FilterModes)
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	}
	m.clampCursor()
	return m, nil
}

func (m *tuiModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.endInput()
		m.status = []string{NoticeText(todo.NoticeCancelled)}
		return m, nil
	case tea.KeyEnter:
		m.submit(m.input.Value())
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *tuiModel) startInput(mode inputMode, value string) tea.Cmd {
	m.mode = mode
	m.input.Prompt = mode.prompt()
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *tuiModel) endInput() {
	m.mode = modeBrowse
	m.input.Blur()
	m.input.Reset()
}

func (m *tuiModel) submit(value string) {
	switch m.mode {
	case modeAddTitle:
		m.pending[0] = value
		m.startInput(modeAddPriority, "")
	case modeAddPriority:
		m.pending[1] = value
		m.startInput(modeAddDeadline, "")
	case modeAddDeadline:
		m.endInput()
		m.apply("Added", m.list.Add(m.pending[0], m.pending[1], value))
		m.pending = [2]string{}
	case modeRename:
		e, ok := m.selected(m.visible())
		m.endInput()
		if ok {
			m.apply("Renamed to", m.list.Rename(e.Index, value))
		}
	case modeSearch:
		m.endInput()
		m.query = strings.TrimSpace(value)
		if m.query != "" && len(m.visible()) == 0 {
			m.status = []string{NoticeText(todo.NoticeNoMatches)}
		}
	}
	m.clampCursor()
}

// apply records a result and saves when it changed the list.
func (m *tuiModel) apply(action string, r todo.Result) {
	m.status = Describe(action, r, m.styles)
	if r.OK() {
		m.save()
	}
}

func (m *tuiModel) save() {
	if err := m.list.Save(); err != nil {
		m.logger.Error("save failed", "err", err)
		m.status = append(m.status, m.styles.Render(m.styles.Error, "Save failed: "+err.Error()))
	}
}

func (m *tuiModel) applySort() {
	if m.sortIdx < 0 {
		return
	}
	_ = m.list.Sort(todo.SortKeys[m.sortIdx])
}

// visible returns the entries shown under the current filter and search.
func (m *tuiModel) visible() []todo.Entry {
	entries := m.list.Filter(todo.FilterModes[m.filter])
	if m.query == "" {
		return entries
	}
	matches, err := m.list.Search(m.query)
	if err != nil {
		return entries
	}
	keep := make(map[int]bool, len(matches))
	for _, e := range matches {
		keep[e.Index] = true
	}
	out := entries[:0]
	for _, e := range entries {
		if keep[e.Index] {
			out = append(out, e)
		}
	}
	return out
}

func (m *tuiModel) selected(visible []todo.Entry) (todo.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(visible) {
		return todo.Entry{}, false
	}
	return visible[m.cursor], true
}

func (m *tuiModel) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *tuiModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	m.writeTitle(&b)

	if m.showHelp {
		b.WriteString("Keyboard Shortcuts\n\n")
		b.WriteString(m.help.FullHelpView(m.keys.FullHelp()) + "\n\n")
		m.writeFooter(&b)
		return b.String()
	}

	m.writeFilterLine(&b)

	visible := m.visible()
	now := m.list.Now()
	if len(visible) == 0 {
		b.WriteString(m.styles.Render(m.styles.Muted, "  No tasks") + "\n")
	}
	for i, e := range visible {
		line := FormatEntry(e, now, m.styles)
		if i == m.cursor {
			b.WriteString(m.styles.Render(m.styles.Selected, "> "+line) + "\n")
			continue
		}
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("\n")

	if m.mode != modeBrowse {
		b.WriteString(m.input.View() + "\n\n")
	}
	for _, line := range m.status {
		b.WriteString(line + "\n")
	}
	if len(m.status) > 0 {
		b.WriteString("\n")
	}

	m.writeFooter(&b)
	return b.String()
}

func (m *tuiModel) writeTitle(b *strings.Builder) {
	title := "Tasks"
	b.WriteString(m.styles.Render(m.styles.Title, title) + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func (m *tuiModel) writeFilterLine(b *strings.Builder) {
	sortName := "insertion"
	if m.sortIdx >= 0 {
		sortName = string(todo.SortKeys[m.sortIdx])
	}
	line := fmt.Sprintf("Filter: %s  Sort: %s", todo.FilterModes[m.filter], sortName)
	if m.query != "" {
		line += fmt.Sprintf("  Search: %q (esc to clear)", m.query)
	}
	b.WriteString(m.styles.Render(m.styles.Muted, line) + "\n\n")
}

func (m *tuiModel) writeFooter(b *strings.Builder) {
	s := m.list.Summary()
	b.WriteString(m.styles.Render(m.styles.Muted,
		fmt.Sprintf("%d tasks, %d done, %d overdue", s.Total, s.Completed, s.Overdue)) + "\n")
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()) + "\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
