// Package menu implements the numbered, line-oriented task menu.
//
// Each menu action calls exactly one list operation, prints what it returned
// and saves when the list changed. The list is saved again when the menu
// exits, including on end of input and on context cancellation.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskman/internal/todo"
	"github.com/nibzard/taskman/internal/ui"
)

// Option configures a Menu.
type Option func(*Menu)

// WithStyles overrides the rendering styles.
func WithStyles(st ui.Styles) Option {
	return func(m *Menu) {
		m.styles = st
	}
}

// WithLogger sets the logger used for save failures.
func WithLogger(logger *log.Logger) Option {
	return func(m *Menu) {
		m.logger = logger
	}
}

// Menu drives a todo.List from line input.
type Menu struct {
	list   *todo.List
	in     io.Reader
	out    io.Writer
	lines  chan string
	styles ui.Styles
	logger *log.Logger
}

// New returns a menu reading from in and writing to out.
func New(list *todo.List, in io.Reader, out io.Writer, opts ...Option) *Menu {
	m := &Menu{
		list:   list,
		in:     in,
		out:    out,
		styles: ui.PlainStyles(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var items = []struct {
	key   string
	label string
}{
	{"1", "Add a task"},
	{"2", "Display tasks"},
	{"3", "Remove a task"},
	{"4", "Mark a task as done"},
	{"5", "Rename a task"},
	{"6", "Search tasks"},
	{"7", "Sort tasks"},
	{"8", "Filter tasks"},
	{"9", "Summary"},
	{"0", "Exit"},
}

// Run shows the menu until the user exits, input ends or ctx is cancelled.
// It returns ctx.Err() on cancellation, after saving.
func (m *Menu) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	m.lines = make(chan string)
	go m.scan(done)

	for {
		m.printMenu()
		choice, err := m.readLine(ctx, "Choose an option: ")
		if err != nil {
			return m.finish(err)
		}

		switch strings.TrimSpace(choice) {
		case "1":
			err = m.add(ctx)
		case "2":
			ui.WriteEntries(m.out, m.list.Entries(), m.list.Now(), m.styles, "No tasks.")
		case "3":
			err = m.remove(ctx)
		case "4":
			err = m.markDone(ctx)
		case "5":
			err = m.rename(ctx)
		case "6":
			err = m.search(ctx)
		case "7":
			err = m.sort(ctx)
		case "8":
			err = m.filter(ctx)
		case "9":
			fmt.Fprint(m.out, ui.FormatSummary(m.list.Summary()))
		case "0":
			return m.finish(nil)
		default:
			fmt.Fprintln(m.out, "Invalid option. Enter a number from 0 to 9.")
		}
		if err != nil {
			return m.finish(err)
		}
		fmt.Fprintln(m.out)
	}
}

func (m *Menu) scan(done <-chan struct{}) {
	defer close(m.lines)
	sc := bufio.NewScanner(m.in)
	for sc.Scan() {
		select {
		case m.lines <- sc.Text():
		case <-done:
			return
		}
	}
}

// finish saves the list. End of input counts as a normal exit.
func (m *Menu) finish(err error) error {
	if errors.Is(err, io.EOF) {
		err = nil
	}
	if saveErr := m.list.Save(); saveErr != nil {
		m.logger.Error("save failed", "err", saveErr)
		return errors.Join(err, fmt.Errorf("saving tasks: %w", saveErr))
	}
	return err
}

func (m *Menu) printMenu() {
	fmt.Fprintln(m.out, m.styles.Render(m.styles.Title, "Task Manager"))
	for _, it := range items {
		fmt.Fprintf(m.out, "%s. %s\n", it.key, it.label)
	}
}

func (m *Menu) readLine(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(m.out, prompt)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-m.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}

// readNumber prompts until the input is an integer.
func (m *Menu) readNumber(ctx context.Context, prompt string) (int, error) {
	for {
		line, err := m.readLine(ctx, prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err == nil {
			return n, nil
		}
		fmt.Fprintln(m.out, "Please enter a number.")
	}
}

// pickTask prompts for a task number and calls op until op does not reject
// the number as out of range.
func (m *Menu) pickTask(ctx context.Context, prompt string, op func(int) todo.Result) (todo.Result, error) {
	for {
		n, err := m.readNumber(ctx, prompt)
		if err != nil {
			return todo.Result{}, err
		}
		r := op(n)
		if r.Outcome == todo.OutcomeInputError && errors.Is(r.Err, todo.ErrIndexOutOfRange) {
			m.print(r, "")
			continue
		}
		return r, nil
	}
}

func (m *Menu) print(r todo.Result, action string) {
	for _, line := range ui.Describe(action, r, m.styles) {
		fmt.Fprintln(m.out, line)
	}
}

// commit prints r and saves when it changed the list.
func (m *Menu) commit(r todo.Result, action string) {
	m.print(r, action)
	if r.OK() {
		m.save()
	}
}

func (m *Menu) save() {
	if err := m.list.Save(); err != nil {
		m.logger.Error("save failed", "err", err)
		fmt.Fprintln(m.out, m.styles.Render(m.styles.Error, "Could not save tasks: "+err.Error()))
	}
}

func (m *Menu) showTasks() bool {
	if m.list.Len() == 0 {
		fmt.Fprintln(m.out, "No tasks.")
		return false
	}
	ui.WriteEntries(m.out, m.list.Entries(), m.list.Now(), m.styles, "")
	return true
}

func (m *Menu) add(ctx context.Context) error {
	title, err := m.readLine(ctx, "Title: ")
	if err != nil {
		return err
	}
	priority, err := m.readLine(ctx, "Priority (1 High, 2 Medium, 3 Low) [2]: ")
	if err != nil {
		return err
	}
	deadline, err := m.readLine(ctx, "Deadline (YYYY-MM-DD, empty for none): ")
	if err != nil {
		return err
	}
	m.commit(m.list.Add(title, priority, deadline), "Added")
	return nil
}

func (m *Menu) remove(ctx context.Context) error {
	if !m.showTasks() {
		return nil
	}
	r, err := m.pickTask(ctx, "Task number to remove (0 to cancel): ", m.list.Remove)
	if err != nil {
		return err
	}
	m.commit(r, "Removed")
	return nil
}

func (m *Menu) markDone(ctx context.Context) error {
	if !m.showTasks() {
		return nil
	}
	r, err := m.pickTask(ctx, "Task number to mark as done: ", m.list.MarkDone)
	if err != nil {
		return err
	}
	m.commit(r, "Completed")
	return nil
}

func (m *Menu) rename(ctx context.Context) error {
	if !m.showTasks() {
		return nil
	}
	var index int
	_, err := m.pickTask(ctx, "Task number to rename: ", func(n int) todo.Result {
		if _, ok := m.list.Get(n); !ok {
			return todo.Result{
				Outcome: todo.OutcomeInputError,
				Err:     &todo.InputError{Field: "task number", Value: strconv.Itoa(n), Err: todo.ErrIndexOutOfRange},
			}
		}
		index = n
		return todo.Result{Outcome: todo.OutcomeSuccess}
	})
	if err != nil {
		return err
	}
	title, err := m.readLine(ctx, "New title: ")
	if err != nil {
		return err
	}
	m.commit(m.list.Rename(index, title), "Renamed to")
	return nil
}

func (m *Menu) search(ctx context.Context) error {
	query, err := m.readLine(ctx, "Search for: ")
	if err != nil {
		return err
	}
	entries, err := m.list.Search(query)
	if err != nil {
		fmt.Fprintln(m.out, m.styles.Render(m.styles.Error, ui.DescribeError(err)))
		return nil
	}
	ui.WriteEntries(m.out, entries, m.list.Now(), m.styles, ui.NoticeText(todo.NoticeNoMatches))
	return nil
}

func (m *Menu) sort(ctx context.Context) error {
	for i, k := range todo.SortKeys {
		fmt.Fprintf(m.out, "%d. By %s\n", i+1, k)
	}
	for {
		line, err := m.readLine(ctx, "Sort by: ")
		if err != nil {
			return err
		}
		key, err := todo.ParseSortKey(line)
		if err != nil {
			fmt.Fprintln(m.out, ui.DescribeError(err))
			continue
		}
		if err := m.list.Sort(key); err != nil {
			return err
		}
		m.save()
		ui.WriteEntries(m.out, m.list.Entries(), m.list.Now(), m.styles, "No tasks.")
		return nil
	}
}

func (m *Menu) filter(ctx context.Context) error {
	for i, f := range todo.FilterModes {
		fmt.Fprintf(m.out, "%d. %s\n", i+1, strings.ToUpper(string(f[:1]))+string(f[1:]))
	}
	for {
		line, err := m.readLine(ctx, "Show: ")
		if err != nil {
			return err
		}
		mode, err := todo.ParseFilterMode(line)
		if err != nil {
			fmt.Fprintln(m.out, ui.DescribeError(err))
			continue
		}
		ui.WriteEntries(m.out, m.list.Filter(mode), m.list.Now(), m.styles, "No tasks.")
		return nil
	}
}
