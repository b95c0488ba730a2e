package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/taskman/internal/todo"
)

// Styles holds the lipgloss styles used to render tasks. When Plain is set
// text is returned unstyled.
type Styles struct {
	Plain    bool
	Title    lipgloss.Style
	Done     lipgloss.Style
	Overdue  lipgloss.Style
	High     lipgloss.Style
	Low      lipgloss.Style
	Notice   lipgloss.Style
	Error    lipgloss.Style
	Selected lipgloss.Style
	Muted    lipgloss.Style
}

// DefaultStyles returns the terminal color scheme.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Done:     lipgloss.NewStyle().Faint(true).Strikethrough(true),
		Overdue:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		High:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Low:      lipgloss.NewStyle().Faint(true),
		Notice:   lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Selected: lipgloss.NewStyle().Reverse(true),
		Muted:    lipgloss.NewStyle().Faint(true),
	}
}

// PlainStyles renders without escape codes.
func PlainStyles() Styles {
	return Styles{Plain: true}
}

// Render applies st to text unless s is plain.
func (s Styles) Render(st lipgloss.Style, text string) string {
	if s.Plain {
		return text
	}
	return st.Render(text)
}

// FormatEntry renders one task line:
//
//	3 - [X] Buy milk (High) due 2030-01-01 OVERDUE
func FormatEntry(e todo.Entry, now time.Time, st Styles) string {
	t := e.Task
	status := "[ ]"
	if t.Done {
		status = "[X]"
	}

	title := t.Title
	if t.Done {
		title = st.Render(st.Done, title)
	}

	prio := "(" + t.Priority.String() + ")"
	switch t.Priority {
	case todo.PriorityHigh:
		prio = st.Render(st.High, prio)
	case todo.PriorityLow:
		prio = st.Render(st.Low, prio)
	}

	line := fmt.Sprintf("%d - %s %s %s", e.Index, status, title, prio)
	if t.HasDeadline() {
		line += " due " + t.DeadlineString()
		if t.IsOverdue(now) {
			line += " " + st.Render(st.Overdue, "OVERDUE")
		}
	}
	return line
}

// WriteEntries writes one line per entry, or empty when there are none.
func WriteEntries(w io.Writer, entries []todo.Entry, now time.Time, st Styles, empty string) {
	if len(entries) == 0 {
		fmt.Fprintln(w, st.Render(st.Muted, empty))
		return
	}
	for _, e := range entries {
		fmt.Fprintln(w, FormatEntry(e, now, st))
	}
}

// FormatSummary renders task counts.
func FormatSummary(s todo.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total: %d\n", s.Total)
	fmt.Fprintf(&b, "Completed: %d\n", s.Completed)
	fmt.Fprintf(&b, "Incomplete: %d\n", s.Incomplete)
	fmt.Fprintf(&b, "Overdue: %d\n", s.Overdue)
	fmt.Fprintf(&b, "High: %d  Medium: %d  Low: %d\n", s.High, s.Medium, s.Low)
	return b.String()
}

// Describe turns a result into the lines a user should see. action is the
// past-tense verb for a success, such as "Added".
func Describe(action string, r todo.Result, st Styles) []string {
	var lines []string
	switch r.Outcome {
	case todo.OutcomeInputError:
		return append(lines, st.Render(st.Error, DescribeError(r.Err)))
	case todo.OutcomeSuccess:
		if r.Task != nil && action != "" {
			lines = append(lines, fmt.Sprintf("%s %q.", action, r.Task.Title))
		}
	}
	for _, n := range r.Notices {
		lines = append(lines, st.Render(st.Notice, NoticeText(n)))
	}
	return lines
}

// NoticeText returns a sentence for a notice.
func NoticeText(n todo.Notice) string {
	s := string(n)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:] + "."
}

// DescribeError returns a user-facing message for a rejected input.
func DescribeError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, todo.ErrEmptyTitle):
		return "Title cannot be empty."
	case errors.Is(err, todo.ErrDuplicateTitle):
		return "A task with that title already exists."
	case errors.Is(err, todo.ErrIndexOutOfRange):
		return "Invalid task number."
	case errors.Is(err, todo.ErrEmptyQuery):
		return "Search text cannot be empty."
	case errors.Is(err, todo.ErrUnknownSortKey):
		return "Unknown sort option."
	case errors.Is(err, todo.ErrUnknownFilter):
		return "Unknown filter option."
	default:
		return err.Error()
	}
}
