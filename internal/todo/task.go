package todo

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the on-disk and input layout for deadlines.
const DateLayout = "2006-01-02"

// Priority ranks a task. Lower values sort first.
type Priority int

const (
	PriorityHigh   Priority = 1
	PriorityMedium Priority = 2
	PriorityLow    Priority = 3
)

// String returns the display name of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	default:
		return "Priority(" + strconv.Itoa(int(p)) + ")"
	}
}

// Valid reports whether p is one of High, Medium or Low.
func (p Priority) Valid() bool {
	return p >= PriorityHigh && p <= PriorityLow
}

// ParsePriority parses "1", "2" or "3".
// It returns PriorityMedium and false for anything else.
func ParsePriority(s string) (Priority, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || !Priority(n).Valid() {
		return PriorityMedium, false
	}
	return Priority(n), true
}

// ParseDate parses a YYYY-MM-DD deadline.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// Today returns the calendar date of now as a UTC midnight, comparable with
// dates produced by ParseDate.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Task represents a single task in the list.
type Task struct {
	Title    string
	Done     bool
	Priority Priority
	// Deadline is a date at UTC midnight; the zero value means no deadline.
	Deadline time.Time
}

// NewTask returns an incomplete task. An invalid priority becomes Medium.
// The caller is responsible for title uniqueness.
func NewTask(title string, priority Priority, deadline time.Time) Task {
	if !priority.Valid() {
		priority = PriorityMedium
	}
	return Task{
		Title:    title,
		Priority: priority,
		Deadline: deadline,
	}
}

// HasDeadline reports whether the task carries a deadline.
func (t Task) HasDeadline() bool {
	return !t.Deadline.IsZero()
}

// MarkDone sets the task complete and reports whether it changed.
func (t *Task) MarkDone() bool {
	if t.Done {
		return false
	}
	t.Done = true
	return true
}

// Rename replaces the title.
func (t *Task) Rename(title string) {
	t.Title = title
}

// IsOverdue reports whether an incomplete task's deadline is strictly before
// the calendar date of now.
func (t Task) IsOverdue(now time.Time) bool {
	if t.Done || !t.HasDeadline() {
		return false
	}
	return t.Deadline.Before(Today(now))
}

// DeadlineString returns the deadline as YYYY-MM-DD, or "" when unset.
func (t Task) DeadlineString() string {
	if !t.HasDeadline() {
		return ""
	}
	return t.Deadline.Format(DateLayout)
}

// Record is the serialized form of a Task.
type Record struct {
	Title    string  `json:"title" yaml:"title"`
	Done     bool    `json:"done" yaml:"done"`
	Priority *int    `json:"priority" yaml:"priority"`
	Deadline *string `json:"deadline" yaml:"deadline"`
}

// ToRecord converts the task to its serialized form.
func (t Task) ToRecord() Record {
	p := int(t.Priority)
	if !t.Priority.Valid() {
		p = int(PriorityMedium)
	}
	r := Record{
		Title:    t.Title,
		Done:     t.Done,
		Priority: &p,
	}
	if t.HasDeadline() {
		d := t.DeadlineString()
		r.Deadline = &d
	}
	return r
}

// FromRecord builds a task from a record. A missing or unknown priority
// becomes Medium; a missing or unparseable deadline becomes no deadline.
// Past deadlines are kept.
func FromRecord(r Record) Task {
	t := Task{
		Title:    r.Title,
		Done:     r.Done,
		Priority: PriorityMedium,
	}
	if r.Priority != nil && Priority(*r.Priority).Valid() {
		t.Priority = Priority(*r.Priority)
	}
	if r.Deadline != nil {
		if d, err := ParseDate(*r.Deadline); err == nil {
			t.Deadline = d
		}
	}
	return t
}
