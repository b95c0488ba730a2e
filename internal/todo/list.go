package todo

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// SortKey selects the ordering used by List.Sort.
type SortKey string

const (
	SortByPriority SortKey = "priority"
	SortByStatus   SortKey = "status"
	SortByTitle    SortKey = "title"
	SortByDeadline SortKey = "deadline"
)

// SortKeys lists the supported keys in menu order.
var SortKeys = []SortKey{SortByPriority, SortByStatus, SortByTitle, SortByDeadline}

// ParseSortKey accepts a key name or its 1-based position in SortKeys.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= len(SortKeys) {
		return SortKeys[n-1], nil
	}
	for _, k := range SortKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", &InputError{Field: "sort key", Value: s, Err: ErrUnknownSortKey}
}

// FilterMode selects the subset returned by List.Filter.
type FilterMode string

const (
	FilterAll        FilterMode = "all"
	FilterIncomplete FilterMode = "incomplete"
	FilterComplete   FilterMode = "complete"
	FilterOverdue    FilterMode = "overdue"
)

// FilterModes lists the supported modes in menu order.
var FilterModes = []FilterMode{FilterAll, FilterIncomplete, FilterComplete, FilterOverdue}

// ParseFilterMode accepts a mode name or its 1-based position in FilterModes.
func ParseFilterMode(s string) (FilterMode, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= len(FilterModes) {
		return FilterModes[n-1], nil
	}
	for _, m := range FilterModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", &InputError{Field: "filter", Value: s, Err: ErrUnknownFilter}
}

// Entry pairs a task with its 1-based position in the list.
type Entry struct {
	Index int
	Task  Task
}

// Summary holds task counts.
type Summary struct {
	Total      int
	Completed  int
	Incomplete int
	High       int
	Medium     int
	Low        int
	Overdue    int
}

// Option configures a List.
type Option func(*List)

// WithClock sets the time source used for deadline checks.
func WithClock(now func() time.Time) Option {
	return func(l *List) {
		l.now = now
	}
}

// WithLogger sets the logger for store conditions.
func WithLogger(logger *log.Logger) Option {
	return func(l *List) {
		l.logger = logger
	}
}

// List is an ordered collection of tasks with unique titles.
// It is not safe for concurrent use.
type List struct {
	tasks  []Task
	store  Store
	now    func() time.Time
	logger *log.Logger
}

// New returns an empty list persisted through store.
func New(store Store, opts ...Option) *List {
	l := &List{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = log.New(io.Discard)
	}
	return l
}

// Now returns the list's current time.
func (l *List) Now() time.Time {
	return l.now()
}

// Len returns the number of tasks.
func (l *List) Len() int {
	return len(l.tasks)
}

// Tasks returns a copy of the tasks in order.
func (l *List) Tasks() []Task {
	out := make([]Task, len(l.tasks))
	copy(out, l.tasks)
	return out
}

// Entries returns every task with its position.
func (l *List) Entries() []Entry {
	return l.Filter(FilterAll)
}

// Get returns the task at 1-based index.
func (l *List) Get(index int) (Task, bool) {
	if index < 1 || index > len(l.tasks) {
		return Task{}, false
	}
	return l.tasks[index-1], true
}

// Load replaces the tasks with the store's contents. A missing or unreadable
// store leaves the list empty and is reported as an informational outcome.
func (l *List) Load() Result {
	records, err := l.store.Load()
	if err != nil {
		l.tasks = nil
		if errors.Is(err, ErrNoStore) {
			l.logger.Info("no saved tasks found", "err", err)
			return info(NoticeNoStore)
		}
		l.logger.Warn("saved tasks are unreadable, starting empty", "err", err)
		r := info(NoticeStoreUnreadable)
		r.Err = err
		return r
	}

	tasks := make([]Task, 0, len(records))
	seen := make(map[string]bool, len(records))
	untitled, duplicates := 0, 0
	for i, rec := range records {
		switch {
		case rec.Title == "":
			untitled++
			l.logger.Warn("skipping task without a title", "position", i+1)
			continue
		case seen[rec.Title]:
			duplicates++
			l.logger.Warn("skipping duplicate task", "title", rec.Title)
			continue
		}
		seen[rec.Title] = true
		tasks = append(tasks, FromRecord(rec))
	}
	l.tasks = tasks
	l.logger.Debug("loaded tasks", "count", len(tasks))

	r := Result{Outcome: OutcomeSuccess}
	if untitled > 0 {
		r.Notices = append(r.Notices, NoticeUntitledSkipped)
	}
	if duplicates > 0 {
		r.Notices = append(r.Notices, NoticeDuplicateSkipped)
	}
	return r
}

// Save writes every task, in order, to the store. It is safe to call
// repeatedly.
func (l *List) Save() error {
	records := make([]Record, len(l.tasks))
	for i := range l.tasks {
		records[i] = l.tasks[i].ToRecord()
	}
	if err := l.store.Save(records); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	l.logger.Debug("saved tasks", "count", len(records))
	return nil
}

func (l *List) indexOf(title string) int {
	for i := range l.tasks {
		if l.tasks[i].Title == title {
			return i
		}
	}
	return -1
}

// Add appends a task built from raw input. An empty priority means Medium
// and an empty deadline means none; other unusable values fall back the same
// way and are reported as notices.
func (l *List) Add(title, priority, deadline string) Result {
	title = strings.TrimSpace(title)
	if title == "" {
		return inputError("title", "", ErrEmptyTitle)
	}
	if l.indexOf(title) >= 0 {
		return inputError("title", title, ErrDuplicateTitle)
	}

	var notices []Notice
	p := PriorityMedium
	if strings.TrimSpace(priority) != "" {
		var ok bool
		p, ok = ParsePriority(priority)
		if !ok {
			notices = append(notices, NoticePriorityDefaulted)
		}
	}

	var due time.Time
	if strings.TrimSpace(deadline) != "" {
		d, err := ParseDate(deadline)
		switch {
		case err != nil:
			notices = append(notices, NoticeDeadlineInvalid)
		case d.Before(Today(l.now())):
			notices = append(notices, NoticeDeadlinePast)
		default:
			due = d
		}
	}

	t := NewTask(title, p, due)
	l.tasks = append(l.tasks, t)
	return success(t, len(l.tasks), notices...)
}

func (l *List) checkIndex(index int) *Result {
	if index < 1 || index > len(l.tasks) {
		r := inputError("task number", strconv.Itoa(index), ErrIndexOutOfRange)
		return &r
	}
	return nil
}

// Remove deletes the task at index. Index 0 cancels without error.
func (l *List) Remove(index int) Result {
	if index == 0 {
		return info(NoticeCancelled)
	}
	if r := l.checkIndex(index); r != nil {
		return *r
	}
	removed := l.tasks[index-1]
	l.tasks = append(l.tasks[:index-1], l.tasks[index:]...)
	return success(removed, index)
}

// MarkDone completes the task at index.
func (l *List) MarkDone(index int) Result {
	if r := l.checkIndex(index); r != nil {
		return *r
	}
	t := &l.tasks[index-1]
	if !t.MarkDone() {
		cp := *t
		r := info(NoticeAlreadyDone)
		r.Task, r.Index = &cp, index
		return r
	}
	return success(*t, index)
}

// Rename changes the title of the task at index. Renaming a task to its
// current title is reported as unchanged.
func (l *List) Rename(index int, title string) Result {
	if r := l.checkIndex(index); r != nil {
		return *r
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return inputError("title", "", ErrEmptyTitle)
	}
	t := &l.tasks[index-1]
	if t.Title == title {
		cp := *t
		r := info(NoticeUnchanged)
		r.Task, r.Index = &cp, index
		return r
	}
	if l.indexOf(title) >= 0 {
		return inputError("title", title, ErrDuplicateTitle)
	}
	t.Rename(title)
	return success(*t, index)
}

// Search returns tasks whose title contains query, ignoring case.
func (l *List) Search(query string) ([]Entry, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &InputError{Field: "search", Err: ErrEmptyQuery}
	}
	q := strings.ToLower(query)
	var out []Entry
	for i, t := range l.tasks {
		if strings.Contains(strings.ToLower(t.Title), q) {
			out = append(out, Entry{Index: i + 1, Task: t})
		}
	}
	return out, nil
}

// Sort reorders the tasks in place. Ties keep their relative order.
func (l *List) Sort(key SortKey) error {
	var less func(a, b *Task) bool
	switch key {
	case SortByPriority:
		less = func(a, b *Task) bool { return a.Priority < b.Priority }
	case SortByStatus:
		less = func(a, b *Task) bool { return !a.Done && b.Done }
	case SortByTitle:
		less = func(a, b *Task) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	case SortByDeadline:
		less = func(a, b *Task) bool {
			if !a.HasDeadline() {
				return false
			}
			if !b.HasDeadline() {
				return true
			}
			return a.Deadline.Before(b.Deadline)
		}
	default:
		return &InputError{Field: "sort key", Value: string(key), Err: ErrUnknownSortKey}
	}
	sort.SliceStable(l.tasks, func(i, j int) bool {
		return less(&l.tasks[i], &l.tasks[j])
	})
	return nil
}

// Filter returns the matching tasks in list order without changing the list.
func (l *List) Filter(mode FilterMode) []Entry {
	now := l.now()
	out := make([]Entry, 0, len(l.tasks))
	for i, t := range l.tasks {
		keep := false
		switch mode {
		case FilterAll:
			keep = true
		case FilterIncomplete:
			keep = !t.Done
		case FilterComplete:
			keep = t.Done
		case FilterOverdue:
			keep = t.IsOverdue(now)
		}
		if keep {
			out = append(out, Entry{Index: i + 1, Task: t})
		}
	}
	return out
}

// Summary counts tasks in a single pass.
func (l *List) Summary() Summary {
	now := l.now()
	s := Summary{Total: len(l.tasks)}
	for i := range l.tasks {
		t := &l.tasks[i]
		if t.Done {
			s.Completed++
		} else {
			s.Incomplete++
		}
		switch t.Priority {
		case PriorityHigh:
			s.High++
		case PriorityLow:
			s.Low++
		default:
			s.Medium++
		}
		if t.IsOverdue(now) {
			s.Overdue++
		}
	}
	return s
}
