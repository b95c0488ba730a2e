package ui

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/nibzard/taskman/internal/todo"
)

var fixedNow = time.Date(2026, 10, 16, 10, 30, 0, 0, time.UTC)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := todo.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestFormatEntry(t *testing.T) {
	st := PlainStyles()

	done := todo.NewTask("Walk dog", todo.PriorityLow, time.Time{})
	done.MarkDone()

	tests := []struct {
		name  string
		entry todo.Entry
		want  string
	}{
		{
			name:  "plain",
			entry: todo.Entry{Index: 1, Task: todo.NewTask("Buy milk", todo.PriorityMedium, time.Time{})},
			want:  "1 - [ ] Buy milk (Medium)",
		},
		{
			name:  "done",
			entry: todo.Entry{Index: 2, Task: done},
			want:  "2 - [X] Walk dog (Low)",
		},
		{
			name:  "future deadline",
			entry: todo.Entry{Index: 3, Task: todo.NewTask("Pay rent", todo.PriorityHigh, mustDate(t, "2030-01-01"))},
			want:  "3 - [ ] Pay rent (High) due 2030-01-01",
		},
		{
			name:  "overdue",
			entry: todo.Entry{Index: 4, Task: todo.NewTask("Taxes", todo.PriorityHigh, mustDate(t, "2026-04-15"))},
			want:  "4 - [ ] Taxes (High) due 2026-04-15 OVERDUE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatEntry(tt.entry, fixedNow, st); got != tt.want {
				t.Errorf("FormatEntry() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteEntriesEmpty(t *testing.T) {
	var buf bytes.Buffer
	WriteEntries(&buf, nil, fixedNow, PlainStyles(), "No tasks.")
	if got := buf.String(); got != "No tasks.\n" {
		t.Errorf("got %q", got)
	}
}

func TestFormatSummary(t *testing.T) {
	got := FormatSummary(todo.Summary{Total: 3, Completed: 1, Incomplete: 2, High: 1, Medium: 1, Low: 1, Overdue: 1})
	want := "Total: 3\nCompleted: 1\nIncomplete: 2\nOverdue: 1\nHigh: 1  Medium: 1  Low: 1\n"
	if got != want {
		t.Errorf("FormatSummary() = %q, want %q", got, want)
	}
}

func TestDescribe(t *testing.T) {
	task := todo.NewTask("Buy milk", todo.PriorityMedium, time.Time{})
	st := PlainStyles()

	tests := []struct {
		name   string
		result todo.Result
		want   []string
	}{
		{
			name:   "success with notice",
			result: todo.Result{Outcome: todo.OutcomeSuccess, Task: &task, Notices: []todo.Notice{todo.NoticePriorityDefaulted}},
			want:   []string{`Added "Buy milk".`, "Invalid priority, using Medium."},
		},
		{
			name:   "info",
			result: todo.Result{Outcome: todo.OutcomeInfo, Task: &task, Notices: []todo.Notice{todo.NoticeAlreadyDone}},
			want:   []string{"Task is already done."},
		},
		{
			name:   "input error",
			result: todo.Result{Outcome: todo.OutcomeInputError, Err: &todo.InputError{Field: "title", Err: todo.ErrDuplicateTitle}},
			want:   []string{"A task with that title already exists."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe("Added", tt.result, st); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescribeError(t *testing.T) {
	if got := DescribeError(nil); got != "" {
		t.Errorf("nil: got %q", got)
	}
	if got := DescribeError(errors.New("disk full")); got != "disk full" {
		t.Errorf("other: got %q", got)
	}
	wrapped := &todo.InputError{Field: "index", Value: "9", Err: todo.ErrIndexOutOfRange}
	if got := DescribeError(wrapped); got != "Invalid task number." {
		t.Errorf("index: got %q", got)
	}
}
