package todo

import (
	"errors"
	"fmt"
)

// Recoverable input errors. Operations wrap them in *InputError.
var (
	ErrEmptyTitle      = errors.New("title is empty")
	ErrDuplicateTitle  = errors.New("a task with this title already exists")
	ErrIndexOutOfRange = errors.New("task number out of range")
	ErrEmptyQuery      = errors.New("search text is empty")
	ErrUnknownSortKey  = errors.New("unknown sort key")
	ErrUnknownFilter   = errors.New("unknown filter")
)

// InputError describes a rejected user input. The list is unchanged
// whenever one is returned.
type InputError struct {
	Field string // input that was rejected
	Value string // offending value, if useful for display
	Err   error  // one of the Err* sentinels
}

func (e *InputError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Err)
}

// Unwrap returns the underlying sentinel.
func (e *InputError) Unwrap() error {
	return e.Err
}

// Outcome tags a Result.
type Outcome int

const (
	// OutcomeSuccess means the operation did what was asked.
	OutcomeSuccess Outcome = iota
	// OutcomeInfo means nothing went wrong but the operation did not
	// change anything; Notices says why.
	OutcomeInfo
	// OutcomeInputError means the input was rejected; Err says why.
	OutcomeInputError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeInfo:
		return "info"
	case OutcomeInputError:
		return "input error"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Notice is an informational condition attached to a Result.
type Notice string

const (
	NoticeNoStore           Notice = "no saved tasks found"
	NoticeStoreUnreadable   Notice = "saved tasks are corrupted or empty"
	NoticeCancelled         Notice = "cancelled"
	NoticeAlreadyDone       Notice = "task is already done"
	NoticeUnchanged         Notice = "title unchanged"
	NoticePriorityDefaulted Notice = "invalid priority, using Medium"
	NoticeDeadlineInvalid   Notice = "invalid deadline, expected YYYY-MM-DD; no deadline set"
	NoticeDeadlinePast      Notice = "deadline is in the past; no deadline set"
	NoticeNoMatches         Notice = "no matching tasks"
	NoticeDuplicateSkipped  Notice = "duplicate task titles were skipped"
	NoticeUntitledSkipped   Notice = "tasks without a title were skipped"
)

// Result is the outcome of a list operation.
type Result struct {
	Outcome Outcome
	// Task is the affected task (a copy) when there is one.
	Task *Task
	// Index is the 1-based position of Task at the time of the operation.
	Index   int
	Notices []Notice
	// Err is the rejected input for OutcomeInputError, or the cause of an
	// unreadable store on Load.
	Err error
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Outcome == OutcomeSuccess
}

// Has reports whether the result carries notice n.
func (r Result) Has(n Notice) bool {
	for _, got := range r.Notices {
		if got == n {
			return true
		}
	}
	return false
}

func success(t Task, index int, notices ...Notice) Result {
	return Result{Outcome: OutcomeSuccess, Task: &t, Index: index, Notices: notices}
}

func info(n Notice) Result {
	return Result{Outcome: OutcomeInfo, Notices: []Notice{n}}
}

func inputError(field, value string, err error) Result {
	return Result{
		Outcome: OutcomeInputError,
		Err:     &InputError{Field: field, Value: value, Err: err},
	}
}
