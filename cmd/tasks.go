package cmd

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/nibzard/taskman/internal/todo"
	"github.com/nibzard/taskman/internal/ui"
)

// apply prints the result of a mutating command and saves on success.
// Rejected input is returned as an error.
func (s *session) apply(list *todo.List, action string, r todo.Result) error {
	if r.Outcome == todo.OutcomeInputError {
		return errors.New(ui.DescribeError(r.Err))
	}
	for _, line := range ui.Describe(action, r, s.styles) {
		fmt.Fprintln(stdout, line)
	}
	if !r.OK() {
		return nil
	}
	s.logger.Debug(strings.ToLower(action), "index", r.Index, "title", r.Task.Title)
	return s.save(list)
}

func parseIndex(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("invalid task number %q", arg)
	}
	return n, nil
}

func (s *session) addCommand(args []string) error {
	fs := flag.NewFlagSet("taskman add", flag.ContinueOnError)
	fs.SetOutput(stderr)
	priority := fs.String("priority", "", "Priority (1 High, 2 Medium, 3 Low)")
	deadline := fs.String("deadline", "", "Deadline (YYYY-MM-DD)")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(positional) == 0 {
		return fmt.Errorf("usage: taskman add <title> [-priority N] [-deadline YYYY-MM-DD]")
	}

	list := s.open()
	return s.apply(list, "Added", list.Add(strings.Join(positional, " "), *priority, *deadline))
}

func (s *session) lsCommand(args []string) error {
	fs := flag.NewFlagSet("taskman ls", flag.ContinueOnError)
	fs.SetOutput(stderr)
	filter := fs.String("filter", string(todo.FilterAll), "Show all, incomplete, complete or overdue tasks")
	sortKey := fs.String("sort", s.cfg.DefaultSort, "Sort and save before listing (priority|status|title|deadline)")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(positional) > 1 {
		return fmt.Errorf("unexpected arguments: %v", positional[1:])
	}
	if len(positional) == 1 {
		*filter = positional[0]
	}

	mode, err := todo.ParseFilterMode(*filter)
	if err != nil {
		return errors.New(ui.DescribeError(err))
	}

	list, r := s.load()
	if *sortKey != "" {
		key, err := todo.ParseSortKey(*sortKey)
		if err != nil {
			return errors.New(ui.DescribeError(err))
		}
		if err := list.Sort(key); err != nil {
			return err
		}
		// Numbers shown must match the saved order for done/rm/rename.
		// An unreadable file is left alone; there is nothing to reorder.
		if !r.Has(todo.NoticeStoreUnreadable) {
			if err := s.save(list); err != nil {
				return err
			}
		}
	}

	ui.WriteEntries(stdout, list.Filter(mode), list.Now(), s.styles, "No tasks.")
	return nil
}

func (s *session) doneCommand(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: taskman done <n>")
	}
	n, err := parseIndex(args[0])
	if err != nil {
		return err
	}
	list := s.open()
	return s.apply(list, "Completed", list.MarkDone(n))
}

func (s *session) rmCommand(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: taskman rm <n>")
	}
	n, err := parseIndex(args[0])
	if err != nil {
		return err
	}
	list := s.open()
	return s.apply(list, "Removed", list.Remove(n))
}

func (s *session) renameCommand(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: taskman rename <n> <title>")
	}
	n, err := parseIndex(args[0])
	if err != nil {
		return err
	}
	list := s.open()
	return s.apply(list, "Renamed to", list.Rename(n, strings.Join(args[1:], " ")))
}

func (s *session) searchCommand(args []string) error {
	list := s.open()
	entries, err := list.Search(strings.Join(args, " "))
	if err != nil {
		return errors.New(ui.DescribeError(err))
	}
	ui.WriteEntries(stdout, entries, list.Now(), s.styles, ui.NoticeText(todo.NoticeNoMatches))
	return nil
}

func (s *session) sortCommand(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: taskman sort <priority|status|title|deadline>")
	}
	key, err := todo.ParseSortKey(args[0])
	if err != nil {
		return errors.New(ui.DescribeError(err))
	}
	list, r := s.load()
	if err := list.Sort(key); err != nil {
		return err
	}
	if !r.Has(todo.NoticeStoreUnreadable) {
		if err := s.save(list); err != nil {
			return err
		}
	}
	ui.WriteEntries(stdout, list.Entries(), list.Now(), s.styles, "No tasks.")
	return nil
}

func (s *session) summaryCommand(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	fmt.Fprint(stdout, ui.FormatSummary(s.open().Summary()))
	return nil
}
