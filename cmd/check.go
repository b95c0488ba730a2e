package cmd

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nibzard/taskman/internal/config"
	"github.com/nibzard/taskman/internal/export"
	"github.com/nibzard/taskman/internal/todo"
)

// checkCommand validates a task file without loading it into a list.
func checkCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskman check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "List the tasks found")

	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	path := cfg.TaskFile
	if len(remaining) == 1 {
		path = remaining[0]
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.WorkDir, path)
		}
	}

	fmt.Fprintf(stdout, "Task file: %s\n", path)
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintln(stdout, "  ⚠️  Not found (it will be created on first save)")
		return nil
	case err != nil:
		fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
		return fmt.Errorf("check failed")
	case info.IsDir():
		fmt.Fprintln(stdout, "  ❌ Error: path is a directory")
		return fmt.Errorf("check failed")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ Read error: %v\n", err)
		return fmt.Errorf("check failed")
	}

	result := todo.Validate(data)
	for _, w := range result.Warnings {
		fmt.Fprintf(stdout, "  ⚠️  %s\n", w)
	}
	if !result.Valid {
		fmt.Fprintln(stdout, "  ❌ Validation failed:")
		for _, e := range result.Errors {
			fmt.Fprintf(stdout, "     - %v\n", e)
		}
		return fmt.Errorf("check failed")
	}
	fmt.Fprintf(stdout, "  ✅ Valid (%d tasks)\n", result.Tasks)

	if *verbose {
		records, err := todo.DecodeRecords(data)
		if err != nil {
			return err
		}
		for i, r := range records {
			t := todo.FromRecord(r)
			status := " "
			if t.Done {
				status = "X"
			}
			fmt.Fprintf(stdout, "    %d. [%s] %s\n", i+1, status, t.Title)
		}
	}
	return nil
}

// configCommand prints the effective configuration and where each value
// came from.
func configCommand(cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("taskman config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	example := fs.Bool("example", false, "Print an example config file")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if *example {
		fmt.Fprint(stdout, config.ExampleConfig())
		return nil
	}

	if len(cws.Files) == 0 {
		fmt.Fprintln(stdout, "Config files: none")
	} else {
		fmt.Fprintln(stdout, "Config files:")
		for _, f := range cws.Files {
			fmt.Fprintf(stdout, "  %s\n", f)
		}
	}
	fmt.Fprintln(stdout)
	for _, field := range config.Fields() {
		value := cws.Config.Get(field)
		if value == "" {
			value = `""`
		}
		fmt.Fprintf(stdout, "%-15s %s (%s)\n", field, value, cws.Sources[field])
	}
	return nil
}

func (s *session) exportCommand(args []string) error {
	fs := flag.NewFlagSet("taskman export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	names := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		names[i] = string(f)
	}
	format := fs.String("format", string(export.FormatJSON), "Output format ("+strings.Join(names, "|")+")")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	f, err := export.ParseFormat(*format)
	if err != nil {
		return err
	}
	return export.Write(stdout, s.open().Tasks(), f)
}
