// Package cmd implements the CLI command structure for taskman.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskman/internal/config"
	"github.com/nibzard/taskman/internal/logging"
	"github.com/nibzard/taskman/internal/menu"
	"github.com/nibzard/taskman/internal/todo"
	"github.com/nibzard/taskman/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Standard streams, replaced in tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Run executes the taskman CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("taskman", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// Determine the subcommand
	// If no args or first arg is a flag, the menu is the default
	subcommand := "menu"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	// Commands that never touch the task list
	switch subcommand {
	case "version", "--version", "-v":
		return versionCommand()
	case "help", "--help", "-h":
		printUsage(fs, stdout)
		return nil
	case "config":
		return configCommand(cws, remainingArgs)
	case "check":
		return checkCommand(cfg, remainingArgs)
	}

	logger, closeLog, err := logging.Open(logging.Setup{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		Timestamps: cfg.LogTimestamps,
		File:       cfg.LogFile,
		Fallback:   stderr,
	})
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer closeLog()

	s := &session{cfg: cfg, logger: logger, styles: stylesFor(stdout)}

	switch subcommand {
	case "menu":
		return s.menuCommand(ctx, remainingArgs)
	case "tui":
		return s.tuiCommand(ctx, remainingArgs)
	case "add":
		return s.addCommand(remainingArgs)
	case "ls", "list":
		return s.lsCommand(remainingArgs)
	case "done":
		return s.doneCommand(remainingArgs)
	case "rm", "remove":
		return s.rmCommand(remainingArgs)
	case "rename":
		return s.renameCommand(remainingArgs)
	case "search":
		return s.searchCommand(remainingArgs)
	case "sort":
		return s.sortCommand(remainingArgs)
	case "summary":
		return s.summaryCommand(remainingArgs)
	case "export":
		return s.exportCommand(remainingArgs)
	default:
		// An existing file is taken as the task file for the menu
		if fi, err := os.Stat(subcommand); err == nil && !fi.IsDir() {
			s.cfg.TaskFile = subcommand
			return s.menuCommand(ctx, remainingArgs)
		}
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// session carries what every list command needs.
type session struct {
	cfg    *config.Config
	logger *log.Logger
	styles ui.Styles
}

// open loads the task list from the configured file and reports anything
// noteworthy about the load on stderr.
func (s *session) open() *todo.List {
	list, _ := s.load()
	return list
}

// load is open that also returns the load outcome.
func (s *session) load() (*todo.List, todo.Result) {
	list := todo.New(todo.NewFileStore(s.cfg.TaskFile), todo.WithLogger(s.logger))
	r := list.Load()
	s.logger.Debug("loaded tasks", "path", s.cfg.TaskFile, "count", list.Len())
	for _, n := range r.Notices {
		if n == todo.NoticeNoStore {
			continue
		}
		fmt.Fprintln(stderr, s.styles.Render(s.styles.Notice, ui.NoticeText(n)))
	}
	return list, r
}

// save writes the list and logs the failure.
func (s *session) save(list *todo.List) error {
	if err := list.Save(); err != nil {
		s.logger.Error("save failed", "path", s.cfg.TaskFile, "err", err)
		return fmt.Errorf("saving tasks: %w", err)
	}
	return nil
}

func (s *session) menuCommand(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	list := todo.New(todo.NewFileStore(s.cfg.TaskFile), todo.WithLogger(s.logger))
	for _, line := range ui.Describe("", list.Load(), s.styles) {
		fmt.Fprintln(stdout, line)
	}
	m := menu.New(list, stdin, stdout, menu.WithStyles(s.styles), menu.WithLogger(s.logger))
	return m.Run(ctx)
}

func (s *session) tuiCommand(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	opts := []ui.TUIOption{ui.WithLogger(s.logger), ui.WithStyles(s.styles)}
	if s.cfg.DefaultSort != "" {
		key, err := todo.ParseSortKey(s.cfg.DefaultSort)
		if err != nil {
			return fmt.Errorf("default sort: %w", err)
		}
		opts = append(opts, ui.WithSortKey(key))
	}
	return ui.RunTUI(ctx, s.open(), opts...)
}

func versionCommand() error {
	fmt.Fprintf(stdout, "taskman version %s\n", Version)
	return nil
}

// stylesFor returns colored styles only when w is a terminal.
func stylesFor(w io.Writer) ui.Styles {
	if ui.IsTTY(w) {
		return ui.DefaultStyles()
	}
	return ui.PlainStyles()
}

// parseArgs parses flags that may appear before, between or after
// positional arguments and returns the positional ones.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "taskman - a small task manager for the terminal")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  taskman [options] [command] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  menu                  Interactive numbered menu (default command)")
	fmt.Fprintln(w, "  tui                   Launch terminal UI")
	fmt.Fprintln(w, "  add <title>           Add a task (-priority 1|2|3, -deadline YYYY-MM-DD)")
	fmt.Fprintln(w, "  ls                    List tasks (-filter all|incomplete|complete|overdue, -sort key)")
	fmt.Fprintln(w, "  done <n>              Mark task n as done")
	fmt.Fprintln(w, "  rm <n>                Remove task n")
	fmt.Fprintln(w, "  rename <n> <title>    Rename task n")
	fmt.Fprintln(w, "  search <text>         Find tasks whose title contains text")
	fmt.Fprintln(w, "  sort <key>            Sort and save (priority|status|title|deadline)")
	fmt.Fprintln(w, "  summary               Show task counts")
	fmt.Fprintln(w, "  export                Write tasks to stdout (-format json|yaml)")
	fmt.Fprintln(w, "  check [file]          Validate the task file")
	fmt.Fprintln(w, "  config                Show effective configuration (-example for a sample file)")
	fmt.Fprintln(w, "  version               Show version information")
	fmt.Fprintln(w, "  help                  Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
}
