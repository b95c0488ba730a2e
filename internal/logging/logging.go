// Package logging builds the charmbracelet/log logger used across taskman.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Prefix is printed before every log line.
const Prefix = "taskman"

// Options holds configuration for a logger.
type Options struct {
	Level           log.Level
	Formatter       log.Formatter
	ReportTimestamp bool
	Prefix          string
}

// DefaultOptions returns default options for console logging.
func DefaultOptions() Options {
	return Options{
		Level:           log.InfoLevel,
		Formatter:       log.TextFormatter,
		ReportTimestamp: false,
		Prefix:          Prefix,
	}
}

// New creates a logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       opts.Formatter,
		ReportTimestamp: opts.ReportTimestamp,
		Prefix:          opts.Prefix,
	})
}

// ParseLevel parses a string log level. Unknown values mean info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ParseFormatter parses a formatter name. Unknown values mean text.
func ParseFormatter(format string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// Setup describes where and how to log, usually taken from config.
type Setup struct {
	Level      string
	Format     string
	Timestamps bool
	// File, when set, receives logs in append mode instead of Fallback.
	File     string
	Fallback io.Writer
}

// Open builds a logger from s. The returned close function releases the log
// file, if one was opened, and is always safe to call.
func Open(s Setup) (*log.Logger, func() error, error) {
	opts := DefaultOptions()
	opts.Level = ParseLevel(s.Level)
	opts.Formatter = ParseFormatter(s.Format)
	opts.ReportTimestamp = s.Timestamps

	if s.File == "" {
		w := s.Fallback
		if w == nil {
			w = os.Stderr
		}
		return New(w, opts), func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(s.File), 0755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(s.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	// Files always get timestamps; they outlive the session.
	opts.ReportTimestamp = true
	return New(f, opts), f.Close, nil
}
