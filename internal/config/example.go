package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# taskman configuration file
# Values can be overridden by TASKMAN_* environment variables or CLI flags

# Task file (relative to the working directory; supports ~ expansion)
task_file = "tasks.json"

# Sort applied by "taskman ls" and the TUI: priority, status, title, deadline
# default_sort = "deadline"

# Logging: debug, info, warn, error
log_level = "info"

# Log format: text, json, logfmt
log_format = "text"

# Append logs to a file instead of stderr
# log_file = "~/.taskman/taskman.log"

# Include timestamps in log lines
log_timestamps = false
`
}
