package config

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// Default values.
const (
	DefaultTaskFile  = "tasks.json"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config holds the full configuration for taskman.
type Config struct {
	// Paths
	TaskFile string `toml:"task_file"`

	// Listing
	DefaultSort string `toml:"default_sort"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogFile       string `toml:"log_file"`
	LogTimestamps bool   `toml:"log_timestamps"`

	// Working directory (computed)
	WorkDir string `toml:"-"`
}

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, in load order.
	Files []string
}

// configFields returns the configurable field names, keyed as in TOML.
func configFields() []string {
	return []string{
		"task_file",
		"default_sort",
		"log_level",
		"log_format",
		"log_file",
		"log_timestamps",
	}
}

// Get returns the value of a field by its TOML key.
func (c *Config) Get(field string) string {
	switch field {
	case "task_file":
		return c.TaskFile
	case "default_sort":
		return c.DefaultSort
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_file":
		return c.LogFile
	case "log_timestamps":
		if c.LogTimestamps {
			return "true"
		}
		return "false"
	}
	return ""
}

// Fields returns the configurable field names in display order.
func Fields() []string {
	return configFields()
}
