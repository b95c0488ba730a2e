package config

import (
	"fmt"
	"os"
	"strconv"
)

// loadFromEnv overrides config from TASKMAN_* environment variables.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	setString := func(env, field string, target *string) {
		if v := os.Getenv(env); v != "" {
			*target = v
			sources[field] = SourceEnv
		}
	}

	setString("TASKMAN_FILE", "task_file", &cfg.TaskFile)
	setString("TASKMAN_DEFAULT_SORT", "default_sort", &cfg.DefaultSort)
	setString("TASKMAN_LOG_LEVEL", "log_level", &cfg.LogLevel)
	setString("TASKMAN_LOG_FORMAT", "log_format", &cfg.LogFormat)
	setString("TASKMAN_LOG_FILE", "log_file", &cfg.LogFile)

	if v := os.Getenv("TASKMAN_LOG_TIMESTAMPS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TASKMAN_LOG_TIMESTAMPS: %w", err)
		}
		cfg.LogTimestamps = b
		sources["log_timestamps"] = SourceEnv
	}
	return nil
}
