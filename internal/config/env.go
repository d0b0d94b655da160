package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// loadFromEnv overrides config from TASKS_* environment variables.
// If sources is non-nil, it records each value it sets.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	set := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}

	if v := os.Getenv("TASKS_STATE_FILE"); v != "" {
		cfg.StateFile = v
		set("state_file")
	}
	// An explicitly empty TASKS_LOG_DIR disables the journal.
	if v, ok := os.LookupEnv("TASKS_LOG_DIR"); ok {
		cfg.LogDir = v
		set("log_dir")
	}
	if v := os.Getenv("TASKS_MAX_TASKS"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("TASKS_MAX_TASKS: invalid integer %q", v)
		}
		cfg.MaxTasks = n
		set("max_tasks")
	}
	if v := os.Getenv("TASKS_ASSUME_YES"); v != "" {
		cfg.AssumeYes = boolFromString(v)
		set("assume_yes")
	}

	// Logging configuration
	if v := os.Getenv("TASKS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		set("log_level")
	}
	if v := os.Getenv("TASKS_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
		set("log_format")
	}
	if v := os.Getenv("TASKS_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = boolFromString(v)
		set("log_timestamps")
	}
	if v := os.Getenv("TASKS_LOG_CALLER"); v != "" {
		cfg.LogCaller = boolFromString(v)
		set("log_caller")
	}
	return nil
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
