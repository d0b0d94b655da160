package config

import (
	"fmt"
	"strings"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, lowest priority first.
	Files []string
}

// Default values.
const (
	DefaultStateFile = "tasks.json"
	DefaultMaxTasks  = 50
	DefaultLogDir    = "~/.tasks/logs"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config holds the full configuration for the tasks CLI.
type Config struct {
	// Paths
	StateFile string `toml:"state_file"`
	LogDir    string `toml:"log_dir"` // journal location, empty disables the journal

	// Store
	MaxTasks int `toml:"max_tasks"`

	// Prompts
	AssumeYes bool `toml:"assume_yes"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// Validate checks values that cannot be corrected silently.
func (c *Config) Validate() error {
	if c.MaxTasks <= 0 {
		return fmt.Errorf("max_tasks must be positive, got %d", c.MaxTasks)
	}
	if strings.TrimSpace(c.StateFile) == "" {
		return fmt.Errorf("state_file must not be empty")
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json", "logfmt":
	default:
		return fmt.Errorf("log_format must be one of text, json, logfmt; got %q", c.LogFormat)
	}
	return nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.StateFile = DefaultStateFile
	cfg.LogDir = DefaultLogDir
	cfg.MaxTasks = DefaultMaxTasks
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"state_file",
		"log_dir",
		"max_tasks",
		"assume_yes",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// Fields returns the configurable field names in display order.
func Fields() []string {
	return configFields()
}

// Value returns the effective value of a field by its TOML name.
func (c *Config) Value(field string) string {
	switch field {
	case "state_file":
		return c.StateFile
	case "log_dir":
		return c.LogDir
	case "max_tasks":
		return fmt.Sprint(c.MaxTasks)
	case "assume_yes":
		return fmt.Sprint(c.AssumeYes)
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return fmt.Sprint(c.LogTimestamps)
	case "log_caller":
		return fmt.Sprint(c.LogCaller)
	}
	return ""
}
