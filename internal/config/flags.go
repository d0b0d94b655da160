package config

import (
	"flag"
)

// flagFields maps flag names to config field names.
var flagFields = map[string]string{
	"state":          "state_file",
	"log-dir":        "log_dir",
	"max-tasks":      "max_tasks",
	"yes":            "assume_yes",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
}

// parseFlags defines the global flags on fs, parses args and applies the
// flags that were set explicitly. If sources is non-nil, it records them.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("tasks", flag.ContinueOnError)
	}

	// Defaults shown in usage reflect the lower-priority layers.
	fs.StringVar(&cfg.StateFile, "state", cfg.StateFile, "Path to the task state file")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Journal directory (empty disables the journal)")
	fs.IntVar(&cfg.MaxTasks, "max-tasks", cfg.MaxTasks, "Maximum number of live tasks accepted by add")
	fs.BoolVar(&cfg.AssumeYes, "yes", cfg.AssumeYes, "Answer yes to confirmation prompts")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if sources != nil {
		fs.Visit(func(f *flag.Flag) {
			if field, ok := flagFields[f.Name]; ok {
				sources[field] = SourceFlag
			}
		})
	}
	return nil
}
