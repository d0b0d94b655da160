package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# tasks configuration file
# Values can be overridden by TASKS_* environment variables or CLI flags

# Task state file (relative to the working directory)
state_file = "tasks.json"

# Maximum number of live tasks accepted by add
max_tasks = 50

# Mutation journal directory (supports ~ and $VAR expansion)
# Set to "" to disable the journal
log_dir = "~/.tasks/logs"

# Answer yes to delete, clear and overwrite prompts
assume_yes = false

# Logging
log_level = "info"      # debug, info, warn, error
log_format = "text"     # text, json, logfmt
log_timestamps = false
log_caller = false
`
}
