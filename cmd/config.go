package cmd

import (
	"fmt"
	"strings"

	"github.com/nibzard/tasks-go/internal/config"
)

// configCommand prints the effective configuration and where each value came
// from, or an example config file.
func (c *cli) configCommand(args []string) error {
	fs := c.newFlagSet("config")
	example := fs.Bool("example", false, "Print an example tasks.toml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *example {
		fmt.Fprint(c.out, config.ExampleConfig())
		return nil
	}

	cfg := c.cfg.Config
	fmt.Fprintln(c.out, "Configuration")
	fmt.Fprintln(c.out)
	for _, field := range config.Fields() {
		value := cfg.Value(field)
		if value == "" {
			value = `""`
		}
		fmt.Fprintf(c.out, "  %-15s %-40s (%s)\n", field, value, c.cfg.Sources[field])
	}
	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "Project root: %s\n", cfg.ProjectRoot)
	if len(c.cfg.Files) == 0 {
		fmt.Fprintln(c.out, "Config files: none")
	} else {
		fmt.Fprintf(c.out, "Config files: %s\n", strings.Join(c.cfg.Files, ", "))
	}
	return nil
}

var commandNames = []string{
	"add", "get", "update", "complete", "delete", "ls", "stats", "clear", "save",
	"validate", "load", "serve", "tui", "journal", "config", "completion", "version", "help",
}

// completionCommand prints a completion script for shell.
func (c *cli) completionCommand(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("completion: expected one shell (bash|zsh|fish)")
	}
	words := strings.Join(commandNames, " ")
	switch strings.ToLower(args[0]) {
	case "bash":
		fmt.Fprintf(c.out, bashCompletion, words)
	case "zsh":
		fmt.Fprintf(c.out, zshCompletion, words)
	case "fish":
		fmt.Fprintf(c.out, fishCompletion, words)
	default:
		return fmt.Errorf("completion: unsupported shell %q (bash|zsh|fish)", args[0])
	}
	return nil
}

const bashCompletion = `# tasks bash completion
_tasks() {
    local cur="${COMP_WORDS[COMP_CWORD]}"
    if [ "$COMP_CWORD" -eq 1 ]; then
        COMPREPLY=($(compgen -W "%s" -- "$cur"))
        return
    fi
    case "${COMP_WORDS[1]}" in
        load) COMPREPLY=($(compgen -W "-mode replace merge merge_renumber" -- "$cur")) ;;
        completion) COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur")) ;;
        *) COMPREPLY=($(compgen -f -- "$cur")) ;;
    esac
}
complete -F _tasks tasks
`

const zshCompletion = `#compdef tasks
# tasks zsh completion
_tasks() {
    if (( CURRENT == 2 )); then
        compadd -- %s
        return
    fi
    case "$words[2]" in
        load) compadd -- -mode replace merge merge_renumber ;;
        completion) compadd -- bash zsh fish ;;
        *) _files ;;
    esac
}
compdef _tasks tasks
`

const fishCompletion = `# tasks fish completion
complete -c tasks -f -n "__fish_use_subcommand" -a "%s"
complete -c tasks -f -n "__fish_seen_subcommand_from load" -a "replace merge merge_renumber"
complete -c tasks -f -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
