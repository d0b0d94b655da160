// Package cmd implements the CLI command structure for tasks.
package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasks-go/internal/config"
	"github.com/nibzard/tasks-go/internal/logging"
	"github.com/nibzard/tasks-go/internal/storage"
	"github.com/nibzard/tasks-go/internal/task"
)

// Version is set via ldflags at build time.
var Version = "dev"

// cli carries the state shared by every subcommand of one invocation.
type cli struct {
	cfg     *config.ConfigWithSources
	in      *bufio.Reader
	out     io.Writer
	errOut  io.Writer
	log     *log.Logger
	journal *logging.Journal
}

// Run executes the tasks CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdin, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("tasks", flag.ContinueOnError)
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
	c := &cli{
		cfg:    cws,
		in:     bufio.NewReader(stdin),
		out:    stdout,
		errOut: stderr,
		log: logging.NewConsoleFromConfig(stderr,
			cws.Config.LogLevel, cws.Config.LogFormat, cws.Config.LogTimestamps, cws.Config.LogCaller),
	}
	defer c.closeJournal()

	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return c.versionCommand()
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		printUsage(fs, stdout)
		return nil
	}
	subcommand, rest := remaining[0], remaining[1:]

	switch subcommand {
	case "add":
		return c.addCommand(rest)
	case "get", "show":
		return c.getCommand(rest)
	case "update":
		return c.updateCommand(rest)
	case "complete", "done":
		return c.completeCommand(rest)
	case "delete", "rm":
		return c.deleteCommand(rest)
	case "ls", "list":
		return c.lsCommand(rest)
	case "stats":
		return c.statsCommand(rest)
	case "clear":
		return c.clearCommand(rest)
	case "save":
		return c.saveCommand(rest)
	case "validate":
		return c.validateCommand(rest)
	case "load":
		return c.loadCommand(rest)
	case "serve":
		return c.serveCommand(ctx, rest)
	case "tui":
		return c.tuiCommand(ctx, rest)
	case "journal":
		return c.journalCommand(ctx, rest)
	case "config":
		return c.configCommand(rest)
	case "completion":
		return c.completionCommand(rest)
	case "version":
		return c.versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// openStore restores the state file into a fresh store bound to a persister.
func (c *cli) openStore() (*storage.Persister, error) {
	cfg := c.cfg.Config
	store := task.NewStore(task.WithCapacity(cfg.MaxTasks))
	p := storage.NewPersister(store,
		storage.WithLogger(c.log),
		storage.WithConfirmer(c.confirmer()),
	)
	if _, err := p.Restore(cfg.StateFile); err != nil {
		return nil, fmt.Errorf("restoring %s: %w", cfg.StateFile, err)
	}
	return p, nil
}

// commit writes the store back to the state file and journals the mutation.
func (c *cli) commit(p *storage.Persister, op string, taskID int, detail any) error {
	if _, err := p.Save(c.cfg.Config.StateFile, true); err != nil {
		return fmt.Errorf("saving %s: %w", c.cfg.Config.StateFile, err)
	}
	c.record(op, taskID, detail)
	return nil
}

// openJournal returns the journal for this run, creating it on first use.
// It returns nil when the journal is disabled or cannot be created.
func (c *cli) openJournal() *logging.Journal {
	if c.journal != nil || c.cfg.Config.LogDir == "" {
		return c.journal
	}
	j, err := logging.NewJournal(c.cfg.Config.LogDir, c.cfg.Config.ProjectRoot)
	if err != nil {
		c.log.Warn("journal disabled", "err", err)
		c.cfg.Config.LogDir = ""
		return nil
	}
	c.journal = j
	return j
}

func (c *cli) record(op string, taskID int, detail any) {
	if err := c.openJournal().Record(op, taskID, detail); err != nil {
		c.log.Warn("journal write failed", "op", op, "err", err)
	}
}

func (c *cli) closeJournal() {
	if err := c.journal.Close(); err != nil {
		c.log.Warn("closing journal", "err", err)
	}
}

// versionCommand prints version information.
func (c *cli) versionCommand() error {
	fmt.Fprintf(c.out, "tasks version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "tasks - A dependency-aware task tracker")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasks [global options] <command> [options] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  add [options] <title>       Create a task")
	fmt.Fprintln(w, "  get <id>                    Show one task")
	fmt.Fprintln(w, "  update [options] <id>       Change fields of a task")
	fmt.Fprintln(w, "  complete <id>               Mark a task completed")
	fmt.Fprintln(w, "  delete <id>                 Delete a task")
	fmt.Fprintln(w, "  ls [options]                List tasks")
	fmt.Fprintln(w, "  stats                       Show task statistics")
	fmt.Fprintln(w, "  clear                       Delete every task and reset ids")
	fmt.Fprintln(w, "  save <path>                 Write tasks to a file")
	fmt.Fprintln(w, "  validate [path]             Check a task file (default: state file)")
	fmt.Fprintln(w, "  load -mode <mode> <path>    Load a task file (replace|merge|merge_renumber)")
	fmt.Fprintln(w, "  serve                       Serve the task tools over MCP stdio")
	fmt.Fprintln(w, "  tui [path]                  Launch the task board")
	fmt.Fprintln(w, "  journal [-n N] [-f]         Show the latest mutation journal")
	fmt.Fprintln(w, "  config [-example]           Show effective configuration")
	fmt.Fprintln(w, "  completion <shell>          Print a shell completion script")
	fmt.Fprintln(w, "  version                     Show version information")
	fmt.Fprintln(w, "  help                        Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add/Update Options:")
	fmt.Fprintln(w, "  -title string       Title (update only)")
	fmt.Fprintln(w, "  -status string      open|in_progress|blocked|completed (update only)")
	fmt.Fprintln(w, "  -p string           low|medium|high|urgent")
	fmt.Fprintln(w, "  -notes string       Notes")
	fmt.Fprintln(w, "  -tags string        Comma-separated tags")
	fmt.Fprintln(w, "  -estimate string    Estimated duration")
	fmt.Fprintln(w, "  -deps string        Comma-separated dependency ids")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options:")
	fmt.Fprintln(w, "  -status string      Filter by status")
	fmt.Fprintln(w, "  -tag string         Filter by tag")
	fmt.Fprintln(w, "  -json               Print JSON")
	fmt.Fprintln(w, "  -v                  Show more details")
}

// newFlagSet returns a subcommand flag set that reports errors to c.errOut.
func (c *cli) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("tasks "+name, flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	return fs
}

// oneArg returns the single positional argument left after parsing fs.
func oneArg(fs *flag.FlagSet, what string) (string, error) {
	remaining := fs.Args()
	if len(remaining) == 0 {
		return "", fmt.Errorf("%s: missing %s", fs.Name(), what)
	}
	if len(remaining) > 1 {
		return "", fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	return strings.TrimSpace(remaining[0]), nil
}
