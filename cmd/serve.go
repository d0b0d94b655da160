package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/nibzard/tasks-go/internal/logging"
	"github.com/nibzard/tasks-go/internal/task"
	"github.com/nibzard/tasks-go/internal/tools"
	"github.com/nibzard/tasks-go/internal/ui"
)

// serveCommand exposes the state file over MCP stdio until stdin closes or
// ctx is cancelled.
func (c *cli) serveCommand(ctx context.Context, args []string) error {
	fs := c.newFlagSet("serve")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	cfg := c.cfg.Config
	opts := []tools.SessionOption{
		tools.WithLogger(c.log),
		tools.WithStateFile(cfg.StateFile),
	}
	if j := c.openJournal(); j != nil {
		opts = append(opts, tools.WithJournal(j))
	}
	sess := tools.NewSession(task.NewStore(task.WithCapacity(cfg.MaxTasks)), opts...)
	if _, err := sess.Restore(); err != nil {
		return fmt.Errorf("restoring %s: %w", cfg.StateFile, err)
	}

	return tools.ServeStdio(ctx, tools.NewServer(sess, Version), sess, c.in, c.out)
}

// tuiCommand launches the task board.
func (c *cli) tuiCommand(ctx context.Context, args []string) error {
	fs := c.newFlagSet("tui")
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	path := c.cfg.Config.StateFile
	if len(remaining) == 1 {
		path = remaining[0]
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.cfg.Config.ProjectRoot, path)
	}

	return ui.RunBoard(ctx, path, ui.WithLogger(c.log))
}

// journalCommand prints the latest mutation journal.
func (c *cli) journalCommand(ctx context.Context, args []string) error {
	fs := c.newFlagSet("journal")
	follow := fs.Bool("f", false, "Follow the journal (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the journal (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := c.cfg.Config
	if cfg.LogDir == "" {
		return fmt.Errorf("journal is disabled: log_dir is empty")
	}
	dir, err := logging.FindJournalDir(cfg.LogDir, cfg.ProjectRoot)
	if err != nil {
		return fmt.Errorf("finding journal directory: %w", err)
	}
	path, err := logging.FindLatestJournal(dir)
	if err != nil {
		return fmt.Errorf("finding latest journal: %w", err)
	}
	if path == "" {
		fmt.Fprintln(c.out, "No journal files found.")
		return nil
	}

	fmt.Fprintf(c.out, "Journal: %s\n", path)
	if *follow {
		fmt.Fprintln(c.out, "(Ctrl+C to stop)")
	}
	fmt.Fprintln(c.out)
	return logging.TailJournal(ctx, c.out, path, *n, *follow)
}
