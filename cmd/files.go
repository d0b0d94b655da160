package cmd

import (
	"fmt"

	"github.com/nibzard/tasks-go/internal/storage"
)

// saveCommand writes the current tasks to another file.
func (c *cli) saveCommand(args []string) error {
	fs := c.newFlagSet("save")
	asJSON := fs.Bool("json", false, "Print the result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := oneArg(fs, "destination path")
	if err != nil {
		return err
	}

	p, err := c.openStore()
	if err != nil {
		return err
	}
	res, err := p.Save(path, false)
	if err != nil {
		return err
	}
	if *asJSON {
		return c.printJSON(res)
	}
	if !res.Success {
		fmt.Fprintf(c.out, "Not saved: %s\n", res.Reason)
		return nil
	}
	fmt.Fprintf(c.out, "Saved %d tasks to %s\n", res.TaskCount, res.Path)
	return nil
}

// validateCommand checks a task file and lists every problem found.
func (c *cli) validateCommand(args []string) error {
	fs := c.newFlagSet("validate")
	asJSON := fs.Bool("json", false, "Print the report as JSON")
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

	report, err := storage.ValidateFile(path)
	if err != nil {
		return err
	}
	if *asJSON {
		if err := c.printJSON(report); err != nil {
			return err
		}
	} else if report.Valid {
		fmt.Fprintf(c.out, "✅ %s is valid (%d tasks)\n", path, report.TaskCount)
	} else {
		fmt.Fprintf(c.out, "❌ %s is invalid:\n", path)
		for _, problem := range report.Errors {
			fmt.Fprintf(c.out, "   - %s\n", problem)
		}
	}
	if !report.Valid {
		return fmt.Errorf("validation failed: %d problems", len(report.Errors))
	}
	return nil
}

// loadCommand combines a task file with the state file.
func (c *cli) loadCommand(args []string) error {
	fs := c.newFlagSet("load")
	rawMode := fs.String("mode", "", "Merge mode (replace|merge|merge_renumber)")
	asJSON := fs.Bool("json", false, "Print the result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := oneArg(fs, "source path")
	if err != nil {
		return err
	}
	if *rawMode == "" {
		return fmt.Errorf("load: -mode is required (replace|merge|merge_renumber)")
	}
	mode, err := storage.ParseMergeMode(*rawMode)
	if err != nil {
		return err
	}

	p, err := c.openStore()
	if err != nil {
		return err
	}
	if mode == storage.ModeReplace && p.Store().Len() > 0 {
		prompt := fmt.Sprintf("Replace all %d tasks with the contents of %s?", p.Store().Len(), path)
		if ok, reason := c.confirmer().Confirm(prompt); !ok {
			fmt.Fprintf(c.out, "Not loaded: %s\n", reason)
			return nil
		}
	}
	res, err := p.Load(path, mode)
	if err != nil {
		return err
	}
	if err := c.commit(p, "load", 0, res); err != nil {
		return err
	}

	if *asJSON {
		return c.printJSON(res)
	}
	fmt.Fprintf(c.out, "Loaded %d tasks from %s (%s)\n", res.TasksLoaded, path, res.ModeUsed)
	if res.TasksSkipped > 0 {
		fmt.Fprintf(c.out, "  Skipped %d tasks whose ids were already in use\n", res.TasksSkipped)
	}
	for _, r := range res.TasksRenumbered {
		fmt.Fprintf(c.out, "  Renumbered %d -> %d\n", r.OldID, r.NewID)
	}
	return nil
}
