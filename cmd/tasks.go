package cmd

import (
	"encoding/json"
	"flag"
	"fmt"
	"strings"

	"github.com/nibzard/tasks-go/internal/task"
	"github.com/nibzard/tasks-go/internal/utils"
)

// taskFlags are the field flags shared by add and update.
type taskFlags struct {
	title    *string
	status   *string
	priority *string
	notes    *string
	tags     *string
	estimate *string
	deps     *string
}

func defineTaskFlags(fs *flag.FlagSet, withTitleAndStatus bool) *taskFlags {
	f := &taskFlags{}
	if withTitleAndStatus {
		f.title = fs.String("title", "", "Task title")
		f.status = fs.String("status", "", "Status (open|in_progress|blocked|completed)")
	}
	f.priority = fs.String("p", "medium", "Priority (low|medium|high|urgent)")
	fs.StringVar(f.priority, "priority", "medium", "Priority (low|medium|high|urgent)")
	f.notes = fs.String("notes", "", "Notes")
	f.tags = fs.String("tags", "", "Comma-separated tags")
	f.estimate = fs.String("estimate", "", "Estimated duration")
	f.deps = fs.String("deps", "", "Comma-separated ids of tasks this one depends on")
	return f
}

// addCommand creates a task from the remaining arguments.
func (c *cli) addCommand(args []string) error {
	fs := c.newFlagSet("add")
	f := defineTaskFlags(fs, false)
	asJSON := fs.Bool("json", false, "Print the created task as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	title := strings.Join(fs.Args(), " ")
	priority, err := task.ParsePriority(*f.priority)
	if err != nil {
		return err
	}
	deps, err := utils.ParseIDList(*f.deps)
	if err != nil {
		return err
	}

	p, err := c.openStore()
	if err != nil {
		return err
	}
	t, err := p.Store().Add(title, priority, *f.notes, utils.SplitAndTrim(*f.tags, ","), *f.estimate, deps)
	if err != nil {
		return err
	}
	if err := c.commit(p, "add", t.ID, map[string]any{"title": t.Title}); err != nil {
		return err
	}

	if *asJSON {
		return c.printJSON(t)
	}
	fmt.Fprintf(c.out, "Added task %d: %s\n", t.ID, t.Title)
	return nil
}

// getCommand prints one task.
func (c *cli) getCommand(args []string) error {
	fs := c.newFlagSet("get")
	asJSON := fs.Bool("json", false, "Print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := c.idArg(fs)
	if err != nil {
		return err
	}

	p, err := c.openStore()
	if err != nil {
		return err
	}
	t, err := p.Store().Get(id)
	if err != nil {
		return err
	}
	if *asJSON {
		return c.printJSON(t)
	}
	c.printTaskDetail(t)
	return nil
}

// updateCommand changes the fields named by flags and keeps the rest.
func (c *cli) updateCommand(args []string) error {
	fs := c.newFlagSet("update")
	f := defineTaskFlags(fs, true)
	asJSON := fs.Bool("json", false, "Print the updated task as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := c.idArg(fs)
	if err != nil {
		return err
	}

	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	delete(set, "json")
	if len(set) == 0 {
		return fmt.Errorf("update: nothing to change, pass at least one field flag")
	}

	p, err := c.openStore()
	if err != nil {
		return err
	}
	cur, err := p.Store().Get(id)
	if err != nil {
		return err
	}

	title, status, priority := cur.Title, cur.Status, cur.Priority
	notes, tags, estimate, deps := cur.Notes, cur.Tags, cur.EstimatedDuration, cur.Dependencies
	if set["title"] {
		title = *f.title
	}
	if set["status"] {
		if status, err = task.ParseStatus(*f.status); err != nil {
			return err
		}
	}
	if set["p"] || set["priority"] {
		if priority, err = task.ParsePriority(*f.priority); err != nil {
			return err
		}
	}
	if set["notes"] {
		notes = *f.notes
	}
	if set["tags"] {
		tags = utils.SplitAndTrim(*f.tags, ",")
	}
	if set["estimate"] {
		estimate = *f.estimate
	}
	if set["deps"] {
		if deps, err = utils.ParseIDList(*f.deps); err != nil {
			return err
		}
	}

	t, err := p.Store().Update(id, title, status, priority, notes, tags, estimate, deps)
	if err != nil {
		return err
	}
	if err := c.commit(p, "update", t.ID, map[string]any{"status": t.Status}); err != nil {
		return err
	}

	if *asJSON {
		return c.printJSON(t)
	}
	fmt.Fprintf(c.out, "Updated task %d: %s\n", t.ID, t.Title)
	return nil
}

// completeCommand marks a task completed.
func (c *cli) completeCommand(args []string) error {
	fs := c.newFlagSet("complete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := c.idArg(fs)
	if err != nil {
		return err
	}

	p, err := c.openStore()
	if err != nil {
		return err
	}
	t, err := p.Store().Complete(id)
	if err != nil {
		return err
	}
	if err := c.commit(p, "complete", t.ID, nil); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Completed task %d: %s\n", t.ID, t.Title)
	return nil
}

// deleteCommand removes a task after confirmation.
func (c *cli) deleteCommand(args []string) error {
	fs := c.newFlagSet("delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := c.idArg(fs)
	if err != nil {
		return err
	}

	p, err := c.openStore()
	if err != nil {
		return err
	}
	t, err := p.Store().Get(id)
	if err != nil {
		return err
	}
	if dependents := p.Store().Dependents(id); len(dependents) > 0 {
		return fmt.Errorf("task %d cannot be deleted: tasks %v depend on it", id, dependents)
	}
	if ok, reason := c.confirmer().Confirm(fmt.Sprintf("Delete task %d (%s)?", t.ID, t.Title)); !ok {
		fmt.Fprintf(c.out, "Not deleted: %s\n", reason)
		return nil
	}

	if err := p.Store().Delete(id); err != nil {
		return err
	}
	if err := c.commit(p, "delete", id, map[string]any{"title": t.Title}); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Deleted task %d\n", id)
	return nil
}

// lsCommand lists tasks grouped by status, or only those matching filters.
func (c *cli) lsCommand(args []string) error {
	fs := c.newFlagSet("ls")
	statusFilter := fs.String("status", "", "Filter by status (open|in_progress|blocked|completed)")
	tag := fs.String("tag", "", "Filter by tag")
	asJSON := fs.Bool("json", false, "Print JSON")
	verbose := fs.Bool("v", false, "Show more details")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	var status task.Status
	if *statusFilter != "" {
		s, err := task.ParseStatus(*statusFilter)
		if err != nil {
			return err
		}
		status = s
	}

	p, err := c.openStore()
	if err != nil {
		return err
	}
	tasks := p.Store().List(status, *tag)
	if *asJSON {
		return c.printJSON(tasks)
	}
	if len(tasks) == 0 {
		fmt.Fprintln(c.out, "No tasks found.")
		return nil
	}
	if status != "" {
		for _, t := range tasks {
			c.printTask(t, *verbose)
		}
		return nil
	}
	for _, s := range task.Statuses {
		c.printTasksByStatus(tasks, s, *verbose)
	}
	return nil
}

// statsCommand prints aggregate counts.
func (c *cli) statsCommand(args []string) error {
	fs := c.newFlagSet("stats")
	asJSON := fs.Bool("json", false, "Print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := c.openStore()
	if err != nil {
		return err
	}
	st := p.Store().Stats()
	if *asJSON {
		return c.printJSON(st)
	}

	fmt.Fprintf(c.out, "Tasks: %d (total created: %d, next id: %d)\n", st.Total, st.TotalCreated, st.NextID)
	fmt.Fprintln(c.out, "By status:")
	for _, s := range task.Statuses {
		fmt.Fprintf(c.out, "  %-12s %d\n", s, st.ByStatus[s])
	}
	fmt.Fprintln(c.out, "By priority:")
	for _, pr := range task.Priorities {
		fmt.Fprintf(c.out, "  %-12s %d\n", pr, st.ByPriority[pr])
	}
	fmt.Fprintf(c.out, "With dependencies: %d\n", st.WithDependencies)
	return nil
}

// clearCommand removes every task after confirmation.
func (c *cli) clearCommand(args []string) error {
	fs := c.newFlagSet("clear")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := c.openStore()
	if err != nil {
		return err
	}
	n := p.Store().Len()
	if ok, reason := c.confirmer().Confirm(fmt.Sprintf("Delete all %d tasks and reset ids?", n)); !ok {
		fmt.Fprintf(c.out, "Not cleared: %s\n", reason)
		return nil
	}
	p.Store().Clear()
	if err := c.commit(p, "clear", 0, map[string]any{"removed": n}); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Cleared %d tasks\n", n)
	return nil
}

func (c *cli) idArg(fs *flag.FlagSet) (int, error) {
	raw, err := oneArg(fs, "task id")
	if err != nil {
		return 0, err
	}
	return utils.ParseID(raw)
}

func (c *cli) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	fmt.Fprintln(c.out, string(data))
	return nil
}

var statusIcons = map[task.Status]string{
	task.StatusOpen:       "📝",
	task.StatusInProgress: "🔄",
	task.StatusBlocked:    "🚫",
	task.StatusCompleted:  "✅",
}

// printTasksByStatus prints the tasks with one status under a heading.
func (c *cli) printTasksByStatus(tasks []task.Task, status task.Status, verbose bool) {
	var matching []task.Task
	for _, t := range tasks {
		if t.Status == status {
			matching = append(matching, t)
		}
	}
	if len(matching) == 0 {
		return
	}
	fmt.Fprintf(c.out, "%s (%d):\n", status, len(matching))
	for _, t := range matching {
		c.printTask(t, verbose)
	}
	fmt.Fprintln(c.out)
}

// printTask prints a single task line.
func (c *cli) printTask(t task.Task, verbose bool) {
	fmt.Fprintf(c.out, "  %s [%d] (%s) %s\n", statusIcons[t.Status], t.ID, t.Priority, t.Title)
	if !verbose {
		return
	}
	if t.Notes != "" {
		fmt.Fprintf(c.out, "      Notes: %s\n", t.Notes)
	}
	if len(t.Tags) > 0 {
		fmt.Fprintf(c.out, "      Tags: %s\n", strings.Join(t.Tags, ", "))
	}
	if len(t.Dependencies) > 0 {
		fmt.Fprintf(c.out, "      Depends on: %v\n", t.Dependencies)
	}
}

func (c *cli) printTaskDetail(t task.Task) {
	fmt.Fprintf(c.out, "Task %d: %s\n", t.ID, t.Title)
	fmt.Fprintf(c.out, "  Status:     %s\n", t.Status)
	fmt.Fprintf(c.out, "  Priority:   %s\n", t.Priority)
	if t.EstimatedDuration != "" {
		fmt.Fprintf(c.out, "  Estimate:   %s\n", t.EstimatedDuration)
	}
	if len(t.Tags) > 0 {
		fmt.Fprintf(c.out, "  Tags:       %s\n", strings.Join(t.Tags, ", "))
	}
	if len(t.Dependencies) > 0 {
		fmt.Fprintf(c.out, "  Depends on: %v\n", t.Dependencies)
	}
	fmt.Fprintf(c.out, "  Created:    %s\n", t.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(c.out, "  Updated:    %s\n", t.UpdatedAt.Format("2006-01-02 15:04:05"))
	if t.Notes != "" {
		fmt.Fprintf(c.out, "\n%s\n", t.Notes)
	}
}
