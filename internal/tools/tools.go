package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nibzard/tasks-go/internal/storage"
	"github.com/nibzard/tasks-go/internal/task"
)

var (
	statusValues   = enumValues(task.Statuses)
	priorityValues = enumValues(task.Priorities)
	modeValues     = enumValues(storage.MergeModes)
)

func enumValues[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// handlerFunc runs one tool call with the session lock held.
type handlerFunc func(args arguments) (any, error)

// Tools returns every tool the session serves.
func (s *Session) Tools() []server.ServerTool {
	defs := []struct {
		tool   mcp.Tool
		handle handlerFunc
	}{
		{addTaskTool(), s.addTask},
		{getTaskTool(), s.getTask},
		{updateTaskTool(), s.updateTask},
		{completeTaskTool(), s.completeTask},
		{deleteTaskTool(), s.deleteTask},
		{listTasksTool(), s.listTasks},
		{taskStatsTool(), s.taskStats},
		{clearTasksTool(), s.clearTasks},
		{saveTasksTool(), s.saveTasks},
		{validateFileTool(), s.validateFile},
		{loadTasksTool(), s.loadTasks},
	}

	out := make([]server.ServerTool, 0, len(defs))
	for _, d := range defs {
		out = append(out, server.ServerTool{Tool: d.tool, Handler: s.wrap(d.tool.Name, d.handle)})
	}
	return out
}

func (s *Session) wrap(name string, h handlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.mu.Lock()
		defer s.mu.Unlock()

		s.log.Debug("tool call", "tool", name)
		cp := s.store.Checkpoint()
		v, err := h(arguments(req.GetArguments()))
		if err != nil {
			s.store.Rollback(cp)
			s.log.Debug("tool call failed", "tool", name, "err", err)
			return mcp.NewToolResultError(fmt.Sprintf("%s: %v", errorKind(err), err)), nil
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode %s result: %w", name, err)
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

// errorKind names the category of err for tool error results.
func errorKind(err error) string {
	var (
		validation *task.ValidationError
		notFound   *task.NotFoundError
		capacity   *task.CapacityError
		cycle      *task.CircularDependencyError
		invalid    *storage.InvalidFileError
		permission *storage.PermissionError
	)
	switch {
	case errors.As(err, &validation):
		return "validation_error"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &capacity):
		return "capacity_exceeded"
	case errors.As(err, &cycle):
		return "circular_dependency"
	case errors.As(err, &invalid):
		return "invalid_file"
	case errors.As(err, &permission):
		return "permission_denied"
	}
	return "error"
}

func addTaskTool() mcp.Tool {
	return mcp.NewTool("add_task",
		mcp.WithDescription("Create a task. Use empty strings and empty arrays for fields you do not need."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title, 1-500 characters, not blank")),
		mcp.WithString("priority", mcp.Required(), mcp.Enum(priorityValues...), mcp.Description("Task priority")),
		mcp.WithString("notes", mcp.Required(), mcp.Description("Free-form notes, at most 2000 characters")),
		mcp.WithArray("tags", mcp.Required(), mcp.Items(map[string]any{"type": "string"}), mcp.Description("Tags")),
		mcp.WithString("estimated_duration", mcp.Required(), mcp.Description("Free-form estimate such as \"2h\"")),
		mcp.WithArray("dependencies", mcp.Required(), mcp.Items(map[string]any{"type": "integer"}), mcp.Description("Ids of existing tasks this task depends on")),
	)
}

func (s *Session) addTask(args arguments) (any, error) {
	title, err := args.str("title")
	if err != nil {
		return nil, err
	}
	priority, err := priorityArg(args)
	if err != nil {
		return nil, err
	}
	notes, err := args.str("notes")
	if err != nil {
		return nil, err
	}
	tags, err := args.strings("tags")
	if err != nil {
		return nil, err
	}
	estimate, err := args.str("estimated_duration")
	if err != nil {
		return nil, err
	}
	deps, err := args.ints("dependencies")
	if err != nil {
		return nil, err
	}

	t, err := s.store.Add(title, priority, notes, tags, estimate, deps)
	if err != nil {
		return nil, err
	}
	if err := s.commit("add", t.ID, map[string]any{"title": t.Title}); err != nil {
		return nil, err
	}
	return t, nil
}

func getTaskTool() mcp.Tool {
	return mcp.NewTool("get_task",
		mcp.WithDescription("Fetch one task by id."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
		mcp.WithNumber("task_id", mcp.Required(), mcp.Description("Task id")),
	)
}

func (s *Session) getTask(args arguments) (any, error) {
	id, err := args.integer("task_id")
	if err != nil {
		return nil, err
	}
	return s.store.Get(id)
}

func updateTaskTool() mcp.Tool {
	return mcp.NewTool("update_task",
		mcp.WithDescription("Replace every mutable field of a task. Pass the current value for fields that should not change."),
		mcp.WithNumber("task_id", mcp.Required(), mcp.Description("Task id")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title, 1-500 characters, not blank")),
		mcp.WithString("status", mcp.Required(), mcp.Enum(statusValues...), mcp.Description("Task status")),
		mcp.WithString("priority", mcp.Required(), mcp.Enum(priorityValues...), mcp.Description("Task priority")),
		mcp.WithString("notes", mcp.Required(), mcp.Description("Free-form notes, at most 2000 characters")),
		mcp.WithArray("tags", mcp.Required(), mcp.Items(map[string]any{"type": "string"}), mcp.Description("Tags")),
		mcp.WithString("estimated_duration", mcp.Required(), mcp.Description("Free-form estimate such as \"2h\"")),
		mcp.WithArray("dependencies", mcp.Required(), mcp.Items(map[string]any{"type": "integer"}), mcp.Description("Ids of existing tasks this task depends on")),
	)
}

func (s *Session) updateTask(args arguments) (any, error) {
	id, err := args.integer("task_id")
	if err != nil {
		return nil, err
	}
	title, err := args.str("title")
	if err != nil {
		return nil, err
	}
	status, err := args.str("status")
	if err != nil {
		return nil, err
	}
	st, err := task.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	priority, err := priorityArg(args)
	if err != nil {
		return nil, err
	}
	notes, err := args.str("notes")
	if err != nil {
		return nil, err
	}
	tags, err := args.strings("tags")
	if err != nil {
		return nil, err
	}
	estimate, err := args.str("estimated_duration")
	if err != nil {
		return nil, err
	}
	deps, err := args.ints("dependencies")
	if err != nil {
		return nil, err
	}

	t, err := s.store.Update(id, title, st, priority, notes, tags, estimate, deps)
	if err != nil {
		return nil, err
	}
	if err := s.commit("update", t.ID, map[string]any{"status": t.Status}); err != nil {
		return nil, err
	}
	return t, nil
}

func completeTaskTool() mcp.Tool {
	return mcp.NewTool("complete_task",
		mcp.WithDescription("Mark a task completed."),
		mcp.WithNumber("task_id", mcp.Required(), mcp.Description("Task id")),
	)
}

func (s *Session) completeTask(args arguments) (any, error) {
	id, err := args.integer("task_id")
	if err != nil {
		return nil, err
	}
	t, err := s.store.Complete(id)
	if err != nil {
		return nil, err
	}
	if err := s.commit("complete", t.ID, nil); err != nil {
		return nil, err
	}
	return t, nil
}

func deleteTaskTool() mcp.Tool {
	return mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task. Fails while other tasks depend on it."),
		mcp.WithNumber("task_id", mcp.Required(), mcp.Description("Task id")),
	)
}

func (s *Session) deleteTask(args arguments) (any, error) {
	id, err := args.integer("task_id")
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(id); err != nil {
		return nil, err
	}
	if err := s.commit("delete", id, nil); err != nil {
		return nil, err
	}
	return map[string]any{"deleted": id}, nil
}

func listTasksTool() mcp.Tool {
	return mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks in ascending id order. Empty strings disable a filter."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
		mcp.WithString("status", mcp.Required(), mcp.Description("Only tasks with this status: open, in_progress, blocked, completed, or empty for all")),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Only tasks carrying this tag, or empty for all")),
	)
}

func (s *Session) listTasks(args arguments) (any, error) {
	status, err := args.str("status")
	if err != nil {
		return nil, err
	}
	tag, err := args.str("tag")
	if err != nil {
		return nil, err
	}
	var st task.Status
	if status != "" {
		if st, err = task.ParseStatus(status); err != nil {
			return nil, err
		}
	}
	return s.store.List(st, tag), nil
}

func taskStatsTool() mcp.Tool {
	return mcp.NewTool("task_stats",
		mcp.WithDescription("Summarise the store: totals, counts by status and priority, tasks with dependencies."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

func (s *Session) taskStats(arguments) (any, error) {
	return s.store.Stats(), nil
}

func clearTasksTool() mcp.Tool {
	return mcp.NewTool("clear_tasks",
		mcp.WithDescription("Remove every task and reset id allocation to 1."),
	)
}

func (s *Session) clearTasks(arguments) (any, error) {
	n := s.store.Len()
	s.store.Clear()
	if err := s.commit("clear", 0, map[string]any{"removed": n}); err != nil {
		return nil, err
	}
	return map[string]any{"cleared": n}, nil
}

func saveTasksTool() mcp.Tool {
	return mcp.NewTool("save_tasks",
		mcp.WithDescription("Write every task to a JSON file. An existing file is only replaced when skip_confirm is true."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Destination file")),
		mcp.WithBoolean("skip_confirm", mcp.Required(), mcp.Description("Overwrite an existing file without asking")),
	)
}

func (s *Session) saveTasks(args arguments) (any, error) {
	path, err := args.str("path")
	if err != nil {
		return nil, err
	}
	skip, err := args.boolean("skip_confirm")
	if err != nil {
		return nil, err
	}
	return s.persister.Save(path, skip)
}

func validateFileTool() mcp.Tool {
	return mcp.NewTool("validate_file",
		mcp.WithDescription("Check a saved task file and report every problem found."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
		mcp.WithString("path", mcp.Required(), mcp.Description("File to validate")),
	)
}

func (s *Session) validateFile(args arguments) (any, error) {
	path, err := args.str("path")
	if err != nil {
		return nil, err
	}
	return s.persister.Validate(path)
}

func loadTasksTool() mcp.Tool {
	return mcp.NewTool("load_tasks",
		mcp.WithDescription("Load a saved task file. replace wipes the store, merge skips colliding ids, merge_renumber gives colliding tasks fresh ids."),
		mcp.WithString("path", mcp.Required(), mcp.Description("File to load")),
		mcp.WithString("mode", mcp.Required(), mcp.Enum(modeValues...), mcp.Description("Merge mode")),
	)
}

func (s *Session) loadTasks(args arguments) (any, error) {
	path, err := args.str("path")
	if err != nil {
		return nil, err
	}
	raw, err := args.str("mode")
	if err != nil {
		return nil, err
	}
	mode, err := storage.ParseMergeMode(raw)
	if err != nil {
		return nil, err
	}
	result, err := s.persister.Load(path, mode)
	if err != nil {
		return nil, err
	}
	if err := s.commit("load", 0, result); err != nil {
		return nil, err
	}
	return result, nil
}

func priorityArg(args arguments) (task.Priority, error) {
	raw, err := args.str("priority")
	if err != nil {
		return "", err
	}
	return task.ParsePriority(raw)
}
