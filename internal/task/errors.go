package task

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError reports a bad field value, enum or argument.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
	}
	return "validation failed: " + e.Reason
}

// NotFoundError reports an unknown task id.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %d not found", e.ID)
}

// CapacityError reports that the store already holds its maximum number of live tasks.
type CapacityError struct {
	Limit int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("task limit reached: store already holds %d tasks", e.Limit)
}

// CircularDependencyError reports a dependency set that would close a cycle.
// Path, when known, runs from TaskID through the dependency chain back to TaskID.
type CircularDependencyError struct {
	TaskID int
	Path   []int
}

func (e *CircularDependencyError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("circular dependency: task %d cannot depend on itself", e.TaskID)
	}
	return fmt.Sprintf("circular dependency: %s", FormatPath(e.Path))
}

// FormatPath renders a dependency path as "1 -> 2 -> 1".
func FormatPath(path []int) string {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, " -> ")
}
