package task

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// Field limits.
const (
	MaxTitleLength = 500
	MaxNotesLength = 2000

	// DefaultCapacity is the maximum number of live tasks a store accepts through Add.
	DefaultCapacity = 50
)

// Status represents a task status. Any status may follow any other.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusCompleted  Status = "completed"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusBlocked, StatusCompleted}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return slices.Contains(Statuses, s)
}

// ParseStatus converts a user-supplied string into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", &ValidationError{
			Field:  "status",
			Reason: fmt.Sprintf("invalid status %q, must be one of: open, in_progress, blocked, completed", s),
		}
	}
	return status, nil
}

// Priority represents a task priority.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists every valid priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// String returns the string representation of the priority.
func (p Priority) String() string {
	return string(p)
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return slices.Contains(Priorities, p)
}

// ParsePriority converts a user-supplied string into a Priority.
func ParsePriority(s string) (Priority, error) {
	priority := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !priority.Valid() {
		return "", &ValidationError{
			Field:  "priority",
			Reason: fmt.Sprintf("invalid priority %q, must be one of: low, medium, high, urgent", s),
		}
	}
	return priority, nil
}

// Task is a single unit of trackable work.
type Task struct {
	ID                int       `json:"id"`
	Title             string    `json:"title"`
	Status            Status    `json:"status"`
	Priority          Priority  `json:"priority"`
	Notes             string    `json:"notes"`
	Tags              []string  `json:"tags"`
	EstimatedDuration string    `json:"estimated_duration"`
	Dependencies      []int     `json:"dependencies"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Clone returns a deep copy of the task. Nil slices become empty slices.
func (t Task) Clone() Task {
	c := t
	c.Tags = append(make([]string, 0, len(t.Tags)), t.Tags...)
	c.Dependencies = append(make([]int, 0, len(t.Dependencies)), t.Dependencies...)
	return c
}

// HasTag reports whether the task carries the given tag.
func (t Task) HasTag(tag string) bool {
	return slices.Contains(t.Tags, tag)
}

// Filter selects tasks in List. Zero values disable a dimension.
type Filter struct {
	Status Status
	Tag    string
}

// Matches reports whether the task passes every active dimension of the filter.
func (f Filter) Matches(t Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Tag != "" && !t.HasTag(f.Tag) {
		return false
	}
	return true
}

// Stats is an aggregate view of the store.
type Stats struct {
	Total            int              `json:"total"`
	TotalCreated     int              `json:"total_created"`
	ByStatus         map[Status]int   `json:"by_status"`
	ByPriority       map[Priority]int `json:"by_priority"`
	WithDependencies int              `json:"with_dependencies"`
	NextID           int              `json:"next_id"`
}

// validateFields checks the bounded fields shared by Add and Update.
func validateFields(title string, priority Priority, notes string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Reason: "title is required"}
	}
	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return &ValidationError{
			Field:  "title",
			Reason: fmt.Sprintf("title must be at most %d characters, got %d", MaxTitleLength, n),
		}
	}
	if !priority.Valid() {
		return &ValidationError{
			Field:  "priority",
			Reason: fmt.Sprintf("invalid priority %q, must be one of: low, medium, high, urgent", priority),
		}
	}
	if n := utf8.RuneCountInString(notes); n > MaxNotesLength {
		return &ValidationError{
			Field:  "notes",
			Reason: fmt.Sprintf("notes must be at most %d characters, got %d", MaxNotesLength, n),
		}
	}
	return nil
}
