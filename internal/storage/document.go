package storage

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/nibzard/tasks-go/internal/task"
)

// FormatVersion is the only document version this package reads and writes.
const FormatVersion = "1.0"

// Metadata describes a saved document.
type Metadata struct {
	Version   string    `json:"version"`
	TaskCount int       `json:"task_count"`
	SavedAt   time.Time `json:"saved_at"`
}

// Storage holds the tasks keyed by their decimal id.
type Storage struct {
	Tasks      map[string]task.Task `json:"tasks"`
	NextID     int                  `json:"next_id"`
	TotalCount int                  `json:"total_count"`
}

// Document is the on-disk representation of a task store.
type Document struct {
	Metadata Metadata `json:"metadata"`
	Storage  Storage  `json:"storage"`
}

// ToDocument captures the current contents of s.
func ToDocument(s *task.Store, savedAt time.Time) *Document {
	tasks := s.Snapshot()
	byKey := make(map[string]task.Task, len(tasks))
	for _, t := range tasks {
		byKey[strconv.Itoa(t.ID)] = t
	}
	return &Document{
		Metadata: Metadata{
			Version:   FormatVersion,
			TaskCount: len(tasks),
			SavedAt:   savedAt.UTC(),
		},
		Storage: Storage{
			Tasks:      byKey,
			NextID:     s.NextID(),
			TotalCount: len(tasks),
		},
	}
}

// TaskList returns the document's tasks in ascending id order.
func (d *Document) TaskList() []task.Task {
	out := make([]task.Task, 0, len(d.Storage.Tasks))
	for _, t := range d.Storage.Tasks {
		out = append(out, t.Clone())
	}
	slices.SortFunc(out, func(a, b task.Task) int { return a.ID - b.ID })
	return out
}

// Marshal encodes the document with 2-space indentation and a trailing newline.
func (d *Document) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal task document: %w", err)
	}
	return append(data, '\n'), nil
}
