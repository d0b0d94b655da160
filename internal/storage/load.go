package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/nibzard/tasks-go/internal/task"
)

// MergeMode selects how a loaded document is combined with the live store.
type MergeMode string

const (
	// ModeReplace wipes the store and inserts every task verbatim.
	ModeReplace MergeMode = "replace"
	// ModeMerge keeps live tasks and skips incoming tasks whose id is taken.
	ModeMerge MergeMode = "merge"
	// ModeMergeRenumber keeps live tasks and gives colliding incoming tasks
	// fresh ids, rewriting dependency references to match.
	ModeMergeRenumber MergeMode = "merge_renumber"
)

// MergeModes lists every supported mode.
var MergeModes = []MergeMode{ModeReplace, ModeMerge, ModeMergeRenumber}

// Valid reports whether m is a supported mode.
func (m MergeMode) Valid() bool {
	switch m {
	case ModeReplace, ModeMerge, ModeMergeRenumber:
		return true
	}
	return false
}

// ParseMergeMode converts a user-supplied string into a MergeMode.
func ParseMergeMode(s string) (MergeMode, error) {
	m := MergeMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", invalidModeError(s)
	}
	return m, nil
}

func invalidModeError(s string) error {
	return &task.ValidationError{
		Field:  "mode",
		Reason: fmt.Sprintf("invalid merge mode %q, must be one of: replace, merge, merge_renumber", s),
	}
}

// Renumbering records an incoming task that received a new id.
type Renumbering struct {
	OldID int `json:"old_id"`
	NewID int `json:"new_id"`
}

// LoadResult describes the outcome of Load and Restore.
type LoadResult struct {
	Success         bool          `json:"success"`
	TasksLoaded     int           `json:"tasks_loaded"`
	TasksSkipped    int           `json:"tasks_skipped"`
	TasksRenumbered []Renumbering `json:"tasks_renumbered"`
	ModeUsed        MergeMode     `json:"mode_used"`
}

// Load reads the document at path, validates it and combines it with the
// store according to mode. The store is left untouched unless every step
// succeeds.
func (p *Persister) Load(path string, mode MergeMode) (*LoadResult, error) {
	if !mode.Valid() {
		return nil, invalidModeError(string(mode))
	}

	doc, err := p.readDocument(path)
	if err != nil {
		return nil, err
	}
	incoming := doc.TaskList()

	result := &LoadResult{ModeUsed: mode, TasksRenumbered: []Renumbering{}}
	switch mode {
	case ModeReplace:
		if err := p.store.Replace(incoming, 0); err != nil {
			return nil, fmt.Errorf("replace tasks: %w", err)
		}
		result.TasksLoaded = len(incoming)

	case ModeMerge:
		fresh := make([]task.Task, 0, len(incoming))
		for _, t := range incoming {
			if p.store.Has(t.ID) {
				result.TasksSkipped++
				continue
			}
			fresh = append(fresh, t)
		}
		if err := p.store.Import(fresh, 0); err != nil {
			return nil, fmt.Errorf("merge tasks: %w", err)
		}
		result.TasksLoaded = len(fresh)

	case ModeMergeRenumber:
		renumbered, changes, next := renumber(incoming, p.store.Has, p.store.NextID())
		if err := p.store.Import(renumbered, next); err != nil {
			return nil, fmt.Errorf("merge tasks: %w", err)
		}
		result.TasksLoaded = len(renumbered)
		result.TasksRenumbered = changes
	}

	result.Success = true
	p.log.Info("loaded tasks",
		"path", path,
		"mode", mode,
		"loaded", result.TasksLoaded,
		"skipped", result.TasksSkipped,
		"renumbered", len(result.TasksRenumbered),
	)
	p.warnOverCapacity()
	return result, nil
}

// Restore replaces the store with the document at path. Unlike Load in
// replace mode, the allocator resumes from the document's next_id when that
// is larger, so ids deleted in an earlier session are not handed out again.
// A missing file restores an empty store.
func (p *Persister) Restore(path string) (*LoadResult, error) {
	result := &LoadResult{ModeUsed: ModeReplace, TasksRenumbered: []Renumbering{}}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		p.store.Clear()
		p.log.Debug("no saved tasks, starting empty", "path", path)
		result.Success = true
		return result, nil
	}

	doc, err := p.readDocument(path)
	if err != nil {
		return nil, err
	}
	incoming := doc.TaskList()
	if err := p.store.Replace(incoming, doc.Storage.NextID); err != nil {
		return nil, fmt.Errorf("restore tasks: %w", err)
	}

	result.Success = true
	result.TasksLoaded = len(incoming)
	p.log.Debug("restored tasks", "path", path, "tasks", len(incoming), "next_id", p.store.NextID())
	p.warnOverCapacity()
	return result, nil
}

func (p *Persister) readDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapFSError("read", path, err)
	}
	report, doc := validateBytes(data)
	if !report.Valid {
		p.log.Warn("refusing to load invalid task file", "path", path, "problems", len(report.Errors))
		return nil, &InvalidFileError{Path: path, Problems: report.Errors}
	}
	return doc, nil
}

func (p *Persister) warnOverCapacity() {
	if n, limit := p.store.Len(), p.store.Capacity(); n > limit {
		p.log.Warn("store holds more tasks than the add limit", "tasks", n, "limit", limit)
	}
}

// renumber assigns fresh ids to incoming tasks whose id is live or already
// taken earlier in the batch. Tasks are processed in ascending original id;
// fresh ids come from an allocator starting at next that skips live ids and
// original ids still to be processed. Dependency references are rewritten
// across the whole batch. It returns the rewritten tasks, every reassignment
// and the allocator position after the batch.
func renumber(incoming []task.Task, live func(int) bool, next int) ([]task.Task, []Renumbering, int) {
	pending := make(map[int]bool, len(incoming))
	for _, t := range incoming {
		pending[t.ID] = true
	}

	taken := make(map[int]bool, len(incoming))
	mapping := make(map[int]int, len(incoming))
	changes := []Renumbering{}

	for _, t := range incoming {
		delete(pending, t.ID)
		id := t.ID
		if live(id) || taken[id] {
			for live(next) || taken[next] || pending[next] {
				next++
			}
			id = next
			next++
			changes = append(changes, Renumbering{OldID: t.ID, NewID: id})
		}
		taken[id] = true
		mapping[t.ID] = id
	}

	out := make([]task.Task, 0, len(incoming))
	for _, t := range incoming {
		c := t.Clone()
		c.ID = mapping[t.ID]
		for i, dep := range c.Dependencies {
			if newID, ok := mapping[dep]; ok {
				c.Dependencies[i] = newID
			}
		}
		out = append(out, c)
	}
	return out, changes, next
}
