package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/nibzard/tasks-go/internal/task"
)

// requiredTaskFields lists the keys every stored task must carry.
var requiredTaskFields = []string{
	"id",
	"title",
	"status",
	"priority",
	"notes",
	"tags",
	"estimated_duration",
	"dependencies",
	"created_at",
	"updated_at",
}

// Report is the outcome of validating a document.
type Report struct {
	Valid     bool      `json:"valid"`
	Errors    []string  `json:"errors"`
	TaskCount int       `json:"task_count"`
	Metadata  *Metadata `json:"metadata,omitempty"`
}

func (r *Report) addf(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// ValidateFile checks the document at path without touching any store.
// Problems with the content are collected in the report; an error is
// returned only when the file cannot be read.
func ValidateFile(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapFSError("read", path, err)
	}
	report, _ := validateBytes(data)
	return report, nil
}

// Validate is ValidateFile with the persister's logging.
func (p *Persister) Validate(path string) (*Report, error) {
	report, err := ValidateFile(path)
	if err != nil {
		return nil, err
	}
	p.log.Debug("validated task file", "path", path, "valid", report.Valid, "problems", len(report.Errors))
	return report, nil
}

// validateBytes runs every structural check over data. The returned document
// is non-nil only when the report is valid.
func validateBytes(data []byte) (*Report, *Document) {
	report := &Report{Valid: true, Errors: []string{}}

	if !json.Valid(data) {
		var v any
		err := json.Unmarshal(data, &v)
		if err == nil {
			err = fmt.Errorf("malformed document")
		}
		report.addf("Invalid JSON: %v", err)
		return report, nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		report.addf("Invalid JSON: top level must be an object")
		return report, nil
	}

	rawMeta, hasMeta := top["metadata"]
	rawStorage, hasStorage := top["storage"]
	if !hasMeta || isNull(rawMeta) {
		report.addf("Missing required key: metadata")
	}
	if !hasStorage || isNull(rawStorage) {
		report.addf("Missing required key: storage")
	}

	var meta *Metadata
	if hasMeta && !isNull(rawMeta) {
		meta = checkMetadata(report, rawMeta)
		report.Metadata = meta
	}

	var tasks map[string]json.RawMessage
	nextID := 0
	if hasStorage && !isNull(rawStorage) {
		tasks, nextID = checkStorage(report, rawStorage)
	}
	report.TaskCount = len(tasks)

	if meta != nil && tasks != nil && meta.TaskCount != len(tasks) {
		report.addf("task_count mismatch: metadata says %d, found %d", meta.TaskCount, len(tasks))
	}

	decoded, graph := checkTasks(report, tasks)

	for _, id := range sortedIDs(graph) {
		for _, dep := range graph[id] {
			if _, ok := graph[dep]; !ok {
				report.addf("Task %d depends on non-existent task %d", id, dep)
			}
		}
	}
	if cycle := task.FindCycle(graph); cycle != nil {
		report.addf("Circular dependency detected: %s", task.FormatPath(cycle))
	}

	if !report.Valid {
		return report, nil
	}
	return report, &Document{
		Metadata: *meta,
		Storage: Storage{
			Tasks:      decoded,
			NextID:     nextID,
			TotalCount: len(decoded),
		},
	}
}

func checkMetadata(report *Report, raw json.RawMessage) *Metadata {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		report.addf("Invalid metadata: must be an object")
		return nil
	}

	meta := &Metadata{}
	rawVersion, ok := fields["version"]
	if !ok {
		report.addf("Missing required key: metadata.version")
	} else if err := json.Unmarshal(rawVersion, &meta.Version); err != nil || meta.Version != FormatVersion {
		report.addf("Unsupported version: %s (expected %q)", bytes.TrimSpace(rawVersion), FormatVersion)
	}

	rawCount, ok := fields["task_count"]
	if !ok {
		report.addf("Missing required key: metadata.task_count")
		return nil
	}
	if err := json.Unmarshal(rawCount, &meta.TaskCount); err != nil {
		report.addf("Invalid metadata.task_count: must be an integer")
		return nil
	}

	if rawSaved, ok := fields["saved_at"]; ok && !isNull(rawSaved) {
		var savedAt string
		if err := json.Unmarshal(rawSaved, &savedAt); err != nil {
			report.addf("Invalid metadata.saved_at: must be a string")
		} else if t, err := task.ParseTimestamp(savedAt); err != nil {
			report.addf("Invalid metadata.saved_at: %v", err)
		} else {
			meta.SavedAt = t
		}
	}
	return meta
}

func checkStorage(report *Report, raw json.RawMessage) (map[string]json.RawMessage, int) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		report.addf("Invalid storage: must be an object")
		return nil, 0
	}

	nextID := 0
	if rawNext, ok := fields["next_id"]; ok && !isNull(rawNext) {
		if err := json.Unmarshal(rawNext, &nextID); err != nil {
			report.addf("Invalid storage.next_id: must be an integer")
		}
	}

	rawTasks, ok := fields["tasks"]
	if !ok || isNull(rawTasks) {
		report.addf("Missing required key: storage.tasks")
		return nil, nextID
	}
	var tasks map[string]json.RawMessage
	if err := json.Unmarshal(rawTasks, &tasks); err != nil {
		report.addf("Invalid storage.tasks: must be an object keyed by task id")
		return nil, nextID
	}
	return tasks, nextID
}

// checkTasks verifies required fields, schema conformance and key/id
// agreement for every task. It returns the tasks that decoded cleanly and the
// dependency graph of every task whose key is a valid id.
func checkTasks(report *Report, tasks map[string]json.RawMessage) (map[string]task.Task, task.Graph) {
	decoded := make(map[string]task.Task, len(tasks))
	graph := make(task.Graph, len(tasks))

	for _, key := range sortedKeys(tasks) {
		raw := tasks[key]

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
			report.addf("task %s: must be an object", key)
			continue
		}

		id, keyErr := strconv.Atoi(key)
		if keyErr != nil || id <= 0 {
			report.addf("task %s: key must be a positive integer id", key)
		} else if _, dup := graph[id]; dup {
			report.addf("task %s: duplicate id %d", key, id)
			continue
		} else {
			var partial struct {
				Dependencies []int `json:"dependencies"`
			}
			if err := json.Unmarshal(raw, &partial); err == nil {
				graph[id] = partial.Dependencies
			} else {
				graph[id] = nil
			}
		}

		missing := false
		for _, field := range requiredTaskFields {
			if _, ok := fields[field]; !ok {
				report.addf("Missing required field '%s' in task %s", field, key)
				missing = true
			}
		}
		if missing {
			continue
		}

		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			report.addf("task %s: %v", key, err)
			continue
		}
		if problems := schemaProblems(value); len(problems) > 0 {
			for _, problem := range problems {
				report.addf("task %s: %s", key, problem)
			}
			continue
		}

		var t task.Task
		if err := json.Unmarshal(raw, &t); err != nil {
			report.addf("task %s: %v", key, err)
			continue
		}
		if keyErr == nil && t.ID != id {
			report.addf("task %s: key does not match id %d", key, t.ID)
			continue
		}
		decoded[key] = t.Clone()
	}
	return decoded, graph
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// sortedKeys orders task keys numerically where possible so reports are stable.
func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		ai, aerr := strconv.Atoi(a)
		bi, berr := strconv.Atoi(b)
		switch {
		case aerr == nil && berr == nil:
			return ai - bi
		case aerr == nil:
			return -1
		case berr == nil:
			return 1
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	return keys
}

func sortedIDs(g task.Graph) []int {
	ids := make([]int, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
