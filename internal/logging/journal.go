package logging

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Event is one line of the mutation journal.
type Event struct {
	Time   time.Time `json:"time"`
	Op     string    `json:"op"`
	TaskID int       `json:"task_id,omitempty"`
	Detail any       `json:"detail,omitempty"`
}

// Journal appends one JSON line per store mutation to a per-run file under
// <base>/<project-slug>/<run-id>.jsonl. A nil *Journal discards every record.
type Journal struct {
	Dir   string
	RunID string
	Path  string

	mu   sync.Mutex
	file *os.File
	now  func() time.Time
}

// NewJournal creates the per-project journal directory and a fresh run file.
func NewJournal(baseDir, workDir string) (*Journal, error) {
	logDir, err := FindJournalDir(baseDir, workDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	id := runID()
	path := filepath.Join(logDir, id+".jsonl")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("create journal file: %w", err)
	}

	return &Journal{
		Dir:   logDir,
		RunID: id,
		Path:  path,
		file:  file,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

// Record appends an event. taskID 0 means the operation is not tied to a task.
func (j *Journal) Record(op string, taskID int, detail any) error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return fmt.Errorf("journal is closed")
	}
	line, err := json.Marshal(Event{Time: j.now(), Op: op, TaskID: taskID, Detail: detail})
	if err != nil {
		return fmt.Errorf("encode journal event: %w", err)
	}
	if _, err := j.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write journal event: %w", err)
	}
	return nil
}

// Close closes the journal file.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}

// FindJournalDir returns the journal directory for a work directory without
// creating it.
func FindJournalDir(baseDir, workDir string) (string, error) {
	if baseDir == "" {
		return "", fmt.Errorf("journal base dir is empty")
	}

	resolvedWorkDir := workDir
	if resolvedWorkDir == "" {
		resolvedWorkDir = "."
	}
	if abs, err := filepath.Abs(resolvedWorkDir); err == nil {
		resolvedWorkDir = abs
	}

	baseDir = resolveBaseDir(baseDir, resolvedWorkDir)
	return filepath.Join(baseDir, projectSlug(resolveProjectRoot(resolvedWorkDir))), nil
}

func resolveBaseDir(baseDir, workDir string) string {
	if filepath.IsAbs(baseDir) {
		return filepath.Clean(baseDir)
	}
	return filepath.Clean(filepath.Join(workDir, baseDir))
}

// resolveProjectRoot prefers the enclosing git work tree so every
// subdirectory of a repository shares one journal directory.
func resolveProjectRoot(workDir string) string {
	if _, err := exec.LookPath("git"); err == nil {
		cmd := exec.Command("git", "-C", workDir, "rev-parse", "--show-toplevel")
		if output, err := cmd.Output(); err == nil {
			if root := strings.TrimSpace(string(output)); root != "" {
				return root
			}
		}
	}
	return workDir
}

func projectSlug(projectRoot string) string {
	return fmt.Sprintf("%s-%s", slugify(filepath.Base(projectRoot)), hashPath(projectRoot))
}

func slugify(input string) string {
	if strings.TrimSpace(input) == "" {
		return "project"
	}

	var b strings.Builder
	lastUnderscore := false
	for _, c := range input {
		valid := (c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '.' || c == '_' || c == '-'
		if !valid {
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}
		b.WriteRune(c)
		lastUnderscore = false
	}

	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		return "project"
	}
	return slug
}

func hashPath(input string) string {
	sum := sha1.Sum([]byte(input))
	return hex.EncodeToString(sum[:])[:8]
}

func runID() string {
	return fmt.Sprintf("%s-%d", time.Now().UTC().Format("20060102-150405"), os.Getpid())
}
