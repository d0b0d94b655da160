package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasks-go/internal/task"
)

// PersisterOption configures a Persister.
type PersisterOption func(*Persister)

// WithConfirmer sets the collaborator asked before an existing file is overwritten.
func WithConfirmer(c Confirmer) PersisterOption {
	return func(p *Persister) {
		if c != nil {
			p.confirm = c
		}
	}
}

// WithLogger sets the logger used for persistence events.
func WithLogger(l *log.Logger) PersisterOption {
	return func(p *Persister) {
		if l != nil {
			p.log = l
		}
	}
}

// WithSaveClock sets the time source stamped into metadata.saved_at.
func WithSaveClock(now func() time.Time) PersisterOption {
	return func(p *Persister) {
		if now != nil {
			p.now = now
		}
	}
}

// Persister saves, validates and loads the contents of a task store.
type Persister struct {
	store   *task.Store
	confirm Confirmer
	log     *log.Logger
	now     func() time.Time
}

// NewPersister returns a Persister bound to store. Without WithConfirmer,
// overwrites that are not explicitly skipped are declined.
func NewPersister(store *task.Store, opts ...PersisterOption) *Persister {
	p := &Persister{
		store:   store,
		confirm: DeclineConfirm("no confirmation handler configured"),
		log:     log.New(io.Discard),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Store returns the store the persister operates on.
func (p *Persister) Store() *task.Store {
	return p.store
}

// SaveResult describes the outcome of Save.
type SaveResult struct {
	Success   bool   `json:"success"`
	Path      string `json:"path"`
	TaskCount int    `json:"task_count"`
	Reason    string `json:"reason,omitempty"`
}

// Save writes the store to path. When the file exists and skipConfirm is
// false the Confirmer is asked first; a decline is reported in the result
// and nothing is written. Parent directories are created as needed.
func (p *Persister) Save(path string, skipConfirm bool) (*SaveResult, error) {
	if path == "" {
		return nil, &task.ValidationError{Field: "path", Reason: "path is required"}
	}

	_, err := os.Stat(path)
	switch {
	case err == nil && !skipConfirm:
		ok, reason := p.confirm.Confirm(fmt.Sprintf("%s already exists. Overwrite?", path))
		if !ok {
			if reason == "" {
				reason = "overwrite declined"
			}
			p.log.Info("save declined", "path", path, "reason", reason)
			return &SaveResult{Success: false, Path: path, Reason: reason}, nil
		}
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return nil, wrapFSError("stat", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, wrapFSError("create directory for", path, err)
	}

	doc := ToDocument(p.store, p.now())
	data, err := doc.Marshal()
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(path, data); err != nil {
		return nil, err
	}

	p.log.Debug("saved tasks", "path", path, "tasks", doc.Metadata.TaskCount)
	return &SaveResult{Success: true, Path: path, TaskCount: doc.Metadata.TaskCount}, nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return wrapFSError("write", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return wrapFSError("rename into", path, err)
	}
	return nil
}
