package tools

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasks-go/internal/logging"
	"github.com/nibzard/tasks-go/internal/storage"
	"github.com/nibzard/tasks-go/internal/task"
)

// overwriteRefusal is the reason given when save_tasks would replace an
// existing file without skip_confirm.
const overwriteRefusal = "file already exists; call save_tasks again with skip_confirm=true to overwrite"

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the logger used for tool calls and persistence.
func WithLogger(l *log.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithJournal records every successful mutation in j.
func WithJournal(j *logging.Journal) SessionOption {
	return func(s *Session) {
		s.journal = j
	}
}

// WithStateFile saves the store to path after every successful mutation.
func WithStateFile(path string) SessionOption {
	return func(s *Session) {
		s.statePath = path
	}
}

// Session owns one task store and serialises every tool call against it.
type Session struct {
	mu        sync.Mutex
	store     *task.Store
	persister *storage.Persister
	journal   *logging.Journal
	log       *log.Logger
	statePath string
}

// NewSession returns a Session over store.
func NewSession(store *task.Store, opts ...SessionOption) *Session {
	s := &Session{
		store: store,
		log:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.persister = storage.NewPersister(store,
		storage.WithLogger(s.log),
		storage.WithConfirmer(storage.DeclineConfirm(overwriteRefusal)),
	)
	return s
}

// Store returns the store the session operates on.
func (s *Session) Store() *task.Store {
	return s.store
}

// Restore loads the state file into the store, if one is configured.
func (s *Session) Restore() (*storage.LoadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statePath == "" {
		return &storage.LoadResult{Success: true, ModeUsed: storage.ModeReplace, TasksRenumbered: []storage.Renumbering{}}, nil
	}
	return s.persister.Restore(s.statePath)
}

// commit writes the state file and then journals a successful mutation.
// Callers hold s.mu and roll the store back when commit fails.
func (s *Session) commit(op string, taskID int, detail any) error {
	if s.statePath != "" {
		if _, err := s.persister.Save(s.statePath, true); err != nil {
			return fmt.Errorf("%s not applied, saving state file: %w", op, err)
		}
	}
	if err := s.journal.Record(op, taskID, detail); err != nil {
		s.log.Warn("journal write failed", "op", op, "err", err)
	}
	return nil
}
