package task

import (
	"fmt"
	"slices"
	"time"
)

// Option configures a Store.
type Option func(*Store)

// WithCapacity overrides the maximum number of live tasks accepted by Add.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithClock sets the time source used for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store owns the live tasks and the id allocator.
//
// A Store is not safe for concurrent use; callers that share one must
// serialize access themselves. Every mutating method validates fully before
// committing, so a failed call leaves the store unchanged.
type Store struct {
	tasks    map[int]*Task
	nextID   int
	created  int
	capacity int
	now      func() time.Time
}

// NewStore returns an empty store whose allocator starts at 1.
func NewStore(opts ...Option) *Store {
	s := &Store{
		tasks:    make(map[int]*Task),
		nextID:   1,
		capacity: DefaultCapacity,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Capacity returns the maximum number of live tasks accepted by Add.
func (s *Store) Capacity() int {
	return s.capacity
}

// Len returns the number of live tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// NextID returns the id the allocator will hand out next.
func (s *Store) NextID() int {
	return s.nextID
}

// Has reports whether a live task has the given id.
func (s *Store) Has(id int) bool {
	_, ok := s.tasks[id]
	return ok
}

// Add creates a task with status open and returns a copy of it.
func (s *Store) Add(title string, priority Priority, notes string, tags []string, estimatedDuration string, dependencies []int) (Task, error) {
	if err := validateFields(title, priority, notes); err != nil {
		return Task{}, err
	}
	if len(s.tasks) >= s.capacity {
		return Task{}, &CapacityError{Limit: s.capacity}
	}
	if missing := Missing(dependencies, s.graph()); len(missing) > 0 {
		return Task{}, missingDependencyError(missing)
	}

	now := s.now()
	t := Task{
		ID:                s.nextID,
		Title:             title,
		Status:            StatusOpen,
		Priority:          priority,
		Notes:             notes,
		Tags:              tags,
		EstimatedDuration: estimatedDuration,
		Dependencies:      dependencies,
		CreatedAt:         now,
		UpdatedAt:         now,
	}.Clone()

	s.tasks[t.ID] = &t
	s.nextID++
	s.created++
	return t.Clone(), nil
}

// Get returns a copy of the task with the given id.
func (s *Store) Get(id int) (Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return Task{}, &NotFoundError{ID: id}
	}
	return t.Clone(), nil
}

// Update replaces every mutable field of a task. The proposed dependency set
// is checked for self-reference, missing ids and cycles before anything is
// committed.
func (s *Store) Update(id int, title string, status Status, priority Priority, notes string, tags []string, estimatedDuration string, dependencies []int) (Task, error) {
	current, ok := s.tasks[id]
	if !ok {
		return Task{}, &NotFoundError{ID: id}
	}
	if err := validateFields(title, priority, notes); err != nil {
		return Task{}, err
	}
	if !status.Valid() {
		return Task{}, &ValidationError{
			Field:  "status",
			Reason: fmt.Sprintf("invalid status %q, must be one of: open, in_progress, blocked, completed", status),
		}
	}
	if HasSelfReference(id, dependencies) {
		return Task{}, &CircularDependencyError{TaskID: id}
	}
	g := s.graph()
	if missing := Missing(dependencies, g); len(missing) > 0 {
		return Task{}, missingDependencyError(missing)
	}
	if path := CyclePath(id, dependencies, g); path != nil {
		return Task{}, &CircularDependencyError{TaskID: id, Path: path}
	}

	updated := Task{
		ID:                id,
		Title:             title,
		Status:            status,
		Priority:          priority,
		Notes:             notes,
		Tags:              tags,
		EstimatedDuration: estimatedDuration,
		Dependencies:      dependencies,
		CreatedAt:         current.CreatedAt,
		UpdatedAt:         s.now(),
	}.Clone()
	s.tasks[id] = &updated
	return updated.Clone(), nil
}

// Complete marks a task completed, leaving every other field unchanged.
func (s *Store) Complete(id int) (Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return Task{}, &NotFoundError{ID: id}
	}
	return s.Update(id, t.Title, StatusCompleted, t.Priority, t.Notes, t.Tags, t.EstimatedDuration, t.Dependencies)
}

// Delete removes a task. A task that other live tasks depend on cannot be
// deleted; its id is never handed out again either way.
func (s *Store) Delete(id int) error {
	if _, ok := s.tasks[id]; !ok {
		return &NotFoundError{ID: id}
	}
	if dependents := s.Dependents(id); len(dependents) > 0 {
		return &ValidationError{
			Field:  "id",
			Reason: fmt.Sprintf("task %d is a dependency of tasks %v", id, dependents),
		}
	}
	delete(s.tasks, id)
	return nil
}

// Dependents returns the ids of live tasks that depend on id, ascending.
func (s *Store) Dependents(id int) []int {
	var out []int
	for _, t := range s.tasks {
		if slices.Contains(t.Dependencies, id) {
			out = append(out, t.ID)
		}
	}
	slices.Sort(out)
	return out
}

// List returns copies of the tasks that match the given status and tag, in
// ascending id order. Empty values disable that filter.
func (s *Store) List(status Status, tag string) []Task {
	f := Filter{Status: status, Tag: tag}
	out := make([]Task, 0, len(s.tasks))
	for _, id := range s.ids() {
		t := s.tasks[id]
		if f.Matches(*t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Stats returns aggregate counts over the live tasks.
func (s *Store) Stats() Stats {
	st := Stats{
		Total:        len(s.tasks),
		TotalCreated: s.created,
		ByStatus:     make(map[Status]int, len(Statuses)),
		ByPriority:   make(map[Priority]int, len(Priorities)),
		NextID:       s.nextID,
	}
	for _, status := range Statuses {
		st.ByStatus[status] = 0
	}
	for _, priority := range Priorities {
		st.ByPriority[priority] = 0
	}
	for _, t := range s.tasks {
		st.ByStatus[t.Status]++
		st.ByPriority[t.Priority]++
		if len(t.Dependencies) > 0 {
			st.WithDependencies++
		}
	}
	return st
}

// Clear removes every task and resets the allocator to 1.
func (s *Store) Clear() {
	s.tasks = make(map[int]*Task)
	s.nextID = 1
	s.created = 0
}

// Snapshot returns copies of every live task in ascending id order.
func (s *Store) Snapshot() []Task {
	return s.List("", "")
}

// Graph returns the dependency graph of the live tasks.
func (s *Store) Graph() Graph {
	return s.graph()
}

// Replace wipes the store and inserts tasks verbatim, keeping their ids,
// timestamps and dependency references. The allocator is set to nextID.
func (s *Store) Replace(tasks []Task, nextID int) error {
	incoming, err := indexTasks(tasks)
	if err != nil {
		return err
	}
	if err := checkGraph(graphOf(incoming)); err != nil {
		return err
	}
	if nextID <= maxID(incoming) {
		nextID = maxID(incoming) + 1
	}

	s.tasks = incoming
	s.nextID = nextID
	// The count of deleted tasks is not kept; every id below the allocator
	// was handed out once.
	s.created = nextID - 1
	return nil
}

// Checkpoint is a copy of a store's tasks and counters.
type Checkpoint struct {
	tasks   []Task
	nextID  int
	created int
}

// Checkpoint captures the current state for a later Rollback.
func (s *Store) Checkpoint() Checkpoint {
	return Checkpoint{tasks: s.Snapshot(), nextID: s.nextID, created: s.created}
}

// Rollback returns the store to the state captured by cp.
func (s *Store) Rollback(cp Checkpoint) {
	s.tasks = make(map[int]*Task, len(cp.tasks))
	for _, t := range cp.tasks {
		c := t.Clone()
		s.tasks[c.ID] = &c
	}
	s.nextID = cp.nextID
	s.created = cp.created
}

// Import inserts tasks verbatim next to the existing ones without applying
// the creation-time capacity limit. Id collisions, dangling references and
// cycles across the combined graph are rejected before anything is inserted.
// The allocator moves to nextID if that is larger than its current value and
// always past the largest imported id.
func (s *Store) Import(tasks []Task, nextID int) error {
	incoming, err := indexTasks(tasks)
	if err != nil {
		return err
	}
	for id := range incoming {
		if s.Has(id) {
			return &ValidationError{Field: "id", Reason: fmt.Sprintf("task %d already exists", id)}
		}
	}

	combined := s.graph()
	for id, t := range incoming {
		combined[id] = t.Dependencies
	}
	if err := checkGraph(combined); err != nil {
		return err
	}

	for id, t := range incoming {
		s.tasks[id] = t
	}
	s.created += len(incoming)
	if m := maxID(incoming) + 1; m > nextID {
		nextID = m
	}
	if nextID > s.nextID {
		s.nextID = nextID
	}
	return nil
}

func (s *Store) graph() Graph {
	return graphOf(s.tasks)
}

func (s *Store) ids() []int {
	ids := make([]int, 0, len(s.tasks))
	for id := range s.tasks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func graphOf(tasks map[int]*Task) Graph {
	g := make(Graph, len(tasks))
	for id, t := range tasks {
		g[id] = t.Dependencies
	}
	return g
}

func indexTasks(tasks []Task) (map[int]*Task, error) {
	out := make(map[int]*Task, len(tasks))
	for _, t := range tasks {
		if t.ID <= 0 {
			return nil, &ValidationError{Field: "id", Reason: fmt.Sprintf("task id must be positive, got %d", t.ID)}
		}
		if _, dup := out[t.ID]; dup {
			return nil, &ValidationError{Field: "id", Reason: fmt.Sprintf("duplicate task id %d", t.ID)}
		}
		c := t.Clone()
		out[c.ID] = &c
	}
	return out, nil
}

// checkGraph verifies referential integrity and acyclicity of g.
func checkGraph(g Graph) error {
	for id, deps := range g {
		if missing := Missing(deps, g); len(missing) > 0 {
			return &ValidationError{
				Field:  "dependencies",
				Reason: fmt.Sprintf("task %d depends on non-existent tasks %v", id, missing),
			}
		}
	}
	if cycle := FindCycle(g); cycle != nil {
		return &CircularDependencyError{TaskID: cycle[0], Path: cycle}
	}
	return nil
}

func maxID(tasks map[int]*Task) int {
	m := 0
	for id := range tasks {
		if id > m {
			m = id
		}
	}
	return m
}

func missingDependencyError(missing []int) error {
	return &ValidationError{
		Field:  "dependencies",
		Reason: fmt.Sprintf("dependencies reference non-existent tasks %v", missing),
	}
}
