package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"taskline/internal/model"

	"github.com/charmbracelet/log"
)

// ErrNoData is returned by a Backend when there is nothing persisted yet.
var ErrNoData = errors.New("no persisted tasks")

// Backend persists the full, ordered task list.
type Backend interface {
	Load(ctx context.Context) ([]model.Task, error)
	Save(ctx context.Context, tasks []model.Task) error
	// Fingerprint is a cheap change stamp of the persisted data ("" when unknown).
	Fingerprint() string
	Describe() string
}

// TaskStore is the keyed, ordered collection of all tasks.
//
// Keys are task names. Overwriting a key keeps its position; renaming removes the old
// key and appends the new one.
type TaskStore struct {
	mu      sync.RWMutex
	backend Backend
	logger  *log.Logger

	order []string
	tasks map[string]model.Task

	// seeded reports whether the last load fell back to the seed set.
	seeded bool
}

type Option func(*TaskStore)

func WithLogger(l *log.Logger) Option {
	return func(s *TaskStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// SetLogger replaces the logger (e.g. to silence logs under a full-screen UI).
func (s *TaskStore) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard)
	}
	s.mu.Lock()
	s.logger = l
	s.mu.Unlock()
}

// New returns a store holding tasks (in order) without touching the backend.
func New(b Backend, tasks []model.Task, opts ...Option) *TaskStore {
	if b == nil {
		b = Memory{}
	}
	s := &TaskStore{backend: b, logger: log.New(io.Discard)}
	for _, o := range opts {
		o(s)
	}
	s.replace(tasks)
	return s
}

// Load builds a store from the backend, falling back to the seed set when the backend
// has no data or its data cannot be read.
func Load(ctx context.Context, b Backend, opts ...Option) *TaskStore {
	s := New(b, nil, opts...)
	s.mu.Lock()
	s.loadLocked(ctx)
	s.mu.Unlock()
	return s
}

// LoadOrSeed is the load-or-default step: the backend's tasks, or SeedTasks() together
// with the reason the backend could not be used.
func LoadOrSeed(ctx context.Context, b Backend) ([]model.Task, error) {
	tasks, err := b.Load(ctx)
	if err != nil {
		return SeedTasks(), err
	}
	return tasks, nil
}

func (s *TaskStore) loadLocked(ctx context.Context) {
	tasks, err := LoadOrSeed(ctx, s.backend)
	s.seeded = err != nil
	switch {
	case err == nil:
		s.logger.Debug("loaded tasks", "backend", s.backend.Describe(), "count", len(tasks))
	case errors.Is(err, ErrNoData):
		s.logger.Debug("no persisted tasks; using seed set", "backend", s.backend.Describe())
	default:
		s.logger.Warn("could not read persisted tasks; using seed set", "backend", s.backend.Describe(), "err", err)
	}
	s.replace(tasks)
}

// Reload re-reads the backend with the same fail-open rules as Load.
func (s *TaskStore) Reload(ctx context.Context) {
	s.mu.Lock()
	s.loadLocked(ctx)
	s.mu.Unlock()
}

func (s *TaskStore) replace(tasks []model.Task) {
	s.order = make([]string, 0, len(tasks))
	s.tasks = make(map[string]model.Task, len(tasks))
	for _, t := range tasks {
		s.putLocked(t.Clone(), "")
	}
}

// Upsert inserts or overwrites the task called name and persists the whole store.
//
// It does not validate its input; callers run the form validation gate first.
// When oldName is set, present, and differs from name, the old entry is removed first
// (rename). A rename onto an existing name overwrites that task.
func (s *TaskStore) Upsert(ctx context.Context, name string, start, end model.Date, category, notes, usersText, oldName string) error {
	return s.Put(ctx, model.Task{
		Name:          name,
		Start:         start,
		End:           end,
		Category:      category,
		Notes:         notes,
		AssignedUsers: model.ParseUsers(usersText),
	}, oldName)
}

// Put is Upsert for an already-built task.
func (s *TaskStore) Put(ctx context.Context, t model.Task, oldName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevOrder := append([]string{}, s.order...)
	prevTasks := make(map[string]model.Task, len(s.tasks))
	for k, v := range s.tasks {
		prevTasks[k] = v
	}
	prevSeeded := s.seeded

	s.putLocked(t.Clone(), oldName)
	s.seeded = false
	if err := s.persistLocked(ctx); err != nil {
		// Memory must keep matching what is persisted.
		s.order, s.tasks, s.seeded = prevOrder, prevTasks, prevSeeded
		return err
	}
	return nil
}

func (s *TaskStore) putLocked(t model.Task, oldName string) {
	if oldName != "" && oldName != t.Name {
		if _, ok := s.tasks[oldName]; ok {
			delete(s.tasks, oldName)
			s.order = removeName(s.order, oldName)
		}
	}
	if _, ok := s.tasks[t.Name]; !ok {
		s.order = append(s.order, t.Name)
	}
	s.tasks[t.Name] = t
}

// Persist writes the full store to the backend, replacing what was there.
func (s *TaskStore) Persist(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistLocked(ctx)
}

func (s *TaskStore) persistLocked(ctx context.Context) error {
	if err := s.backend.Save(ctx, s.tasksLocked()); err != nil {
		return fmt.Errorf("persist tasks (%s): %w", s.backend.Describe(), err)
	}
	s.logger.Debug("persisted tasks", "backend", s.backend.Describe(), "count", len(s.order))
	return nil
}

func (s *TaskStore) Get(name string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[name]
	if !ok {
		return model.Task{}, false
	}
	return t.Clone(), true
}

func (s *TaskStore) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tasks[name]
	return ok
}

// Names returns task names in store order.
func (s *TaskStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.order...)
}

// Tasks returns a copy of all tasks in store order.
func (s *TaskStore) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasksLocked()
}

func (s *TaskStore) tasksLocked() []model.Task {
	out := make([]model.Task, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.tasks[name].Clone())
	}
	return out
}

func (s *TaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Seeded reports whether the store currently holds the untouched seed set
// because the backend had nothing usable.
func (s *TaskStore) Seeded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seeded
}

func (s *TaskStore) Fingerprint() string { return s.backend.Fingerprint() }

func (s *TaskStore) Describe() string { return s.backend.Describe() }

func removeName(xs []string, name string) []string {
	out := xs[:0]
	for _, x := range xs {
		if x != name {
			out = append(out, x)
		}
	}
	return out
}

// NormalizeKind maps user input to a backend kind.
func NormalizeKind(s string) (string, error) {
	switch k := strings.ToLower(strings.TrimSpace(s)); k {
	case "", BackendJSON:
		return BackendJSON, nil
	case BackendSQLite, "sqlite3", "db":
		return BackendSQLite, nil
	case BackendMemory, "mem":
		return BackendMemory, nil
	default:
		return "", fmt.Errorf("unknown backend %q (expected json|sqlite|memory)", s)
	}
}
