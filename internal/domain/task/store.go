package task

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Store caches the last fetched task collection and applies remote results to it.
// Requests are not serialized: the mutex only protects in-memory state, so two
// concurrent mutations of one task leave whichever response landed last.
type Store struct {
	remote Remote
	logger *slog.Logger

	mu       sync.RWMutex
	tasks    []Task
	filter   Filter
	inFlight int
	errMsg   string
	hasErr   bool
}

// NewStore creates a task store backed by remote.
func NewStore(remote Remote, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{remote: remote, logger: logger}
}

// FetchUserTasks replaces the collection with the tasks assigned to userID.
func (s *Store) FetchUserTasks(ctx context.Context, userID string) error {
	return s.fetch("get user tasks", func() Response[[]Task] {
		return s.remote.GetUserTasks(ctx, userID)
	})
}

// FetchProjectTasks replaces the collection with the tasks of projectID.
func (s *Store) FetchProjectTasks(ctx context.Context, projectID string) error {
	return s.fetch("get project tasks", func() Response[[]Task] {
		return s.remote.GetProjectTasks(ctx, projectID)
	})
}

// FetchStudyTasks replaces the collection with the tasks of studyID.
func (s *Store) FetchStudyTasks(ctx context.Context, studyID string) error {
	return s.fetch("get study tasks", func() Response[[]Task] {
		return s.remote.GetStudyTasks(ctx, studyID)
	})
}

// CreateTask creates a task remotely and appends it locally.
func (s *Store) CreateTask(ctx context.Context, in CreateInput) (*Task, error) {
	if strings.TrimSpace(in.ProjectID) == "" || strings.TrimSpace(in.Title) == "" {
		return nil, ErrInvalidInput
	}
	s.begin()
	resp := s.remote.CreateTask(ctx, in)
	if err := s.finish("create task", resp.Error); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, nil
	}
	created := *resp.Data
	s.mu.Lock()
	s.tasks = append(s.tasks, created)
	s.mu.Unlock()
	return &created, nil
}

// UpdateTask applies patch remotely and replaces the local copy.
func (s *Store) UpdateTask(ctx context.Context, id string, patch Patch) (*Task, error) {
	return s.mutate("update task", func() Response[*Task] {
		return s.remote.UpdateTask(ctx, id, patch)
	})
}

// UpdateTaskStatus changes a task's status.
func (s *Store) UpdateTaskStatus(ctx context.Context, id string, status Status) (*Task, error) {
	return s.mutate("update task status", func() Response[*Task] {
		return s.remote.UpdateTaskStatus(ctx, id, status)
	})
}

// AssignTask sets a task's assignee.
func (s *Store) AssignTask(ctx context.Context, id, assigneeID string) (*Task, error) {
	return s.mutate("assign task", func() Response[*Task] {
		return s.remote.AssignTask(ctx, id, assigneeID)
	})
}

// DeleteTask deletes a task remotely and drops it locally.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.begin()
	resp := s.remote.DeleteTask(ctx, id)
	if err := s.finish("delete task", resp.Error); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			break
		}
	}
	return nil
}

// Tasks returns a copy of the current collection.
func (s *Store) Tasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// SetFilter replaces the active filter.
func (s *Store) SetFilter(f Filter) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
}

// Filter returns the active filter.
func (s *Store) Filter() Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Filtered recomputes the filtered view from the current collection.
func (s *Store) Filtered() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Apply(s.tasks, s.filter)
}

// Loading reports whether any request is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight > 0
}

// Error returns the message of the most recent failed request.
func (s *Store) Error() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg, s.hasErr
}

func (s *Store) fetch(op string, call func() Response[[]Task]) error {
	s.begin()
	resp := call()
	if err := s.finish(op, resp.Error); err != nil {
		return err
	}
	tasks := make([]Task, len(resp.Data))
	copy(tasks, resp.Data)
	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
	return nil
}

func (s *Store) mutate(op string, call func() Response[*Task]) (*Task, error) {
	s.begin()
	resp := call()
	if err := s.finish(op, resp.Error); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, nil
	}
	updated := *resp.Data
	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID == updated.ID {
			s.tasks[i] = updated
			break
		}
	}
	s.mu.Unlock()
	return &updated, nil
}

func (s *Store) begin() {
	s.mu.Lock()
	s.inFlight++
	s.hasErr = false
	s.errMsg = ""
	s.mu.Unlock()
}

func (s *Store) finish(op, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--
	if message == "" {
		return nil
	}
	s.hasErr = true
	s.errMsg = message
	s.logger.Warn("task request failed", "op", op, "error", message)
	return &RemoteError{Op: op, Message: message}
}
