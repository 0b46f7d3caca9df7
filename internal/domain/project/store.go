package project

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ganot/studyvault/internal/medium"
	"github.com/ganot/studyvault/internal/migrate"
	"github.com/ganot/studyvault/internal/persist"
	"github.com/google/uuid"
)

const (
	// StorageKey is the medium key the project snapshot lives under.
	StorageKey = "project-storage"
	// EntitiesField names the snapshot field holding the projects.
	EntitiesField = "projects"
	// SchemaVersion is the snapshot version this package writes.
	SchemaVersion = 1

	storeName = "project"
)

var snapshotChain = migrate.MustChain(EntitiesField, SchemaVersion,
	migrate.CoerceSequence(EntitiesField),
)

// Observer receives store events, typically metrics.
type Observer interface {
	persist.Observer
	ObserveMutation(store, op string)
}

// Store holds projects and their studies in memory and mirrors every effective
// mutation to the durable medium. Operations on unknown ids are silent no-ops.
type Store struct {
	mu       sync.Mutex
	projects []Project

	persister *persist.Persister[Project]
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger
	observer  Observer
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides study id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver attaches an observer.
func WithObserver(observer Observer) Option {
	return func(s *Store) { s.observer = observer }
}

// NewStore builds a store from the snapshot in m. A nil or unavailable medium
// yields an empty, memory-only store.
func NewStore(m medium.Medium, opts ...Option) *Store {
	s := &Store{
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	var obs persist.Observer
	if s.observer != nil {
		obs = s.observer
	}
	s.persister = persist.New[Project](m, StorageKey, snapshotChain, s.logger, obs)

	projects, _ := s.persister.Load()
	for i := range projects {
		if projects[i].Studies == nil {
			projects[i].Studies = []Study{}
		}
	}
	s.projects = projects
	s.logger.Debug("project store ready", "projects", len(projects))
	return s
}

// AddProject appends p. Ids are not deduplicated. A missing status defaults to
// active, missing studies to an empty sequence and missing timestamps to now.
func (s *Store) AddProject(p Project) Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = p.clone()
	if p.Status == "" {
		p.Status = StatusActive
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	if p.UpdatedAt.Before(p.CreatedAt) {
		p.UpdatedAt = p.CreatedAt
	}

	s.projects = append(s.projects, p)
	s.commit("add_project")
	return p.clone()
}

// UpdateProject merges patch into the project with id and refreshes its updatedAt.
func (s *Store) UpdateProject(id string, patch ProjectPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	updated := patch.Apply(s.projects[i])
	updated.UpdatedAt = s.touch(updated.UpdatedAt)
	s.projects[i] = updated
	s.commit("update_project")
}

// DeleteProject removes the project with id together with its studies.
func (s *Store) DeleteProject(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.projects = append(s.projects[:i], s.projects[i+1:]...)
	s.commit("delete_project")
}

// AddStudy appends a study with a fresh id to the project. It reports false,
// and changes nothing, when the project does not exist.
func (s *Store) AddStudy(projectID string, in NewStudy) (Study, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(projectID)
	if i < 0 {
		return Study{}, false
	}

	now := s.touch(s.projects[i].UpdatedAt)
	study := Study{
		ID:           s.newID(),
		Type:         in.Type,
		Title:        in.Title,
		Description:  in.Description,
		Status:       in.Status,
		CreatedAt:    now,
		UpdatedAt:    now,
		Participants: in.Participants,
		Responses:    in.Responses,
	}
	if study.Status == "" {
		study.Status = StudyStatusDraft
	}

	s.projects[i].Studies = append(s.projects[i].Studies, study)
	s.projects[i].UpdatedAt = now
	s.commit("add_study")
	return study, true
}

// UpdateStudy merges patch into the study and refreshes the study's and the
// project's updatedAt.
func (s *Store) UpdateStudy(projectID, studyID string, patch StudyPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, j := s.studyIndex(projectID, studyID)
	if j < 0 {
		return
	}
	p := &s.projects[i]
	updated := patch.Apply(p.Studies[j])
	now := s.touch(maxTime(updated.UpdatedAt, p.UpdatedAt))
	updated.UpdatedAt = now
	p.Studies[j] = updated
	p.UpdatedAt = now
	s.commit("update_study")
}

// DeleteStudy removes the study and refreshes the project's updatedAt.
func (s *Store) DeleteStudy(projectID, studyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, j := s.studyIndex(projectID, studyID)
	if j < 0 {
		return
	}
	p := &s.projects[i]
	p.Studies = append(p.Studies[:j], p.Studies[j+1:]...)
	p.UpdatedAt = s.touch(p.UpdatedAt)
	s.commit("delete_study")
}

// GetProjectByID returns a copy of the first project with id.
func (s *Store) GetProjectByID(id string) (Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Project{}, false
	}
	return s.projects[i].clone(), true
}

// GetStudyByID looks a study up through its project.
func (s *Store) GetStudyByID(projectID, studyID string) (Study, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, j := s.studyIndex(projectID, studyID)
	if j < 0 {
		return Study{}, false
	}
	return s.projects[i].Studies[j], true
}

// Projects returns a copy of every project in insertion order.
func (s *Store) Projects() []Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Project, len(s.projects))
	for i := range s.projects {
		out[i] = s.projects[i].clone()
	}
	return out
}

func (s *Store) indexOf(id string) int {
	for i := range s.projects {
		if s.projects[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) studyIndex(projectID, studyID string) (int, int) {
	i := s.indexOf(projectID)
	if i < 0 {
		return -1, -1
	}
	for j := range s.projects[i].Studies {
		if s.projects[i].Studies[j].ID == studyID {
			return i, j
		}
	}
	return i, -1
}

// touch returns the current time, never earlier than prev.
func (s *Store) touch(prev time.Time) time.Time {
	return maxTime(s.now(), prev)
}

// commit writes the snapshot. Callers hold s.mu.
func (s *Store) commit(op string) {
	s.persister.Save(s.projects)
	if s.observer != nil {
		s.observer.ObserveMutation(storeName, op)
	}
}

func maxTime(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
