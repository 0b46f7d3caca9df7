package template

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
	// StorageKey is the medium key the template snapshot lives under.
	StorageKey = "template-storage"
	// EntitiesField names the snapshot field holding the templates.
	EntitiesField = "templates"
	// SchemaVersion is the snapshot version this package writes.
	SchemaVersion = 1

	storeName = "template"
)

var snapshotChain = migrate.MustChain(EntitiesField, SchemaVersion,
	migrate.CoerceSequence(EntitiesField),
)

// Observer receives store events, typically metrics.
type Observer interface {
	persist.Observer
	ObserveMutation(store, op string)
}

// Store holds templates and their studies. It starts from the built-in defaults
// unless a usable snapshot exists, in which case the snapshot wins.
type Store struct {
	mu        sync.Mutex
	templates []Template

	persister *persist.Persister[Template]
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

// WithIDGenerator overrides template study id generation.
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

// NewStore seeds the defaults and overlays the snapshot in m, if any.
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
	s.persister = persist.New[Template](m, StorageKey, snapshotChain, s.logger, obs)

	s.templates = Defaults(s.now())
	if templates, ok := s.persister.Load(); ok {
		for i := range templates {
			if templates[i].Studies == nil {
				templates[i].Studies = []TemplateStudy{}
			}
			for j := range templates[i].Studies {
				if templates[i].Studies[j].Settings == nil {
					templates[i].Studies[j].Settings = map[string]any{}
				}
			}
		}
		s.templates = templates
	}
	s.logger.Debug("template store ready", "templates", len(s.templates))
	return s
}

// AddTemplate appends t. Ids are not deduplicated.
func (s *Store) AddTemplate(t Template) Template {
	s.mu.Lock()
	defer s.mu.Unlock()

	t = t.clone()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		t.UpdatedAt = t.CreatedAt
	}

	s.templates = append(s.templates, t)
	s.commit("add_template")
	return t.clone()
}

// UpdateTemplate merges patch into the template with id and refreshes its updatedAt.
func (s *Store) UpdateTemplate(id string, patch TemplatePatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	updated := patch.Apply(s.templates[i])
	updated.UpdatedAt = s.touch(updated.UpdatedAt)
	s.templates[i] = updated
	s.commit("update_template")
}

// DeleteTemplate removes the template with id together with its studies.
// Defaults may be deleted like any other template.
func (s *Store) DeleteTemplate(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.templates = append(s.templates[:i], s.templates[i+1:]...)
	s.commit("delete_template")
}

// AddTemplateStudy appends a study with a fresh id. It reports false when the
// template does not exist.
func (s *Store) AddTemplateStudy(templateID string, in NewTemplateStudy) (TemplateStudy, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(templateID)
	if i < 0 {
		return TemplateStudy{}, false
	}

	now := s.touch(s.templates[i].UpdatedAt)
	study := TemplateStudy{
		ID:          s.newID(),
		Type:        in.Type,
		Title:       in.Title,
		Description: in.Description,
		Settings:    cloneSettings(in.Settings),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.templates[i].Studies = append(s.templates[i].Studies, study)
	s.templates[i].UpdatedAt = now
	s.commit("add_template_study")
	return study.clone(), true
}

// UpdateTemplateStudy merges patch into the study and refreshes the study's and
// the template's updatedAt.
func (s *Store) UpdateTemplateStudy(templateID, studyID string, patch TemplateStudyPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, j := s.studyIndex(templateID, studyID)
	if j < 0 {
		return
	}
	t := &s.templates[i]
	updated := patch.Apply(t.Studies[j])
	now := s.touch(maxTime(updated.UpdatedAt, t.UpdatedAt))
	updated.UpdatedAt = now
	t.Studies[j] = updated
	t.UpdatedAt = now
	s.commit("update_template_study")
}

// DeleteTemplateStudy removes the study and refreshes the template's updatedAt.
func (s *Store) DeleteTemplateStudy(templateID, studyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, j := s.studyIndex(templateID, studyID)
	if j < 0 {
		return
	}
	t := &s.templates[i]
	t.Studies = append(t.Studies[:j], t.Studies[j+1:]...)
	t.UpdatedAt = s.touch(t.UpdatedAt)
	s.commit("delete_template_study")
}

// GetTemplateByID returns a copy of the first template with id.
func (s *Store) GetTemplateByID(id string) (Template, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Template{}, false
	}
	return s.templates[i].clone(), true
}

// GetTemplateStudyByID looks a study up through its template.
func (s *Store) GetTemplateStudyByID(templateID, studyID string) (TemplateStudy, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, j := s.studyIndex(templateID, studyID)
	if j < 0 {
		return TemplateStudy{}, false
	}
	return s.templates[i].Studies[j].clone(), true
}

// Templates returns a copy of every template in insertion order.
func (s *Store) Templates() []Template {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Template, len(s.templates))
	for i := range s.templates {
		out[i] = s.templates[i].clone()
	}
	return out
}

func (s *Store) indexOf(id string) int {
	for i := range s.templates {
		if s.templates[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) studyIndex(templateID, studyID string) (int, int) {
	i := s.indexOf(templateID)
	if i < 0 {
		return -1, -1
	}
	for j := range s.templates[i].Studies {
		if s.templates[i].Studies[j].ID == studyID {
			return i, j
		}
	}
	return i, -1
}

func (s *Store) touch(prev time.Time) time.Time {
	return maxTime(s.now(), prev)
}

// commit writes the snapshot. Callers hold s.mu.
func (s *Store) commit(op string) {
	s.persister.Save(s.templates)
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
