package project_test

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ganot/studyvault/internal/domain/project"
	"github.com/ganot/studyvault/internal/medium"
	"github.com/stretchr/testify/require"
)

// recordingMedium counts writes on top of an in-memory map.
type recordingMedium struct {
	mu     sync.Mutex
	data   map[string][]byte
	writes int
}

func newRecordingMedium() *recordingMedium {
	return &recordingMedium{data: make(map[string][]byte)}
}

func (m *recordingMedium) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *recordingMedium) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.writes++
}

func (m *recordingMedium) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

func (m *recordingMedium) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

// Now advances one second per call.
func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func newTestStore(t *testing.T, m medium.Medium) (*project.Store, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	store := project.NewStore(m,
		project.WithClock(clock.Now),
		project.WithIDGenerator(sequentialIDs("study")),
	)
	return store, clock
}

func websiteStudy(clock *fakeClock) project.Project {
	created := clock.Now()
	return project.Project{
		ID:        "p1",
		Name:      "Website Study",
		Category:  "ux",
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func snapshotOf(t *testing.T, store *project.Store) string {
	t.Helper()
	data, err := json.Marshal(store.Projects())
	require.NoError(t, err)
	return string(data)
}

func TestStore_AddProjectDefaults(t *testing.T) {
	m := newRecordingMedium()
	store, clock := newTestStore(t, m)

	in := websiteStudy(clock)
	added := store.AddProject(in)
	require.Equal(t, project.StatusActive, added.Status)
	require.NotNil(t, added.Studies)
	require.Empty(t, added.Studies)

	got, ok := store.GetProjectByID("p1")
	require.True(t, ok)
	require.Equal(t, project.StatusActive, got.Status)
	require.Empty(t, got.Studies)

	expected := in
	expected.Status = project.StatusActive
	expected.Studies = []project.Study{}
	require.Equal(t, expected, got)
	require.Equal(t, 1, m.Writes())
}

func TestStore_AddProjectKeepsSuppliedFields(t *testing.T) {
	store, clock := newTestStore(t, newRecordingMedium())
	created := clock.Now()
	in := project.Project{
		ID:          "p2",
		Name:        "Checkout redesign",
		Description: "Measure drop-off",
		Category:    "commerce",
		Status:      project.StatusArchived,
		Goal:        "Reduce abandonment",
		CreatedAt:   created,
		UpdatedAt:   created.Add(time.Hour),
		Studies:     []project.Study{{ID: "s0", Type: project.StudyTypeSurvey, Title: "Exit survey", Status: project.StudyStatusDraft}},
	}
	store.AddProject(in)

	got, ok := store.GetProjectByID("p2")
	require.True(t, ok)
	require.Equal(t, in, got)

	in.Studies[0].Title = "mutated by caller"
	got, _ = store.GetProjectByID("p2")
	require.Equal(t, "Exit survey", got.Studies[0].Title)
}

func TestStore_AddProjectDoesNotDeduplicate(t *testing.T) {
	store, clock := newTestStore(t, newRecordingMedium())
	store.AddProject(websiteStudy(clock))
	store.AddProject(websiteStudy(clock))
	require.Len(t, store.Projects(), 2)
}

func TestStore_AddStudy(t *testing.T) {
	m := newRecordingMedium()
	store, clock := newTestStore(t, m)
	store.AddProject(websiteStudy(clock))
	before, _ := store.GetProjectByID("p1")

	study, ok := store.AddStudy("p1", project.NewStudy{Type: project.StudyTypeTest, Title: "Session A"})
	require.True(t, ok)
	require.NotEmpty(t, study.ID)
	require.NotEqual(t, "p1", study.ID)
	require.Equal(t, 0, study.Participants)
	require.Equal(t, 0, study.Responses)
	require.Equal(t, project.StudyStatusDraft, study.Status)

	after, _ := store.GetProjectByID("p1")
	require.True(t, after.UpdatedAt.After(before.UpdatedAt))
	require.Equal(t, []project.Study{study}, after.Studies)

	got, ok := store.GetStudyByID("p1", study.ID)
	require.True(t, ok)
	require.Equal(t, study, got)
	require.Equal(t, 2, m.Writes())
}

func TestStore_AddStudyToMissingProject(t *testing.T) {
	m := newRecordingMedium()
	store, clock := newTestStore(t, m)
	store.AddProject(websiteStudy(clock))
	before := snapshotOf(t, store)

	_, ok := store.AddStudy("nope", project.NewStudy{Type: project.StudyTypeTest, Title: "x"})
	require.False(t, ok)
	require.Equal(t, before, snapshotOf(t, store))
	require.Equal(t, 1, m.Writes())
}

func TestStore_UpdateStudyCascadesTimestamps(t *testing.T) {
	store, clock := newTestStore(t, newRecordingMedium())
	store.AddProject(websiteStudy(clock))
	study, _ := store.AddStudy("p1", project.NewStudy{Type: project.StudyTypeInterview, Title: "Round 1"})
	projectBefore, _ := store.GetProjectByID("p1")

	title := "Round 1 (remote)"
	participants := 8
	store.UpdateStudy("p1", study.ID, project.StudyPatch{Title: &title, Participants: &participants})

	updated, ok := store.GetStudyByID("p1", study.ID)
	require.True(t, ok)
	require.Equal(t, "Round 1 (remote)", updated.Title)
	require.Equal(t, 8, updated.Participants)
	require.Equal(t, study.ID, updated.ID)
	require.Equal(t, study.CreatedAt, updated.CreatedAt)
	require.True(t, updated.UpdatedAt.After(study.UpdatedAt))

	projectAfter, _ := store.GetProjectByID("p1")
	require.True(t, projectAfter.UpdatedAt.After(projectBefore.UpdatedAt))
}

func TestStore_UpdateProject(t *testing.T) {
	store, clock := newTestStore(t, newRecordingMedium())
	store.AddProject(websiteStudy(clock))
	before, _ := store.GetProjectByID("p1")

	name := "Website Study v2"
	status := project.StatusCompleted
	store.UpdateProject("p1", project.ProjectPatch{Name: &name, Status: &status})

	after, _ := store.GetProjectByID("p1")
	require.Equal(t, "Website Study v2", after.Name)
	require.Equal(t, project.StatusCompleted, after.Status)
	require.Equal(t, before.ID, after.ID)
	require.Equal(t, before.CreatedAt, after.CreatedAt)
	require.Equal(t, before.Category, after.Category)
	require.True(t, after.UpdatedAt.After(before.UpdatedAt))
	require.False(t, after.UpdatedAt.Before(after.CreatedAt))
}

func TestStore_DeleteProjectCascades(t *testing.T) {
	store, clock := newTestStore(t, newRecordingMedium())
	store.AddProject(websiteStudy(clock))
	s1, _ := store.AddStudy("p1", project.NewStudy{Type: project.StudyTypeTest, Title: "A"})
	s2, _ := store.AddStudy("p1", project.NewStudy{Type: project.StudyTypeSurvey, Title: "B"})

	store.DeleteProject("p1")

	_, ok := store.GetProjectByID("p1")
	require.False(t, ok)
	for _, id := range []string{s1.ID, s2.ID} {
		_, ok := store.GetStudyByID("p1", id)
		require.False(t, ok)
	}
	require.Empty(t, store.Projects())
}

func TestStore_DeleteStudy(t *testing.T) {
	store, clock := newTestStore(t, newRecordingMedium())
	store.AddProject(websiteStudy(clock))
	s1, _ := store.AddStudy("p1", project.NewStudy{Type: project.StudyTypeTest, Title: "A"})
	s2, _ := store.AddStudy("p1", project.NewStudy{Type: project.StudyTypeTest, Title: "B"})
	before, _ := store.GetProjectByID("p1")

	store.DeleteStudy("p1", s1.ID)

	after, _ := store.GetProjectByID("p1")
	require.Equal(t, []project.Study{s2}, after.Studies)
	require.True(t, after.UpdatedAt.After(before.UpdatedAt))
}

func TestStore_SilentMisses(t *testing.T) {
	m := newRecordingMedium()
	store, clock := newTestStore(t, m)
	store.AddProject(websiteStudy(clock))
	study, _ := store.AddStudy("p1", project.NewStudy{Type: project.StudyTypeTest, Title: "Session A"})
	before := snapshotOf(t, store)
	writes := m.Writes()
	persisted, _ := m.Get(project.StorageKey)

	name := "renamed"
	title := "retitled"
	require.NotPanics(t, func() {
		store.UpdateProject("nope", project.ProjectPatch{Name: &name})
		store.DeleteProject("nope")
		store.UpdateStudy("nope", study.ID, project.StudyPatch{Title: &title})
		store.UpdateStudy("p1", "nope", project.StudyPatch{Title: &title})
		store.DeleteStudy("nope", study.ID)
		store.DeleteStudy("p1", "nonexistent-id")
	})

	require.Equal(t, before, snapshotOf(t, store))
	require.Equal(t, writes, m.Writes())
	after, _ := m.Get(project.StorageKey)
	require.Equal(t, persisted, after)

	_, ok := store.GetStudyByID("p1", "nope")
	require.False(t, ok)
	_, ok = store.GetStudyByID("nope", study.ID)
	require.False(t, ok)
}

func TestStore_PersistsAndReloads(t *testing.T) {
	backend := medium.NewMemoryStore()
	store, clock := newTestStore(t, medium.New(backend))
	store.AddProject(websiteStudy(clock))
	study, _ := store.AddStudy("p1", project.NewStudy{Type: project.StudyTypeSurvey, Title: "NPS", Participants: 12})

	raw, ok := medium.New(backend).Get(project.StorageKey)
	require.True(t, ok)
	var snapshot struct {
		Projects []json.RawMessage `json:"projects"`
		Version  int               `json:"version"`
	}
	require.NoError(t, json.Unmarshal(raw, &snapshot))
	require.Equal(t, project.SchemaVersion, snapshot.Version)
	require.Len(t, snapshot.Projects, 1)

	reloaded := project.NewStore(medium.New(backend))
	require.Equal(t, store.Projects(), reloaded.Projects())
	got, ok := reloaded.GetStudyByID("p1", study.ID)
	require.True(t, ok)
	require.Equal(t, 12, got.Participants)
}

func TestStore_LoadsLegacySnapshot(t *testing.T) {
	m := newRecordingMedium()
	m.Set(project.StorageKey, []byte(`{"projects":{"b":{"id":"p2","name":"Second"},"a":{"id":"p1","name":"First","studies":[{"id":"s1","type":"test","title":"A"}]}}}`))

	store := project.NewStore(m)
	projects := store.Projects()
	require.Len(t, projects, 2)
	require.Equal(t, "p1", projects[0].ID)
	require.Equal(t, "p2", projects[1].ID)
	require.NotNil(t, projects[1].Studies)

	_, ok := store.GetStudyByID("p1", "s1")
	require.True(t, ok)
}

func TestStore_CorruptSnapshotStartsEmpty(t *testing.T) {
	m := newRecordingMedium()
	m.Set(project.StorageKey, []byte(`{"projects":[{"id":`))
	store := project.NewStore(m)
	require.Empty(t, store.Projects())
}

func TestStore_WithoutMedium(t *testing.T) {
	for name, m := range map[string]medium.Medium{
		"nil":         nil,
		"unavailable": medium.Unavailable(),
	} {
		t.Run(name, func(t *testing.T) {
			store, clock := newTestStore(t, m)
			store.AddProject(websiteStudy(clock))
			_, ok := store.AddStudy("p1", project.NewStudy{Type: project.StudyTypeTest, Title: "A"})
			require.True(t, ok)
			require.Len(t, store.Projects(), 1)
		})
	}
}

func TestStore_ConcurrentMutations(t *testing.T) {
	m := newRecordingMedium()
	store := project.NewStore(m)
	store.AddProject(project.Project{ID: "p1", Name: "Load"})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.AddStudy("p1", project.NewStudy{Type: project.StudyTypeTest, Title: fmt.Sprintf("S%d", i)})
		}(i)
	}
	wg.Wait()

	p, _ := store.GetProjectByID("p1")
	require.Len(t, p.Studies, 20)
	require.Equal(t, 21, m.Writes())

	reloaded := project.NewStore(m)
	p, _ = reloaded.GetProjectByID("p1")
	require.Len(t, p.Studies, 20)
}

type countingObserver struct {
	mu        sync.Mutex
	mutations []string
	loads     []string
}

func (o *countingObserver) ObserveMutation(store, op string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.mutations = append(o.mutations, store+"/"+op)
}

func (o *countingObserver) ObserveSnapshotLoad(key, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.loads = append(o.loads, key+"/"+outcome)
}

func TestStore_Observer(t *testing.T) {
	obs := &countingObserver{}
	store := project.NewStore(newRecordingMedium(), project.WithObserver(obs))
	store.AddProject(project.Project{ID: "p1", Name: "Observed"})
	store.DeleteProject("missing")
	store.DeleteProject("p1")

	require.Equal(t, []string{"project-storage/absent"}, obs.loads)
	require.Equal(t, []string{"project/add_project", "project/delete_project"}, obs.mutations)
}
