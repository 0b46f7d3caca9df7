package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ganot/studyvault/internal/domain/activity"
	"github.com/ganot/studyvault/internal/domain/project"
	"github.com/ganot/studyvault/internal/domain/task"
	"github.com/ganot/studyvault/internal/domain/template"
	"github.com/ganot/studyvault/internal/medium"
	"github.com/ganot/studyvault/internal/repository/mocks"
	"github.com/stretchr/testify/require"
)

type activityStub struct {
	mu     sync.Mutex
	kinds  []activity.ActivityType
	listFn func(context.Context, activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

func (a *activityStub) Record(_ context.Context, kind activity.ActivityType, _ string, _ *string, _ string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.kinds = append(a.kinds, kind)
}

func (a *activityStub) GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	if a.listFn == nil {
		return nil, nil
	}
	return a.listFn(ctx, opts)
}

func (a *activityStub) recorded() []activity.ActivityType {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]activity.ActivityType(nil), a.kinds...)
}

type handlerFixture struct {
	handler  *Handler
	remote   *mocks.TaskRemote
	activity *activityStub
}

func newHandlerFixture(t *testing.T) handlerFixture {
	t.Helper()
	remote := &mocks.TaskRemote{}
	recorder := &activityStub{}
	handler := NewHandler(Services{
		Projects:  project.NewStore(medium.New(medium.NewMemoryStore())),
		Templates: template.NewStore(medium.New(medium.NewMemoryStore())),
		Tasks:     task.NewStore(remote, nil),
		Activity:  recorder,
	})
	n := 0
	handler.newID = func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
	return handlerFixture{handler: handler, remote: remote, activity: recorder}
}

func call(t *testing.T, h *Handler, method string, params any) any {
	t.Helper()
	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		require.NoError(t, err)
		raw = data
	}
	result, err := h.Handle(context.Background(), method, raw)
	require.NoError(t, err)
	return result
}

func callErr(t *testing.T, h *Handler, method string, params any) *APIError {
	t.Helper()
	data, err := json.Marshal(params)
	require.NoError(t, err)
	_, err = h.Handle(context.Background(), method, data)
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	return apiErr
}

func TestHandler_ProjectCommands(t *testing.T) {
	fx := newHandlerFixture(t)
	h := fx.handler

	created := call(t, h, "add_project", map[string]any{"name": "Website Redesign", "category": "ux"}).(project.Project)
	require.Equal(t, "gen-1", created.ID)
	require.Equal(t, project.StatusActive, created.Status)
	require.Empty(t, created.Studies)

	study := call(t, h, "add_study", map[string]any{
		"project_id": created.ID,
		"type":       "survey",
		"title":      "Onboarding survey",
	}).(project.Study)
	require.Equal(t, project.StudyStatusDraft, study.Status)

	updated := call(t, h, "update_study", map[string]any{
		"project_id":   created.ID,
		"study_id":     study.ID,
		"status":       "active",
		"participants": 12,
	}).(project.Study)
	require.Equal(t, project.StudyStatusActive, updated.Status)
	require.Equal(t, 12, updated.Participants)

	got := call(t, h, "get_project", map[string]any{"id": created.ID}).(project.Project)
	require.Len(t, got.Studies, 1)
	require.False(t, got.UpdatedAt.Before(updated.UpdatedAt))

	renamed := call(t, h, "update_project", map[string]any{"id": created.ID, "name": "Site v2"}).(project.Project)
	require.Equal(t, "Site v2", renamed.Name)
	require.Equal(t, "ux", renamed.Category)

	list := call(t, h, "list_projects", nil).(ListProjectsResponse)
	require.Len(t, list.Projects, 1)

	require.Equal(t, DeletedResponse{Deleted: true}, call(t, h, "delete_study", map[string]any{"project_id": created.ID, "study_id": study.ID}))
	require.Equal(t, DeletedResponse{Deleted: true}, call(t, h, "delete_project", map[string]any{"id": created.ID}))
	require.Nil(t, call(t, h, "get_project", map[string]any{"id": created.ID}))

	require.Equal(t, []activity.ActivityType{
		activity.TypeProjectCreated,
		activity.TypeStudyCreated,
		activity.TypeStudyUpdated,
		activity.TypeProjectUpdated,
		activity.TypeStudyDeleted,
		activity.TypeProjectDeleted,
	}, fx.activity.recorded())
}

func TestHandler_MissesAreSilent(t *testing.T) {
	fx := newHandlerFixture(t)
	h := fx.handler

	require.Nil(t, call(t, h, "get_project", map[string]any{"id": "missing"}))
	require.Nil(t, call(t, h, "update_project", map[string]any{"id": "missing", "name": "x"}))
	require.Nil(t, call(t, h, "add_study", map[string]any{"project_id": "missing", "type": "test", "title": "t"}))
	require.Nil(t, call(t, h, "update_study", map[string]any{"project_id": "missing", "study_id": "s"}))
	require.Nil(t, call(t, h, "get_study", map[string]any{"project_id": "missing", "study_id": "s"}))
	require.Equal(t, DeletedResponse{}, call(t, h, "delete_project", map[string]any{"id": "missing"}))
	require.Equal(t, DeletedResponse{}, call(t, h, "delete_study", map[string]any{"project_id": "missing", "study_id": "s"}))
	require.Nil(t, call(t, h, "get_template", map[string]any{"id": "missing"}))
	require.Equal(t, DeletedResponse{}, call(t, h, "delete_template_study", map[string]any{"template_id": "missing", "study_id": "s"}))

	require.Empty(t, fx.activity.recorded(), "misses must not be journaled")
}

func TestHandler_Validation(t *testing.T) {
	fx := newHandlerFixture(t)
	h := fx.handler

	require.Equal(t, "INVALID_INPUT", callErr(t, h, "add_project", map[string]any{"name": " "}).Code)
	require.Equal(t, "INVALID_INPUT", callErr(t, h, "add_project", map[string]any{"name": "x", "status": "paused"}).Code)

	p := call(t, h, "add_project", map[string]any{"name": "P"}).(project.Project)
	require.Equal(t, "INVALID_INPUT", callErr(t, h, "add_study", map[string]any{"project_id": p.ID, "type": "focus_group", "title": "t"}).Code)
	require.Equal(t, "INVALID_INPUT", callErr(t, h, "update_project", map[string]any{"id": p.ID, "name": ""}).Code)
	require.Equal(t, "INVALID_INPUT", callErr(t, h, "add_template", map[string]any{"description": "no name"}).Code)
	require.Equal(t, "INVALID_INPUT", callErr(t, h, "create_task", map[string]any{"createdBy": "ana"}).Code)

	require.Equal(t, "INVALID_PARAMS", callErr(t, h, "get_project", map[string]any{"id": 42}).Code)
	require.Equal(t, "INVALID_PARAMS", callErr(t, h, "fetch_tasks", map[string]any{"scope": "team", "id": "x"}).Code)

	apiErr := callErr(t, h, "get_project", map[string]any{})
	require.Equal(t, "INVALID_PARAMS", apiErr.Code)
	require.Contains(t, apiErr.Message, "id is required")
	apiErr = callErr(t, h, "delete_template_study", map[string]any{"template_id": "x"})
	require.Contains(t, apiErr.Message, "study_id is required")
	apiErr = callErr(t, h, "get_recent_activity", map[string]any{"limit": -1})
	require.Equal(t, "INVALID_PARAMS", apiErr.Code)
	require.Equal(t, "UNKNOWN_METHOD", callErr(t, h, "drop_everything", map[string]any{}).Code)
}

func TestHandler_TemplateCommands(t *testing.T) {
	fx := newHandlerFixture(t)
	h := fx.handler

	list := call(t, h, "list_templates", nil).(ListTemplatesResponse)
	require.Len(t, list.Templates, 3)

	study := call(t, h, "add_template_study", map[string]any{
		"template_id": template.DefaultUsabilityTestID,
		"type":        "interview",
		"title":       "Follow-up interview",
		"settings":    map[string]any{"duration": 30},
	}).(template.TemplateStudy)
	require.Equal(t, float64(30), study.Settings["duration"])

	updated := call(t, h, "update_template_study", map[string]any{
		"template_id": template.DefaultUsabilityTestID,
		"study_id":    study.ID,
		"settings":    map[string]any{"questions": []any{"Why?"}},
	}).(template.TemplateStudy)
	require.NotContains(t, updated.Settings, "duration")
	require.Equal(t, []any{"Why?"}, updated.Settings["questions"])

	created := call(t, h, "add_template", map[string]any{"id": "custom", "name": "Diary study"}).(template.Template)
	require.False(t, created.IsDefault)
	renamed := call(t, h, "update_template", map[string]any{"id": "custom", "category": "longitudinal"}).(template.Template)
	require.Equal(t, "longitudinal", renamed.Category)
	require.Equal(t, DeletedResponse{Deleted: true}, call(t, h, "delete_template", map[string]any{"id": "custom"}))

	require.Equal(t, []activity.ActivityType{
		activity.TypeTemplateStudyCreated,
		activity.TypeTemplateStudyUpdated,
		activity.TypeTemplateCreated,
		activity.TypeTemplateUpdated,
		activity.TypeTemplateDeleted,
	}, fx.activity.recorded())
}

func TestHandler_TaskCommands(t *testing.T) {
	fx := newHandlerFixture(t)
	h := fx.handler
	ctx := context.Background()

	tasks := []task.Task{
		{ID: "t1", ProjectID: "p1", Title: "Recruit participants", Status: task.StatusTodo, Priority: task.PriorityHigh, AssigneeID: "ana"},
		{ID: "t2", ProjectID: "p1", Title: "Write script", Status: task.StatusDone, Priority: task.PriorityLow},
	}
	fx.remote.On("GetProjectTasks", ctx, "p1").Return(task.OK(tasks))
	fx.remote.On("UpdateTaskStatus", ctx, "t1", task.StatusInProgress).Return(task.OK(&task.Task{
		ID: "t1", ProjectID: "p1", Title: "Recruit participants", Status: task.StatusInProgress, Priority: task.PriorityHigh, AssigneeID: "ana",
	}))
	fx.remote.On("DeleteTask", ctx, "t2").Return(task.Fail[bool]("permission denied"))

	state := call(t, h, "fetch_tasks", map[string]any{"scope": "project", "id": "p1"}).(TaskStateResponse)
	require.Len(t, state.Tasks, 2)
	require.Len(t, state.Filtered, 2)

	state = call(t, h, "list_tasks", map[string]any{"filter": map[string]any{"search": "SCRIPT"}}).(TaskStateResponse)
	require.Len(t, state.Filtered, 1)
	require.Equal(t, "t2", state.Filtered[0].ID)

	moved := call(t, h, "update_task_status", map[string]any{"id": "t1", "status": "in_progress"}).(*task.Task)
	require.Equal(t, task.StatusInProgress, moved.Status)

	apiErr := callErr(t, h, "delete_task", map[string]any{"id": "t2"})
	require.Equal(t, "REMOTE_ERROR", apiErr.Code)
	require.Equal(t, "permission denied", apiErr.Message)

	state = call(t, h, "list_tasks", nil).(TaskStateResponse)
	require.Len(t, state.Tasks, 2, "failed delete keeps the local copy")
	require.Equal(t, "permission denied", state.Error)
	require.Equal(t, "SCRIPT", state.Filter.Search)

	require.Equal(t, []activity.ActivityType{activity.TypeTaskUpdated}, fx.activity.recorded())
	fx.remote.AssertExpectations(t)
}

func TestHandler_RecentActivity(t *testing.T) {
	fx := newHandlerFixture(t)
	parent := "p1"
	fx.activity.listFn = func(_ context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
		require.Equal(t, "s1", opts.SubjectID)
		require.Equal(t, 5, opts.Limit)
		return []activity.ActivityEntry{{
			ID:           1,
			SubjectID:    "s1",
			ParentID:     &parent,
			ActivityType: activity.TypeStudyCreated,
			Summary:      "created study Onboarding",
		}}, nil
	}

	resp := call(t, fx.handler, "get_recent_activity", map[string]any{"subject_id": "s1", "limit": 5}).([]ActivityEntryResponse)
	require.Len(t, resp, 1)
	require.Equal(t, activity.TypeStudyCreated, resp[0].Type)
	require.Equal(t, "p1", *resp[0].ParentID)
}

func TestMapError(t *testing.T) {
	require.Nil(t, MapError(nil))
	require.Nil(t, MapError(errors.New("boom")))
	require.Equal(t, "REMOTE_ERROR", MapError(&task.RemoteError{Op: "get user tasks", Message: "timeout"}).Code)
	require.Equal(t, "INVALID_INPUT", MapError(project.ErrInvalidInput).Code)
	require.Equal(t, "INVALID_INPUT", MapError(template.ErrInvalidInput).Code)
}
