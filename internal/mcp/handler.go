package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/ganot/studyvault/internal/domain/activity"
	"github.com/ganot/studyvault/internal/domain/project"
	"github.com/ganot/studyvault/internal/domain/task"
	"github.com/ganot/studyvault/internal/domain/template"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Handler dispatches tool calls to the stores. Lookups that miss return a nil
// result rather than an error.
type Handler struct {
	projects  ProjectStore
	templates TemplateStore
	tasks     TaskStore
	activity  ActivityService
	newID     func() string
}

// NewHandler creates a new MCP handler.
func NewHandler(services Services) *Handler {
	return &Handler{
		projects:  services.Projects,
		templates: services.Templates,
		tasks:     services.Tasks,
		activity:  services.Activity,
		newID:     uuid.NewString,
	}
}

// Handle dispatches an MCP method call.
func (h *Handler) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case "add_project":
		var req AddProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.ID == "" {
			req.ID = h.newID()
		}
		p := project.Project{
			ID:          req.ID,
			Name:        req.Name,
			Description: req.Description,
			Category:    req.Category,
			Status:      req.Status,
			Goal:        req.Goal,
		}
		if err := project.ValidateNew(p); err != nil {
			return nil, mapError(err)
		}
		created := h.projects.AddProject(p)
		h.record(ctx, activity.TypeProjectCreated, created.ID, nil, "created project "+created.Name)
		return created, nil
	case "update_project":
		var req UpdateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := project.ValidatePatch(req.ProjectPatch); err != nil {
			return nil, mapError(err)
		}
		if _, ok := h.projects.GetProjectByID(req.ID); !ok {
			return nil, nil
		}
		h.projects.UpdateProject(req.ID, req.ProjectPatch)
		h.record(ctx, activity.TypeProjectUpdated, req.ID, nil, "updated project")
		v, ok := h.projects.GetProjectByID(req.ID)
		return optional(v, ok), nil
	case "delete_project":
		var req GetProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if _, ok := h.projects.GetProjectByID(req.ID); !ok {
			return DeletedResponse{}, nil
		}
		h.projects.DeleteProject(req.ID)
		h.record(ctx, activity.TypeProjectDeleted, req.ID, nil, "deleted project")
		return DeletedResponse{Deleted: true}, nil
	case "get_project":
		var req GetProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		v, ok := h.projects.GetProjectByID(req.ID)
		return optional(v, ok), nil
	case "list_projects":
		return ListProjectsResponse{Projects: h.projects.Projects()}, nil
	case "add_study":
		var req AddStudyParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := project.ValidateNewStudy(req.NewStudy); err != nil {
			return nil, mapError(err)
		}
		study, ok := h.projects.AddStudy(req.ProjectID, req.NewStudy)
		if !ok {
			return nil, nil
		}
		h.record(ctx, activity.TypeStudyCreated, study.ID, &req.ProjectID, "created study "+study.Title)
		return study, nil
	case "update_study":
		var req UpdateStudyParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := project.ValidateStudyPatch(req.StudyPatch); err != nil {
			return nil, mapError(err)
		}
		if _, ok := h.projects.GetStudyByID(req.ProjectID, req.StudyID); !ok {
			return nil, nil
		}
		h.projects.UpdateStudy(req.ProjectID, req.StudyID, req.StudyPatch)
		h.record(ctx, activity.TypeStudyUpdated, req.StudyID, &req.ProjectID, "updated study")
		v, ok := h.projects.GetStudyByID(req.ProjectID, req.StudyID)
		return optional(v, ok), nil
	case "delete_study":
		var req StudyRefParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if _, ok := h.projects.GetStudyByID(req.ProjectID, req.StudyID); !ok {
			return DeletedResponse{}, nil
		}
		h.projects.DeleteStudy(req.ProjectID, req.StudyID)
		h.record(ctx, activity.TypeStudyDeleted, req.StudyID, &req.ProjectID, "deleted study")
		return DeletedResponse{Deleted: true}, nil
	case "get_study":
		var req StudyRefParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		v, ok := h.projects.GetStudyByID(req.ProjectID, req.StudyID)
		return optional(v, ok), nil

	case "add_template":
		var req AddTemplateParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.ID == "" {
			req.ID = h.newID()
		}
		t := template.Template{
			ID:          req.ID,
			Name:        req.Name,
			Description: req.Description,
			Category:    req.Category,
		}
		if err := template.ValidateNew(t); err != nil {
			return nil, mapError(err)
		}
		created := h.templates.AddTemplate(t)
		h.record(ctx, activity.TypeTemplateCreated, created.ID, nil, "created template "+created.Name)
		return created, nil
	case "update_template":
		var req UpdateTemplateParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := template.ValidatePatch(req.TemplatePatch); err != nil {
			return nil, mapError(err)
		}
		if _, ok := h.templates.GetTemplateByID(req.ID); !ok {
			return nil, nil
		}
		h.templates.UpdateTemplate(req.ID, req.TemplatePatch)
		h.record(ctx, activity.TypeTemplateUpdated, req.ID, nil, "updated template")
		v, ok := h.templates.GetTemplateByID(req.ID)
		return optional(v, ok), nil
	case "delete_template":
		var req GetTemplateParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if _, ok := h.templates.GetTemplateByID(req.ID); !ok {
			return DeletedResponse{}, nil
		}
		h.templates.DeleteTemplate(req.ID)
		h.record(ctx, activity.TypeTemplateDeleted, req.ID, nil, "deleted template")
		return DeletedResponse{Deleted: true}, nil
	case "get_template":
		var req GetTemplateParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		v, ok := h.templates.GetTemplateByID(req.ID)
		return optional(v, ok), nil
	case "list_templates":
		return ListTemplatesResponse{Templates: h.templates.Templates()}, nil
	case "add_template_study":
		var req AddTemplateStudyParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := template.ValidateNewStudy(req.NewTemplateStudy); err != nil {
			return nil, mapError(err)
		}
		study, ok := h.templates.AddTemplateStudy(req.TemplateID, req.NewTemplateStudy)
		if !ok {
			return nil, nil
		}
		h.record(ctx, activity.TypeTemplateStudyCreated, study.ID, &req.TemplateID, "created template study "+study.Title)
		return study, nil
	case "update_template_study":
		var req UpdateTemplateStudyParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := template.ValidateStudyPatch(req.TemplateStudyPatch); err != nil {
			return nil, mapError(err)
		}
		if _, ok := h.templates.GetTemplateStudyByID(req.TemplateID, req.StudyID); !ok {
			return nil, nil
		}
		h.templates.UpdateTemplateStudy(req.TemplateID, req.StudyID, req.TemplateStudyPatch)
		h.record(ctx, activity.TypeTemplateStudyUpdated, req.StudyID, &req.TemplateID, "updated template study")
		v, ok := h.templates.GetTemplateStudyByID(req.TemplateID, req.StudyID)
		return optional(v, ok), nil
	case "delete_template_study":
		var req TemplateStudyRefParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if _, ok := h.templates.GetTemplateStudyByID(req.TemplateID, req.StudyID); !ok {
			return DeletedResponse{}, nil
		}
		h.templates.DeleteTemplateStudy(req.TemplateID, req.StudyID)
		h.record(ctx, activity.TypeTemplateStudyDeleted, req.StudyID, &req.TemplateID, "deleted template study")
		return DeletedResponse{Deleted: true}, nil
	case "get_template_study":
		var req TemplateStudyRefParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		v, ok := h.templates.GetTemplateStudyByID(req.TemplateID, req.StudyID)
		return optional(v, ok), nil

	case "fetch_tasks":
		var req FetchTasksParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		var err error
		switch req.Scope {
		case "user":
			err = h.tasks.FetchUserTasks(ctx, req.ID)
		case "project":
			err = h.tasks.FetchProjectTasks(ctx, req.ID)
		case "study":
			err = h.tasks.FetchStudyTasks(ctx, req.ID)
		default:
			return nil, invalidParams(fmt.Errorf("unknown scope %q", req.Scope))
		}
		if err != nil {
			return nil, mapError(err)
		}
		return h.taskState(), nil
	case "list_tasks":
		var req ListTasksParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.Filter != nil {
			h.tasks.SetFilter(*req.Filter)
		}
		return h.taskState(), nil
	case "create_task":
		var req task.CreateInput
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		created, err := h.tasks.CreateTask(ctx, req)
		if err != nil {
			return nil, mapError(err)
		}
		if created != nil {
			h.record(ctx, activity.TypeTaskCreated, created.ID, &created.ProjectID, "created task "+created.Title)
		}
		return created, nil
	case "update_task":
		var req UpdateTaskParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.taskMutation(ctx, req.ID, "updated task", func() (*task.Task, error) {
			return h.tasks.UpdateTask(ctx, req.ID, req.Patch)
		})
	case "update_task_status":
		var req UpdateTaskStatusParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.taskMutation(ctx, req.ID, "task status "+string(req.Status), func() (*task.Task, error) {
			return h.tasks.UpdateTaskStatus(ctx, req.ID, req.Status)
		})
	case "assign_task":
		var req AssignTaskParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.taskMutation(ctx, req.ID, "assigned task to "+req.AssigneeID, func() (*task.Task, error) {
			return h.tasks.AssignTask(ctx, req.ID, req.AssigneeID)
		})
	case "delete_task":
		var req DeleteTaskParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.tasks.DeleteTask(ctx, req.ID); err != nil {
			return nil, mapError(err)
		}
		h.record(ctx, activity.TypeTaskDeleted, req.ID, nil, "deleted task")
		return DeletedResponse{Deleted: true}, nil

	case "get_recent_activity":
		var req GetRecentActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if h.activity == nil {
			return []ActivityEntryResponse{}, nil
		}
		entries, err := h.activity.GetRecentActivity(ctx, activity.ListActivityOptions{
			SubjectID:    req.SubjectID,
			ParentID:     req.ParentID,
			ActivityType: req.Type,
			Limit:        req.Limit,
			Offset:       req.Offset,
		})
		if err != nil {
			return nil, mapError(err)
		}
		resp := make([]ActivityEntryResponse, 0, len(entries))
		for _, entry := range entries {
			resp = append(resp, ActivityEntryResponse{
				Timestamp: entry.CreatedAt,
				Type:      entry.ActivityType,
				SubjectID: entry.SubjectID,
				ParentID:  entry.ParentID,
				Summary:   entry.Summary,
				Details:   entry.Details,
			})
		}
		return resp, nil
	default:
		return nil, mapError(fmt.Errorf("%w: %s", ErrUnknownMethod, method))
	}
}

func (h *Handler) taskMutation(ctx context.Context, id, summary string, call func() (*task.Task, error)) (any, error) {
	updated, err := call()
	if err != nil {
		return nil, mapError(err)
	}
	if updated == nil {
		return nil, nil
	}
	h.record(ctx, activity.TypeTaskUpdated, id, &updated.ProjectID, summary)
	return updated, nil
}

func (h *Handler) taskState() TaskStateResponse {
	msg, _ := h.tasks.Error()
	return TaskStateResponse{
		Tasks:    h.tasks.Tasks(),
		Filtered: h.tasks.Filtered(),
		Filter:   h.tasks.Filter(),
		Loading:  h.tasks.Loading(),
		Error:    msg,
	}
}

func (h *Handler) record(ctx context.Context, kind activity.ActivityType, subjectID string, parentID *string, summary string) {
	if h.activity == nil {
		return
	}
	h.activity.Record(ctx, kind, subjectID, parentID, summary)
}

// optional turns a (value, found) lookup into a value or nil.
func optional[T any](v T, ok bool) any {
	if !ok {
		return nil
	}
	return v
}

// decodeParams unmarshals params into out and checks its validate tags.
func decodeParams(params json.RawMessage, out any) error {
	if len(params) > 0 {
		if err := json.Unmarshal(params, out); err != nil {
			return invalidParams(err)
		}
	}
	if err := validate.Struct(out); err != nil {
		return invalidParams(describeValidation(err))
	}
	return nil
}

func describeValidation(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
