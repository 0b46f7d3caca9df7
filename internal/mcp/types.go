package mcp

import (
	"time"

	"github.com/ganot/studyvault/internal/domain/activity"
	"github.com/ganot/studyvault/internal/domain/project"
	"github.com/ganot/studyvault/internal/domain/task"
	"github.com/ganot/studyvault/internal/domain/template"
)

type AddProjectParams struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Category    string         `json:"category,omitempty"`
	Status      project.Status `json:"status,omitempty"`
	Goal        string         `json:"goal,omitempty"`
}

type UpdateProjectParams struct {
	ID string `json:"id" validate:"required"`
	project.ProjectPatch
}

type GetProjectParams struct {
	ID string `json:"id" validate:"required"`
}

type AddStudyParams struct {
	ProjectID string `json:"project_id" validate:"required"`
	project.NewStudy
}

type UpdateStudyParams struct {
	ProjectID string `json:"project_id" validate:"required"`
	StudyID   string `json:"study_id" validate:"required"`
	project.StudyPatch
}

type StudyRefParams struct {
	ProjectID string `json:"project_id" validate:"required"`
	StudyID   string `json:"study_id" validate:"required"`
}

type AddTemplateParams struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

type UpdateTemplateParams struct {
	ID string `json:"id" validate:"required"`
	template.TemplatePatch
}

type GetTemplateParams struct {
	ID string `json:"id" validate:"required"`
}

type AddTemplateStudyParams struct {
	TemplateID string `json:"template_id" validate:"required"`
	template.NewTemplateStudy
}

type UpdateTemplateStudyParams struct {
	TemplateID string `json:"template_id" validate:"required"`
	StudyID    string `json:"study_id" validate:"required"`
	template.TemplateStudyPatch
}

type TemplateStudyRefParams struct {
	TemplateID string `json:"template_id" validate:"required"`
	StudyID    string `json:"study_id" validate:"required"`
}

// FetchTasksParams selects the remote collection to load. Scope is one of
// user, project or study.
type FetchTasksParams struct {
	Scope string `json:"scope" validate:"required,oneof=user project study"`
	ID    string `json:"id" validate:"required"`
}

type ListTasksParams struct {
	Filter *task.Filter `json:"filter,omitempty"`
}

type UpdateTaskParams struct {
	ID string `json:"id" validate:"required"`
	task.Patch
}

type UpdateTaskStatusParams struct {
	ID     string      `json:"id" validate:"required"`
	Status task.Status `json:"status"`
}

type AssignTaskParams struct {
	ID         string `json:"id" validate:"required"`
	AssigneeID string `json:"assignee_id"`
}

type DeleteTaskParams struct {
	ID string `json:"id" validate:"required"`
}

type GetRecentActivityParams struct {
	SubjectID string                 `json:"subject_id,omitempty"`
	ParentID  *string                `json:"parent_id,omitempty"`
	Type      *activity.ActivityType `json:"type,omitempty"`
	Limit     int                    `json:"limit,omitempty" validate:"min=0"`
	Offset    int                    `json:"offset,omitempty" validate:"min=0"`
}

type ListProjectsResponse struct {
	Projects []project.Project `json:"projects"`
}

type ListTemplatesResponse struct {
	Templates []template.Template `json:"templates"`
}

// TaskStateResponse mirrors the observable state of the task store after a call.
type TaskStateResponse struct {
	Tasks    []task.Task `json:"tasks"`
	Filtered []task.Task `json:"filtered"`
	Filter   task.Filter `json:"filter"`
	Loading  bool        `json:"loading"`
	Error    string      `json:"error,omitempty"`
}

type DeletedResponse struct {
	Deleted bool `json:"deleted"`
}

type ActivityEntryResponse struct {
	Timestamp time.Time             `json:"timestamp"`
	Type      activity.ActivityType `json:"type"`
	SubjectID string                `json:"subject_id"`
	ParentID  *string               `json:"parent_id,omitempty"`
	Summary   string                `json:"summary"`
	Details   string                `json:"details,omitempty"`
}
