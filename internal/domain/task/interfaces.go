package task

import "context"

// Remote is the task backend. It reports failures in the response envelope
// instead of returning Go errors.
type Remote interface {
	GetUserTasks(ctx context.Context, userID string) Response[[]Task]
	GetProjectTasks(ctx context.Context, projectID string) Response[[]Task]
	GetStudyTasks(ctx context.Context, studyID string) Response[[]Task]
	CreateTask(ctx context.Context, in CreateInput) Response[*Task]
	UpdateTask(ctx context.Context, id string, patch Patch) Response[*Task]
	DeleteTask(ctx context.Context, id string) Response[bool]
	UpdateTaskStatus(ctx context.Context, id string, status Status) Response[*Task]
	AssignTask(ctx context.Context, id, assigneeID string) Response[*Task]
}
