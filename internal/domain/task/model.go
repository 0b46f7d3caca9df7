package task

import "time"

// Status is the workflow state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

// Priority ranks a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Task is a unit of research work attached to a project and optionally a study.
type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	StudyID     string     `json:"studyId,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	AssigneeID  string     `json:"assigneeId,omitempty"`
	CreatedBy   string     `json:"createdBy"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CreateInput carries the caller-supplied fields of a new task.
type CreateInput struct {
	ProjectID   string     `json:"projectId"`
	StudyID     string     `json:"studyId,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	AssigneeID  string     `json:"assigneeId,omitempty"`
	CreatedBy   string     `json:"createdBy"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// Patch lists the task fields an update may change. Nil fields are left alone.
type Patch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	AssigneeID  *string    `json:"assigneeId,omitempty"`
	StudyID     *string    `json:"studyId,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// Apply merges the patch into t and returns the result.
func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.AssigneeID != nil {
		t.AssigneeID = *p.AssigneeID
	}
	if p.StudyID != nil {
		t.StudyID = *p.StudyID
	}
	if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	return t
}

// Response is the result envelope returned by the remote task service.
// Exactly one of Data or Error is meaningful.
type Response[T any] struct {
	Data  T      `json:"data"`
	Error string `json:"error,omitempty"`
}

// Failed reports whether the response carries an error.
func (r Response[T]) Failed() bool {
	return r.Error != ""
}

// OK wraps data in a successful response.
func OK[T any](data T) Response[T] {
	return Response[T]{Data: data}
}

// Fail builds an error response.
func Fail[T any](message string) Response[T] {
	return Response[T]{Error: message}
}
