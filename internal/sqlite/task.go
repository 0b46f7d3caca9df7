package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ganot/studyvault/internal/domain/task"
	"github.com/google/uuid"
)

const taskColumns = `id, project_id, study_id, title, description, status, priority,
	assignee_id, created_by, due_date, created_at, updated_at`

// TaskRepository implements task.Remote for SQLite. Failures are reported in
// the response envelope rather than as Go errors.
type TaskRepository struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

var _ task.Remote = (*TaskRepository)(nil)

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *DB, logger *slog.Logger) *TaskRepository {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &TaskRepository{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// GetUserTasks returns the tasks assigned to userID.
func (r *TaskRepository) GetUserTasks(ctx context.Context, userID string) task.Response[[]task.Task] {
	return r.list(ctx, "assignee_id", userID)
}

// GetProjectTasks returns the tasks of projectID.
func (r *TaskRepository) GetProjectTasks(ctx context.Context, projectID string) task.Response[[]task.Task] {
	return r.list(ctx, "project_id", projectID)
}

// GetStudyTasks returns the tasks of studyID.
func (r *TaskRepository) GetStudyTasks(ctx context.Context, studyID string) task.Response[[]task.Task] {
	return r.list(ctx, "study_id", studyID)
}

// CreateTask inserts a task with a generated id.
func (r *TaskRepository) CreateTask(ctx context.Context, in task.CreateInput) task.Response[*task.Task] {
	if strings.TrimSpace(in.ProjectID) == "" || strings.TrimSpace(in.Title) == "" {
		return task.Fail[*task.Task]("projectId and title are required")
	}

	now := r.now()
	t := task.Task{
		ID:          r.newID(),
		ProjectID:   in.ProjectID,
		StudyID:     in.StudyID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		AssigneeID:  in.AssigneeID,
		CreatedBy:   in.CreatedBy,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Status == "" {
		t.Status = task.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = task.PriorityMedium
	}

	query := `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.ProjectID,
		nullString(t.StudyID),
		t.Title,
		t.Description,
		t.Status,
		t.Priority,
		nullString(t.AssigneeID),
		t.CreatedBy,
		nullTime(t.DueDate),
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return task.Fail[*task.Task](r.describe("create task", err))
	}
	return task.OK(&t)
}

// UpdateTask applies patch to an existing task.
func (r *TaskRepository) UpdateTask(ctx context.Context, id string, patch task.Patch) task.Response[*task.Task] {
	return r.modify(ctx, "update task", id, patch.Apply)
}

// UpdateTaskStatus changes a task's status.
func (r *TaskRepository) UpdateTaskStatus(ctx context.Context, id string, status task.Status) task.Response[*task.Task] {
	return r.modify(ctx, "update task status", id, func(t task.Task) task.Task {
		t.Status = status
		return t
	})
}

// AssignTask sets a task's assignee.
func (r *TaskRepository) AssignTask(ctx context.Context, id, assigneeID string) task.Response[*task.Task] {
	return r.modify(ctx, "assign task", id, func(t task.Task) task.Task {
		t.AssigneeID = assigneeID
		return t
	})
}

// DeleteTask removes a task.
func (r *TaskRepository) DeleteTask(ctx context.Context, id string) task.Response[bool] {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return task.Fail[bool](r.describe("delete task", err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return task.Fail[bool](r.describe("delete task", err))
	}
	if rows == 0 {
		return task.Fail[bool](fmt.Sprintf("task %s not found", id))
	}
	return task.OK(true)
}

func (r *TaskRepository) list(ctx context.Context, column, value string) task.Response[[]task.Task] {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + column + ` = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, value)
	if err != nil {
		return task.Fail[[]task.Task](r.describe("list tasks", err))
	}
	defer rows.Close()

	tasks := []task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return task.Fail[[]task.Task](r.describe("list tasks", err))
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return task.Fail[[]task.Task](r.describe("list tasks", err))
	}
	return task.OK(tasks)
}

func (r *TaskRepository) modify(ctx context.Context, op, id string, change func(task.Task) task.Task) task.Response[*task.Task] {
	current, err := r.get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return task.Fail[*task.Task](fmt.Sprintf("task %s not found", id))
	}
	if err != nil {
		return task.Fail[*task.Task](r.describe(op, err))
	}

	updated := change(*current)
	updated.ID = current.ID
	updated.ProjectID = current.ProjectID
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = r.now()

	query := `
		UPDATE tasks
		SET study_id = ?, title = ?, description = ?, status = ?, priority = ?,
		    assignee_id = ?, due_date = ?, updated_at = ?
		WHERE id = ?
	`
	_, err = r.db.ExecContext(ctx, query,
		nullString(updated.StudyID),
		updated.Title,
		updated.Description,
		updated.Status,
		updated.Priority,
		nullString(updated.AssigneeID),
		nullTime(updated.DueDate),
		updated.UpdatedAt,
		id,
	)
	if err != nil {
		return task.Fail[*task.Task](r.describe(op, err))
	}
	return task.OK(&updated)
}

func (r *TaskRepository) get(ctx context.Context, id string) (*task.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

// describe turns a database error into the message carried by the envelope.
func (r *TaskRepository) describe(op string, err error) string {
	switch {
	case isCheckViolation(err):
		return "invalid status or priority"
	case isUniqueViolation(err):
		return "task already exists"
	}
	r.logger.Error("task query failed", "op", op, "error", err)
	return fmt.Sprintf("%s failed", op)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	var t task.Task
	var studyID, assigneeID sql.NullString
	var dueDate sql.NullTime
	if err := row.Scan(
		&t.ID,
		&t.ProjectID,
		&studyID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&assigneeID,
		&t.CreatedBy,
		&dueDate,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.StudyID = studyID.String
	t.AssigneeID = assigneeID.String
	if dueDate.Valid {
		due := dueDate.Time
		t.DueDate = &due
	}
	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
