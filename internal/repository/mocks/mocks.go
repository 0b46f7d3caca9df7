package mocks

import (
	"context"

	"github.com/ganot/studyvault/internal/domain/activity"
	"github.com/ganot/studyvault/internal/domain/task"
	"github.com/stretchr/testify/mock"
)

// KVStore is a mock for repository.KVStore.
type KVStore struct {
	mock.Mock
}

func (m *KVStore) Load(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *KVStore) Save(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *KVStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// TaskRemote is a mock for task.Remote.
type TaskRemote struct {
	mock.Mock
}

func (m *TaskRemote) GetUserTasks(ctx context.Context, userID string) task.Response[[]task.Task] {
	args := m.Called(ctx, userID)
	return args.Get(0).(task.Response[[]task.Task])
}

func (m *TaskRemote) GetProjectTasks(ctx context.Context, projectID string) task.Response[[]task.Task] {
	args := m.Called(ctx, projectID)
	return args.Get(0).(task.Response[[]task.Task])
}

func (m *TaskRemote) GetStudyTasks(ctx context.Context, studyID string) task.Response[[]task.Task] {
	args := m.Called(ctx, studyID)
	return args.Get(0).(task.Response[[]task.Task])
}

func (m *TaskRemote) CreateTask(ctx context.Context, in task.CreateInput) task.Response[*task.Task] {
	args := m.Called(ctx, in)
	return args.Get(0).(task.Response[*task.Task])
}

func (m *TaskRemote) UpdateTask(ctx context.Context, id string, patch task.Patch) task.Response[*task.Task] {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(task.Response[*task.Task])
}

func (m *TaskRemote) DeleteTask(ctx context.Context, id string) task.Response[bool] {
	args := m.Called(ctx, id)
	return args.Get(0).(task.Response[bool])
}

func (m *TaskRemote) UpdateTaskStatus(ctx context.Context, id string, status task.Status) task.Response[*task.Task] {
	args := m.Called(ctx, id, status)
	return args.Get(0).(task.Response[*task.Task])
}

func (m *TaskRemote) AssignTask(ctx context.Context, id, assigneeID string) task.Response[*task.Task] {
	args := m.Called(ctx, id, assigneeID)
	return args.Get(0).(task.Response[*task.Task])
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
