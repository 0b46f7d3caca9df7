package task_test

import (
	"context"
	"sync"
	"testing"

	"github.com/ganot/studyvault/internal/domain/task"
	"github.com/ganot/studyvault/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStore_FetchReplacesCollection(t *testing.T) {
	ctx := context.Background()
	remote := &mocks.TaskRemote{}
	remote.On("GetProjectTasks", ctx, "p1").Return(task.OK(sampleTasks()))
	remote.On("GetUserTasks", ctx, "ana").Return(task.OK([]task.Task{{ID: "t1", AssigneeID: "ana"}}))

	store := task.NewStore(remote, nil)
	require.NoError(t, store.FetchProjectTasks(ctx, "p1"))
	require.Len(t, store.Tasks(), 4)

	require.NoError(t, store.FetchUserTasks(ctx, "ana"))
	require.Equal(t, []string{"t1"}, ids(store.Tasks()))
	require.False(t, store.Loading())
}

func TestStore_RemoteErrorIsRecorded(t *testing.T) {
	ctx := context.Background()
	remote := &mocks.TaskRemote{}
	remote.On("GetProjectTasks", ctx, "p1").Return(task.OK(sampleTasks()))
	remote.On("GetStudyTasks", ctx, "s1").Return(task.Fail[[]task.Task]("connection refused"))

	store := task.NewStore(remote, nil)
	require.NoError(t, store.FetchProjectTasks(ctx, "p1"))

	err := store.FetchStudyTasks(ctx, "s1")
	require.ErrorIs(t, err, task.ErrRemote)
	var remoteErr *task.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	require.Equal(t, "connection refused", remoteErr.Message)

	msg, failed := store.Error()
	require.True(t, failed)
	require.Equal(t, "connection refused", msg)
	require.Len(t, store.Tasks(), 4, "failed fetch must not clear the collection")

	require.NoError(t, store.FetchProjectTasks(ctx, "p1"))
	_, failed = store.Error()
	require.False(t, failed)
}

func TestStore_MutationsApplyResponses(t *testing.T) {
	ctx := context.Background()
	remote := &mocks.TaskRemote{}
	remote.On("GetProjectTasks", ctx, "p1").Return(task.OK(sampleTasks()))

	created := &task.Task{ID: "t5", ProjectID: "p1", Title: "Pilot session", Status: task.StatusTodo, Priority: task.PriorityUrgent}
	in := task.CreateInput{ProjectID: "p1", Title: "Pilot session", Priority: task.PriorityUrgent, CreatedBy: "ana"}
	remote.On("CreateTask", ctx, in).Return(task.OK(created))

	review := task.StatusReview
	remote.On("UpdateTaskStatus", ctx, "t2", task.StatusReview).Return(task.OK(&task.Task{ID: "t2", Title: "Write discussion guide", Status: review, Priority: task.PriorityHigh, AssigneeID: "ben"}))
	remote.On("AssignTask", ctx, "t4", "ben").Return(task.OK(&task.Task{ID: "t4", Title: "Book lab", Status: task.StatusDone, Priority: task.PriorityMedium, AssigneeID: "ben"}))
	remote.On("DeleteTask", ctx, "t3").Return(task.OK(true))

	store := task.NewStore(remote, nil)
	require.NoError(t, store.FetchProjectTasks(ctx, "p1"))

	got, err := store.CreateTask(ctx, in)
	require.NoError(t, err)
	require.Equal(t, "t5", got.ID)

	_, err = store.UpdateTaskStatus(ctx, "t2", task.StatusReview)
	require.NoError(t, err)
	_, err = store.AssignTask(ctx, "t4", "ben")
	require.NoError(t, err)
	require.NoError(t, store.DeleteTask(ctx, "t3"))

	tasks := store.Tasks()
	require.Equal(t, []string{"t1", "t2", "t4", "t5"}, ids(tasks))
	require.Equal(t, task.StatusReview, tasks[1].Status)
	require.Equal(t, "ben", tasks[2].AssigneeID)
	remote.AssertExpectations(t)
}

func TestStore_CreateValidation(t *testing.T) {
	store := task.NewStore(&mocks.TaskRemote{}, nil)
	_, err := store.CreateTask(context.Background(), task.CreateInput{ProjectID: "p1"})
	require.ErrorIs(t, err, task.ErrInvalidInput)
}

func TestStore_FilteredRecomputesOnStateChange(t *testing.T) {
	ctx := context.Background()
	remote := &mocks.TaskRemote{}
	remote.On("GetProjectTasks", ctx, "p1").Return(task.OK(sampleTasks()))
	remote.On("UpdateTaskStatus", ctx, "t2", task.StatusTodo).Return(task.OK(&task.Task{ID: "t2", Title: "Write discussion guide", Status: task.StatusTodo, Priority: task.PriorityHigh}))

	store := task.NewStore(remote, nil)
	require.NoError(t, store.FetchProjectTasks(ctx, "p1"))

	store.SetFilter(task.Filter{Status: task.StatusTodo})
	require.Equal(t, []string{"t1", "t3"}, ids(store.Filtered()))

	_, err := store.UpdateTaskStatus(ctx, "t2", task.StatusTodo)
	require.NoError(t, err)
	require.Equal(t, []string{"t1", "t2", "t3"}, ids(store.Filtered()))

	store.SetFilter(task.Filter{Status: task.StatusTodo, Priority: task.PriorityHigh})
	require.Equal(t, []string{"t1", "t2"}, ids(store.Filtered()))
	require.Equal(t, task.PriorityHigh, store.Filter().Priority)
}

func TestStore_ConcurrentMutationsLastWriteWins(t *testing.T) {
	ctx := context.Background()
	remote := &mocks.TaskRemote{}
	remote.On("GetProjectTasks", ctx, "p1").Return(task.OK([]task.Task{{ID: "t1", Status: task.StatusTodo}}))
	remote.On("UpdateTaskStatus", ctx, "t1", mock.Anything).Return(task.OK(&task.Task{ID: "t1", Status: task.StatusDone}))
	remote.On("AssignTask", ctx, "t1", "ben").Return(task.OK(&task.Task{ID: "t1", Status: task.StatusTodo, AssigneeID: "ben"}))

	store := task.NewStore(remote, nil)
	require.NoError(t, store.FetchProjectTasks(ctx, "p1"))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = store.UpdateTaskStatus(ctx, "t1", task.StatusDone)
	}()
	go func() {
		defer wg.Done()
		_, _ = store.AssignTask(ctx, "t1", "ben")
	}()
	wg.Wait()

	tasks := store.Tasks()
	require.Len(t, tasks, 1)
	landed := tasks[0]
	lastStatus := landed.Status == task.StatusDone && landed.AssigneeID == ""
	lastAssign := landed.Status == task.StatusTodo && landed.AssigneeID == "ben"
	require.True(t, lastStatus || lastAssign, "expected one whole response to win, got %+v", landed)
}
