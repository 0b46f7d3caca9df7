package activity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ganot/studyvault/internal/domain/activity"
	"github.com/ganot/studyvault/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestActivityService_LogAndList(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ActivityRepository{}
	entry := &activity.ActivityEntry{
		SubjectID:    "proj1",
		ActivityType: activity.TypeProjectCreated,
		Summary:      "created",
	}

	repo.On("Log", ctx, entry).Return(nil)
	repo.On("List", ctx, activity.ListActivityOptions{SubjectID: "proj1"}).Return([]activity.ActivityEntry{}, nil)

	svc := activity.NewService(repo, nil)
	require.NoError(t, svc.LogActivity(ctx, entry))
	require.False(t, entry.CreatedAt.IsZero())
	_, err := svc.GetRecentActivity(ctx, activity.ListActivityOptions{SubjectID: "proj1"})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestActivityService_LogValidation(t *testing.T) {
	svc := activity.NewService(&mocks.ActivityRepository{}, nil)
	require.ErrorIs(t, svc.LogActivity(context.Background(), nil), activity.ErrInvalidInput)
	require.ErrorIs(t, svc.LogActivity(context.Background(), &activity.ActivityEntry{SubjectID: "p1"}), activity.ErrInvalidInput)
}

func TestActivityService_RecordSwallowsErrors(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ActivityRepository{}
	repo.On("Log", ctx, mock.Anything).Return(errors.New("disk full"))

	svc := activity.NewService(repo, nil)
	svc.Record(ctx, activity.TypeStudyDeleted, "s1", nil, "deleted study")
	repo.AssertNumberOfCalls(t, "Log", 1)

	var nilSvc *activity.Service
	nilSvc.Record(ctx, activity.TypeStudyDeleted, "s1", nil, "ignored")
}
