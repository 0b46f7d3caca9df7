package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Service handles activity log operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new activity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// LogActivity logs an activity entry with the current timestamp if missing.
func (s *Service) LogActivity(ctx context.Context, entry *ActivityEntry) error {
	if entry == nil || entry.SubjectID == "" || entry.ActivityType == "" {
		return ErrInvalidInput
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("logging activity: %w", err)
	}
	return nil
}

// Record logs a mutation, reporting failures only through the logger.
func (s *Service) Record(ctx context.Context, kind ActivityType, subjectID string, parentID *string, summary string) {
	if s == nil {
		return
	}
	err := s.LogActivity(ctx, &ActivityEntry{
		SubjectID:    subjectID,
		ParentID:     parentID,
		ActivityType: kind,
		Summary:      summary,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("activity not recorded", "type", kind, "subject_id", subjectID, "error", err)
	}
}

// GetRecentActivity lists activity entries with filtering.
func (s *Service) GetRecentActivity(ctx context.Context, opts ListActivityOptions) ([]ActivityEntry, error) {
	return s.repo.List(ctx, opts)
}
