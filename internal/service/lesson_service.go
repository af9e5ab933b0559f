package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/edusphere/timetable-api/internal/models"
	appErrors "github.com/edusphere/timetable-api/pkg/errors"
)

type lessonStore interface {
	List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, int, error)
	Delete(ctx context.Context, id string) error
}

// LessonService exposes timetable reads and manual deletions.
type LessonService struct {
	repo   lessonStore
	logger *zap.Logger
}

// NewLessonService creates the lesson service.
func NewLessonService(repo lessonStore, logger *zap.Logger) *LessonService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LessonService{repo: repo, logger: logger}
}

// List returns lessons matching the filter with pagination metadata.
func (s *LessonService) List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 200 {
		filter.PageSize = 50
	}

	lessons, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
	}
	if lessons == nil {
		lessons = []models.Lesson{}
	}
	return lessons, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Delete removes a lesson by id.
func (s *LessonService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("lesson %s not found", id))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lesson")
	}
	s.logger.Info("lesson deleted", zap.String("lesson_id", id))
	return nil
}
