package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edusphere/timetable-api/internal/models"
	appErrors "github.com/edusphere/timetable-api/pkg/errors"
)

type lessonStoreStub struct {
	items   []models.Lesson
	deleted []string
	missing bool
}

func (s *lessonStoreStub) List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, int, error) {
	return s.items, len(s.items), nil
}

func (s *lessonStoreStub) Delete(ctx context.Context, id string) error {
	if s.missing {
		return sql.ErrNoRows
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func TestLessonListClampsPagination(t *testing.T) {
	svc := NewLessonService(&lessonStoreStub{}, zap.NewNop())

	lessons, pagination, err := svc.List(context.Background(), models.LessonFilter{Page: -1, PageSize: 9000})
	require.NoError(t, err)

	assert.NotNil(t, lessons)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 50, pagination.PageSize)
}

func TestLessonDeleteMapsNotFound(t *testing.T) {
	svc := NewLessonService(&lessonStoreStub{missing: true}, zap.NewNop())

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestLessonDeleteDelegates(t *testing.T) {
	store := &lessonStoreStub{}
	svc := NewLessonService(store, zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "l1"))
	assert.Equal(t, []string{"l1"}, store.deleted)
}
