package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListByTrackAndSemester(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewCourseRepository(db)

	mock.ExpectQuery(`SELECT .* FROM courses WHERE track_id = \$1 AND semester = \$2 ORDER BY id ASC`).
		WithArgs("track-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "hourly_volume", "semester", "track_id", "color", "created_at", "updated_at",
		}).
			AddRow("course-1", "Maths", 35.0, 1, "track-1", nil, time.Now(), time.Now()).
			AddRow("course-2", "Science", 17.5, 1, "track-1", "#ff0000", time.Now(), time.Now()))

	courses, err := repo.ListByTrackAndSemester(context.Background(), "track-1", 1)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, 35.0, courses[0].HourlyVolume)
	require.NotNil(t, courses[1].Color)
	assert.Equal(t, "#ff0000", *courses[1].Color)
	require.NoError(t, mock.ExpectationsWereMet())
}
