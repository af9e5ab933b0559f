package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edusphere/timetable-api/internal/models"
)

func TestLessonQuotaRoundsUp(t *testing.T) {
	quota := NewQuotaService(courseRepoStub{}, &lessonRepoStub{}, 3.5, zap.NewNop())

	assert.Equal(t, 1, quota.LessonQuota(&models.Course{HourlyVolume: 3.5}))
	assert.Equal(t, 1, quota.LessonQuota(&models.Course{HourlyVolume: 0.5}))
	assert.Equal(t, 2, quota.LessonQuota(&models.Course{HourlyVolume: 7}))
	assert.Equal(t, 3, quota.LessonQuota(&models.Course{HourlyVolume: 7.1}))
	assert.Equal(t, 10, quota.LessonQuota(&models.Course{HourlyVolume: 35}))
	assert.Equal(t, 0, quota.LessonQuota(&models.Course{HourlyVolume: 0}))
}

func TestCoursesNeedingSubtractsPlacedLessons(t *testing.T) {
	courses := courseRepoStub{items: []models.Course{
		{ID: "course-math", HourlyVolume: 7, Semester: 1, TrackID: "track-1"},
		{ID: "course-sci", HourlyVolume: 3.5, Semester: 1, TrackID: "track-1"},
		{ID: "course-other-track", HourlyVolume: 35, Semester: 1, TrackID: "track-2"},
		{ID: "course-other-sem", HourlyVolume: 35, Semester: 2, TrackID: "track-1"},
	}}
	lessons := &lessonRepoStub{items: []models.Lesson{
		{ID: "l1", ClassID: "class-1", CourseID: "course-sci", Date: time.Now()},
	}}
	quota := NewQuotaService(courses, lessons, 3.5, zap.NewNop())

	needs, err := quota.CoursesNeeding(context.Background(), &models.ClassGroup{ID: "class-1", TrackID: "track-1"}, 1, nil)
	require.NoError(t, err)

	require.Len(t, needs, 1, "fulfilled and off-track courses are excluded")
	assert.Equal(t, "course-math", needs[0].Course.ID)
	assert.Equal(t, 2, needs[0].Remaining)
}

func TestCoursesNeedingCountsOverlay(t *testing.T) {
	courses := courseRepoStub{items: []models.Course{
		{ID: "course-math", HourlyVolume: 7, Semester: 1, TrackID: "track-1"},
	}}
	quota := NewQuotaService(courses, &lessonRepoStub{}, 3.5, zap.NewNop())
	group := &models.ClassGroup{ID: "class-1", TrackID: "track-1"}

	overlay := []models.Lesson{
		{ClassID: "class-1", CourseID: "course-math"},
		{ClassID: "class-other", CourseID: "course-math"},
	}
	needs, err := quota.CoursesNeeding(context.Background(), group, 1, overlay)
	require.NoError(t, err)

	require.Len(t, needs, 1)
	assert.Equal(t, 1, needs[0].Remaining, "only the class's own overlay rows count")
}
