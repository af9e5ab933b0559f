package service

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/edusphere/timetable-api/internal/models"
	appErrors "github.com/edusphere/timetable-api/pkg/errors"
)

type courseCatalog interface {
	ListByTrackAndSemester(ctx context.Context, trackID string, semester int) ([]models.Course, error)
}

type lessonCounter interface {
	CountByClassPerCourse(ctx context.Context, classID string) (map[string]int, error)
}

// QuotaService computes how many lessons each course still needs for a class
// group. A course's quota is ceil(hourly volume / lesson hours); what remains
// is the quota minus the lessons already on the books, overlay included.
type QuotaService struct {
	courses     courseCatalog
	lessons     lessonCounter
	lessonHours float64
	logger      *zap.Logger
}

// NewQuotaService builds a quota calculator. lessonHours is the fixed length
// of one lesson in hours.
func NewQuotaService(courses courseCatalog, lessons lessonCounter, lessonHours float64, logger *zap.Logger) *QuotaService {
	if lessonHours <= 0 {
		lessonHours = 3.5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuotaService{courses: courses, lessons: lessons, lessonHours: lessonHours, logger: logger}
}

// LessonQuota returns the number of lessons required to cover a course's
// hourly volume, rounding up so partial hours still get a slot.
func (s *QuotaService) LessonQuota(course *models.Course) int {
	if course.HourlyVolume <= 0 {
		return 0
	}
	return int(math.Ceil(course.HourlyVolume / s.lessonHours))
}

// CoursesNeeding lists the class group's courses for the semester that still
// have lessons to place, ordered by ascending course id. Overlay lessons count
// toward the placed total so dry runs see their own candidates.
func (s *QuotaService) CoursesNeeding(ctx context.Context, group *models.ClassGroup, semester int, overlay []models.Lesson) ([]models.CourseNeed, error) {
	courses, err := s.courses.ListByTrackAndSemester(ctx, group.TrackID, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}

	placed, err := s.lessons.CountByClassPerCourse(ctx, group.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count placed lessons")
	}
	for i := range overlay {
		lesson := &overlay[i]
		if lesson.ClassID == group.ID {
			placed[lesson.CourseID]++
		}
	}

	needs := make([]models.CourseNeed, 0, len(courses))
	for _, course := range courses {
		remaining := s.LessonQuota(&course) - placed[course.ID]
		if remaining <= 0 {
			continue
		}
		needs = append(needs, models.CourseNeed{Course: course, Remaining: remaining})
	}
	return needs, nil
}
