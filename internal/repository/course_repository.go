package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edusphere/timetable-api/internal/models"
)

// CourseRepository provides read access to courses. Courses are maintained by
// administrative tooling; the planner only reads them.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `id, name, hourly_volume, semester, track_id, color, created_at, updated_at`

// ListByTrackAndSemester returns courses for a curriculum track and semester
// ordered by id for deterministic candidate selection.
func (r *CourseRepository) ListByTrackAndSemester(ctx context.Context, trackID string, semester int) ([]models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE track_id = $1 AND semester = $2 ORDER BY id ASC`, courseColumns)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, trackID, semester); err != nil {
		return nil, fmt.Errorf("list courses by track and semester: %w", err)
	}
	return courses, nil
}

// FindByID loads a course by id.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE id = $1`, courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}
