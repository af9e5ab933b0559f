package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edusphere/timetable-api/internal/models"
)

// TeacherAvailabilityRepository persists declared teacher availability windows.
type TeacherAvailabilityRepository struct {
	db *sqlx.DB
}

// NewTeacherAvailabilityRepository creates a new availability repository.
func NewTeacherAvailabilityRepository(db *sqlx.DB) *TeacherAvailabilityRepository {
	return &TeacherAvailabilityRepository{db: db}
}

const availabilityColumns = `id, teacher_id, start_date, end_date, status, reason, created_at`

// ListByTeacher returns a teacher's availability timeline.
func (r *TeacherAvailabilityRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherAvailability, error) {
	query := fmt.Sprintf(`SELECT %s FROM teacher_availabilities WHERE teacher_id = $1 ORDER BY start_date ASC`, availabilityColumns)
	var records []models.TeacherAvailability
	if err := r.db.SelectContext(ctx, &records, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher availabilities: %w", err)
	}
	return records, nil
}

// ListCovering returns every record whose date range contains the given day,
// across all teachers. The planner groups them per teacher in memory.
func (r *TeacherAvailabilityRepository) ListCovering(ctx context.Context, day time.Time) ([]models.TeacherAvailability, error) {
	query := fmt.Sprintf(`SELECT %s FROM teacher_availabilities WHERE start_date <= $1 AND end_date >= $1 ORDER BY teacher_id ASC, start_date ASC`, availabilityColumns)
	var records []models.TeacherAvailability
	if err := r.db.SelectContext(ctx, &records, query, dateOnly(day)); err != nil {
		return nil, fmt.Errorf("list covering availabilities: %w", err)
	}
	return records, nil
}

// CountByTeachers returns how many availability records each of the given
// teachers has, covering any date. Teachers with zero records are absent from
// the map and treated as available by default.
func (r *TeacherAvailabilityRepository) CountByTeachers(ctx context.Context) (map[string]int, error) {
	const query = `SELECT teacher_id, COUNT(*) AS record_count FROM teacher_availabilities GROUP BY teacher_id`
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count availabilities per teacher: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var teacherID string
		var count int
		if err := rows.Scan(&teacherID, &count); err != nil {
			return nil, fmt.Errorf("scan availability count: %w", err)
		}
		counts[teacherID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate availability counts: %w", err)
	}
	return counts, nil
}

// Create stores a new availability record.
func (r *TeacherAvailabilityRepository) Create(ctx context.Context, record *models.TeacherAvailability) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO teacher_availabilities (id, teacher_id, start_date, end_date, status, reason, created_at) VALUES (:id, :teacher_id, :start_date, :end_date, :status, :reason, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create teacher availability: %w", err)
	}
	return nil
}
