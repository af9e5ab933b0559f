package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edusphere/timetable-api/internal/models"
)

// LessonRepository provides persistence for lessons.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository creates a new lesson repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

func (r *LessonRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

const lessonColumns = `id, class_id, course_id, teacher_id, classroom_id, date, start_time, end_time, color, generated, created_at, updated_at`

// ListOverlapping returns lessons on the given date whose interval overlaps
// the half-open [start, end) window. Overlap test: start_time < end AND
// end_time > start.
func (r *LessonRepository) ListOverlapping(ctx context.Context, date time.Time, start, end string) ([]models.Lesson, error) {
	query := fmt.Sprintf(`SELECT %s FROM lessons WHERE date = $1 AND start_time < $2 AND end_time > $3`, lessonColumns)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, dateOnly(date), end, start); err != nil {
		return nil, fmt.Errorf("list overlapping lessons: %w", err)
	}
	return lessons, nil
}

// ExistsForClassSlot reports whether a lesson already occupies the exact
// (class, date, start, end) interval. Used for idempotent re-runs.
func (r *LessonRepository) ExistsForClassSlot(ctx context.Context, exec sqlx.ExtContext, classID string, date time.Time, start, end string) (bool, error) {
	const query = `SELECT COUNT(*) FROM lessons WHERE class_id = $1 AND date = $2 AND start_time = $3 AND end_time = $4`
	var count int
	row := r.exec(exec).QueryRowxContext(ctx, query, classID, dateOnly(date), start, end)
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("check existing lesson: %w", err)
	}
	return count > 0, nil
}

// CountByClassPerCourse returns the number of lessons already placed for each
// course of a class group.
func (r *LessonRepository) CountByClassPerCourse(ctx context.Context, classID string) (map[string]int, error) {
	const query = `SELECT course_id, COUNT(*) AS lesson_count FROM lessons WHERE class_id = $1 GROUP BY course_id`
	rows, err := r.db.QueryxContext(ctx, query, classID)
	if err != nil {
		return nil, fmt.Errorf("count lessons per course: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var courseID string
		var count int
		if err := rows.Scan(&courseID, &count); err != nil {
			return nil, fmt.Errorf("scan lesson count: %w", err)
		}
		counts[courseID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lesson counts: %w", err)
	}
	return counts, nil
}

// ListByClassBetween returns a class group's lessons in [from, to] ordered by
// date and start time.
func (r *LessonRepository) ListByClassBetween(ctx context.Context, classID string, from, to time.Time) ([]models.Lesson, error) {
	query := fmt.Sprintf(`SELECT %s FROM lessons WHERE class_id = $1 AND date >= $2 AND date <= $3 ORDER BY date ASC, start_time ASC`, lessonColumns)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, classID, dateOnly(from), dateOnly(to)); err != nil {
		return nil, fmt.Errorf("list lessons by class: %w", err)
	}
	return lessons, nil
}

// Create stores a new lesson record, optionally inside a caller transaction.
func (r *LessonRepository) Create(ctx context.Context, exec sqlx.ExtContext, lesson *models.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = now
	}
	lesson.UpdatedAt = now
	lesson.Date = dateOnly(lesson.Date)

	const query = `INSERT INTO lessons (id, class_id, course_id, teacher_id, classroom_id, date, start_time, end_time, color, generated, created_at, updated_at) VALUES (:id, :class_id, :course_id, :teacher_id, :classroom_id, :date, :start_time, :end_time, :color, :generated, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, lesson); err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

// List returns lessons matching the filter plus the unpaged total count.
func (r *LessonRepository) List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, int, error) {
	where := ""
	args := []interface{}{}
	appendCond := func(cond string, value interface{}) {
		args = append(args, value)
		clause := fmt.Sprintf(cond, len(args))
		if where == "" {
			where = " WHERE " + clause
			return
		}
		where += " AND " + clause
	}

	if filter.ClassID != "" {
		appendCond("class_id = $%d", filter.ClassID)
	}
	if filter.TeacherID != "" {
		appendCond("teacher_id = $%d", filter.TeacherID)
	}
	if filter.From != nil {
		appendCond("date >= $%d", dateOnly(*filter.From))
	}
	if filter.To != nil {
		appendCond("date <= $%d", dateOnly(*filter.To))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM lessons` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count lessons: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	args = append(args, pageSize, (page-1)*pageSize)
	query := fmt.Sprintf(`SELECT %s FROM lessons%s ORDER BY date ASC, start_time ASC LIMIT $%d OFFSET $%d`,
		lessonColumns, where, len(args)-1, len(args))

	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, total, nil
}

// ListDetailedByClassBetween returns a class group's lessons in [from, to]
// with course, teacher and classroom names resolved, ordered by date and
// start time. Used by the export surface.
func (r *LessonRepository) ListDetailedByClassBetween(ctx context.Context, classID string, from, to time.Time) ([]models.LessonDetail, error) {
	const query = `
SELECT l.id, l.class_id, l.date, l.start_time, l.end_time,
       c.name AS course_name, t.full_name AS teacher_name, r.name AS classroom_name
FROM lessons l
JOIN courses c ON c.id = l.course_id
JOIN teachers t ON t.id = l.teacher_id
JOIN classrooms r ON r.id = l.classroom_id
WHERE l.class_id = $1 AND l.date >= $2 AND l.date <= $3
ORDER BY l.date ASC, l.start_time ASC`
	var details []models.LessonDetail
	if err := r.db.SelectContext(ctx, &details, query, classID, dateOnly(from), dateOnly(to)); err != nil {
		return nil, fmt.Errorf("list detailed lessons: %w", err)
	}
	return details, nil
}

// Delete removes a lesson by id. Returns sql.ErrNoRows when nothing matched.
func (r *LessonRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
