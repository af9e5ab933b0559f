package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edusphere/timetable-api/internal/models"
)

// ClassroomRepository provides read access to rooms.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository creates a new classroom repository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

// ListAll returns all classrooms ordered by id, the documented tie-break for
// deterministic placement selection.
func (r *ClassroomRepository) ListAll(ctx context.Context) ([]models.Classroom, error) {
	const query = `SELECT id, name, capacity, created_at FROM classrooms ORDER BY id ASC`
	var rooms []models.Classroom
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list classrooms: %w", err)
	}
	return rooms, nil
}
