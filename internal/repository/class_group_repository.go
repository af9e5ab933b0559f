package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/edusphere/timetable-api/internal/models"
)

// ClassGroupRepository provides persistence for class groups and their
// availability weeks.
type ClassGroupRepository struct {
	db *sqlx.DB
}

// NewClassGroupRepository creates a new class group repository.
func NewClassGroupRepository(db *sqlx.DB) *ClassGroupRepository {
	return &ClassGroupRepository{db: db}
}

// FindByID loads a class group by id.
func (r *ClassGroupRepository) FindByID(ctx context.Context, id string) (*models.ClassGroup, error) {
	const query = `SELECT id, name, track_id, created_at, updated_at FROM class_groups WHERE id = $1`
	var group models.ClassGroup
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// ListAll returns every class group ordered by id.
func (r *ClassGroupRepository) ListAll(ctx context.Context) ([]models.ClassGroup, error) {
	const query = `SELECT id, name, track_id, created_at, updated_at FROM class_groups ORDER BY id ASC`
	var groups []models.ClassGroup
	if err := r.db.SelectContext(ctx, &groups, query); err != nil {
		return nil, fmt.Errorf("list class groups: %w", err)
	}
	return groups, nil
}

// GetAvailability loads the availability record for a class group.
func (r *ClassGroupRepository) GetAvailability(ctx context.Context, classID string) (*models.ClassAvailability, error) {
	const query = `SELECT class_id, available_weeks, updated_at FROM class_availabilities WHERE class_id = $1`
	var availability models.ClassAvailability
	if err := r.db.GetContext(ctx, &availability, query, classID); err != nil {
		return nil, err
	}
	return &availability, nil
}

// UpsertAvailability replaces a class group's available-weeks list.
func (r *ClassGroupRepository) UpsertAvailability(ctx context.Context, classID string, weeks []int64) error {
	const query = `
INSERT INTO class_availabilities (class_id, available_weeks, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (class_id) DO UPDATE
SET available_weeks = EXCLUDED.available_weeks,
    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, classID, pq.Int64Array(weeks), time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert class availability: %w", err)
	}
	return nil
}
