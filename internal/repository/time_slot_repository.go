package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edusphere/timetable-api/internal/models"
)

// TimeSlotRepository provides read access to the fixed daily slot grid.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository creates a new time slot repository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// ListRegular returns non-special slots ordered by start time. Special slots
// are overflow periods and never auto-filled.
func (r *TimeSlotRepository) ListRegular(ctx context.Context) ([]models.TimeSlot, error) {
	const query = `SELECT id, start_time, end_time, is_special FROM time_slots WHERE is_special = false ORDER BY start_time ASC`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list regular time slots: %w", err)
	}
	return slots, nil
}

// ListAll returns every slot ordered by start time.
func (r *TimeSlotRepository) ListAll(ctx context.Context) ([]models.TimeSlot, error) {
	const query = `SELECT id, start_time, end_time, is_special FROM time_slots ORDER BY start_time ASC`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}
