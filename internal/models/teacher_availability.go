package models

import "time"

// AvailabilityStatus marks a declared window as available or unavailable.
type AvailabilityStatus string

const (
	AvailabilityStatusAvailable   AvailabilityStatus = "available"
	AvailabilityStatusUnavailable AvailabilityStatus = "unavailable"
)

// TeacherAvailability is a declared interval on a teacher's sparse timeline.
// A teacher with no records at all is available by default. An unavailable
// record with no reason is an unconditional block for its covered interval.
type TeacherAvailability struct {
	ID        string             `db:"id" json:"id"`
	TeacherID string             `db:"teacher_id" json:"teacher_id"`
	StartDate time.Time          `db:"start_date" json:"start_date"`
	EndDate   time.Time          `db:"end_date" json:"end_date"`
	Status    AvailabilityStatus `db:"status" json:"status"`
	Reason    *string            `db:"reason" json:"reason,omitempty"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
}

// Covers reports whether the record's date range contains the given day.
// Range bounds are inclusive dates.
func (r *TeacherAvailability) Covers(day time.Time) bool {
	d := day.Truncate(24 * time.Hour)
	return !d.Before(r.StartDate.Truncate(24*time.Hour)) && !d.After(r.EndDate.Truncate(24*time.Hour))
}
