package models

import (
	"time"

	"github.com/lib/pq"
)

// ClassGroup represents a cohort of students sharing a timetable.
type ClassGroup struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	TrackID   string    `db:"track_id" json:"track_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClassAvailability stores the school-year weeks during which a class group
// receives instruction. Week numbers are 1-based, counted from the
// school-year start.
type ClassAvailability struct {
	ClassID        string        `db:"class_id" json:"class_id"`
	AvailableWeeks pq.Int64Array `db:"available_weeks" json:"available_weeks"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// HasWeek reports whether the class receives instruction in the given week.
func (a *ClassAvailability) HasWeek(week int) bool {
	if a == nil {
		return false
	}
	for _, w := range a.AvailableWeeks {
		if int(w) == week {
			return true
		}
	}
	return false
}
