package models

import "time"

// Course represents a subject with a required instructional-hour quota.
type Course struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	HourlyVolume float64   `db:"hourly_volume" json:"hourly_volume"`
	Semester     int       `db:"semester" json:"semester"`
	TrackID      string    `db:"track_id" json:"track_id"`
	Color        *string   `db:"color" json:"color,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// CourseNeed pairs a course with the number of lessons still to be placed
// for a class group.
type CourseNeed struct {
	Course    Course `json:"course"`
	Remaining int    `json:"remaining"`
}
