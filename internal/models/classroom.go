package models

import "time"

// Classroom represents a bookable room. Capacity is informational only; the
// planner does not use it.
type Classroom struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Capacity  int       `db:"capacity" json:"capacity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
