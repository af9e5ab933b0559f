package models

import "time"

// Lesson binds one class group, course, teacher and classroom to a time
// interval on a date. Manually entered and generated lessons occupy their
// interval identically for conflict purposes.
type Lesson struct {
	ID          string    `db:"id" json:"id"`
	ClassID     string    `db:"class_id" json:"class_id"`
	CourseID    string    `db:"course_id" json:"course_id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	ClassroomID string    `db:"classroom_id" json:"classroom_id"`
	Date        time.Time `db:"date" json:"date"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	Color       *string   `db:"color" json:"color,omitempty"`
	Generated   bool      `db:"generated" json:"generated"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// OverlapsInterval reports whether the lesson occupies any part of the
// half-open [start, end) window on the given date.
func (l *Lesson) OverlapsInterval(date time.Time, start, end string) bool {
	return SameDate(l.Date, date) && l.StartTime < end && l.EndTime > start
}

// SameDate compares two timestamps by calendar day.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// LessonDetail is a lesson joined with the display names of its course,
// teacher and classroom, for exports and listings.
type LessonDetail struct {
	ID            string    `db:"id" json:"id"`
	ClassID       string    `db:"class_id" json:"class_id"`
	Date          time.Time `db:"date" json:"date"`
	StartTime     string    `db:"start_time" json:"start_time"`
	EndTime       string    `db:"end_time" json:"end_time"`
	CourseName    string    `db:"course_name" json:"course_name"`
	TeacherName   string    `db:"teacher_name" json:"teacher_name"`
	ClassroomName string    `db:"classroom_name" json:"classroom_name"`
}

// LessonFilter narrows lesson listings.
type LessonFilter struct {
	ClassID   string
	TeacherID string
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}
