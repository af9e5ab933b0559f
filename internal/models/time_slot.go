package models

// TimeSlot is a fixed daily interval during which lessons may be held.
// Times are zero-padded HH:MM strings so lexicographic comparison matches
// chronological order. Special slots are overflow/make-up periods excluded
// from automatic placement.
type TimeSlot struct {
	ID        string `db:"id" json:"id"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
	IsSpecial bool   `db:"is_special" json:"is_special"`
}
