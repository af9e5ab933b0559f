package dto

import "github.com/edusphere/timetable-api/internal/models"

// PlacementMode selects whether placements are persisted or only proposed.
type PlacementMode string

const (
	ModeCommit  PlacementMode = "commit"
	ModePropose PlacementMode = "propose"
)

// GeneratePlanningRequest asks the planner to fill one school week for a class.
type GeneratePlanningRequest struct {
	ClassID string        `json:"classId" validate:"required"`
	Week    int           `json:"week" validate:"required,min=1,max=52"`
	Mode    PlacementMode `json:"mode" validate:"omitempty,oneof=commit propose"`
}

// SkippedSlot records one (date, slot) decision the planner could not fill.
type SkippedSlot struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	CourseID  string `json:"courseId,omitempty"`
	Reason    string `json:"reason"`
}

// PlanningResult summarises one placement run. The engine always returns a
// result summary; expected partial failure never surfaces as an error.
type PlanningResult struct {
	ClassID      string          `json:"classId"`
	Week         int             `json:"week"`
	Semester     int             `json:"semester"`
	Mode         PlacementMode   `json:"mode"`
	ProposalID   string          `json:"proposalId,omitempty"`
	Lessons      []models.Lesson `json:"lessons"`
	Skipped      []SkippedSlot   `json:"skipped"`
	PlacedCount  int             `json:"placedCount"`
	SkippedCount int             `json:"skippedCount"`
	NotScheduled bool            `json:"notScheduled"`
	Notice       string          `json:"notice,omitempty"`
}

// GenerateRangeRequest triggers sequential week-by-week commit generation.
type GenerateRangeRequest struct {
	ClassID  string `json:"classId" validate:"required"`
	FromWeek int    `json:"fromWeek" validate:"required,min=1,max=52"`
	ToWeek   int    `json:"toWeek" validate:"required,min=1,max=52,gtefield=FromWeek"`
}

// AcceptProposalRequest commits a previously proposed planning.
type AcceptProposalRequest struct {
	ProposalID string `json:"proposalId" validate:"required"`
}

// CandidateLesson is an externally produced placement (e.g. from the
// AI-suggestion workflow) awaiting validation against current bookings.
type CandidateLesson struct {
	ClassID     string `json:"classId" validate:"required"`
	CourseID    string `json:"courseId" validate:"required"`
	TeacherID   string `json:"teacherId" validate:"required"`
	ClassroomID string `json:"classroomId" validate:"required"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime   string `json:"startTime" validate:"required"`
	EndTime     string `json:"endTime" validate:"required"`
}

// ValidateCandidatesRequest carries a candidate list to validate and
// optionally merge into the timetable.
type ValidateCandidatesRequest struct {
	Candidates []CandidateLesson `json:"candidates" validate:"required,min=1,dive"`
	Commit     bool              `json:"commit"`
}

// CandidateVerdict reports the outcome for one candidate.
type CandidateVerdict struct {
	Candidate CandidateLesson `json:"candidate"`
	Accepted  bool            `json:"accepted"`
	Reason    string          `json:"reason,omitempty"`
}

// ValidateCandidatesResponse summarises a validation/merge run.
type ValidateCandidatesResponse struct {
	Accepted int                `json:"accepted"`
	Rejected int                `json:"rejected"`
	Verdicts []CandidateVerdict `json:"verdicts"`
}

// UpdateClassWeeksRequest replaces a class group's available weeks.
type UpdateClassWeeksRequest struct {
	Weeks []int `json:"weeks" validate:"required,dive,min=1,max=52"`
}

// GenerateAvailabilitiesRequest derives available weeks for every class group
// on a rotating cycle.
type GenerateAvailabilitiesRequest struct {
	Cycle int `json:"cycle" validate:"required,min=1,max=52"`
}
