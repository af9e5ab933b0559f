package dto

// DeclareAvailabilityRequest adds a window to a teacher's declared timeline.
type DeclareAvailabilityRequest struct {
	TeacherID string  `json:"teacherId" validate:"required"`
	StartDate string  `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string  `json:"endDate" validate:"required,datetime=2006-01-02"`
	Status    string  `json:"status" validate:"required,oneof=available unavailable"`
	Reason    *string `json:"reason,omitempty"`
}

// FreeResourcesQuery asks which teachers and classrooms are free for a window.
type FreeResourcesQuery struct {
	Date      string `form:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `form:"startTime" validate:"required"`
	EndTime   string `form:"endTime" validate:"required"`
}
