package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edusphere/timetable-api/internal/dto"
	"github.com/edusphere/timetable-api/internal/models"
	"github.com/edusphere/timetable-api/internal/service"
	appErrors "github.com/edusphere/timetable-api/pkg/errors"
	"github.com/edusphere/timetable-api/pkg/response"
)

type availabilityQueries interface {
	FreeClassrooms(ctx context.Context, date time.Time, start, end string, overlay []models.Lesson) ([]models.Classroom, error)
	FreeTeachers(ctx context.Context, date time.Time, start, end string, overlay []models.Lesson) ([]models.Teacher, error)
	TeacherTimeline(ctx context.Context, teacherID string) ([]models.TeacherAvailability, error)
	DeclareWindow(ctx context.Context, req *dto.DeclareAvailabilityRequest) (*models.TeacherAvailability, error)
}

// AvailabilityHandler exposes free-resource lookups and teacher timelines.
type AvailabilityHandler struct {
	service availabilityQueries
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(svc *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

// FreeResources godoc
// @Summary List free teachers and classrooms for a window
// @Tags Availability
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param startTime query string true "Start time (HH:MM)"
// @Param endTime query string true "End time (HH:MM)"
// @Success 200 {object} response.Envelope
// @Router /availability/free [get]
func (h *AvailabilityHandler) FreeResources(c *gin.Context) {
	var query dto.FreeResourcesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability query"))
		return
	}
	date, err := time.Parse("2006-01-02", query.Date)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date"))
		return
	}
	if query.StartTime == "" || query.EndTime == "" || query.StartTime >= query.EndTime {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "start time must precede end time"))
		return
	}

	ctx := c.Request.Context()
	rooms, err := h.service.FreeClassrooms(ctx, date, query.StartTime, query.EndTime, nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	teachers, err := h.service.FreeTeachers(ctx, date, query.StartTime, query.EndTime, nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"teachers": teachers, "classrooms": rooms}, nil)
}

// TeacherTimeline godoc
// @Summary List a teacher's declared availability windows
// @Tags Availability
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/availabilities [get]
func (h *AvailabilityHandler) TeacherTimeline(c *gin.Context) {
	records, err := h.service.TeacherTimeline(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// DeclareWindow godoc
// @Summary Declare an availability window for a teacher
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body dto.DeclareAvailabilityRequest true "Availability window payload"
// @Success 201 {object} response.Envelope
// @Router /teachers/availabilities [post]
func (h *AvailabilityHandler) DeclareWindow(c *gin.Context) {
	var req dto.DeclareAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability payload"))
		return
	}
	record, err := h.service.DeclareWindow(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}
