package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edusphere/timetable-api/internal/models"
	"github.com/edusphere/timetable-api/internal/service"
	appErrors "github.com/edusphere/timetable-api/pkg/errors"
	"github.com/edusphere/timetable-api/pkg/response"
)

type lessonReader interface {
	List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, *models.Pagination, error)
	Delete(ctx context.Context, id string) error
}

// LessonHandler exposes timetable reads and manual deletion.
type LessonHandler struct {
	service lessonReader
}

// NewLessonHandler constructs the handler.
func NewLessonHandler(svc *service.LessonService) *LessonHandler {
	return &LessonHandler{service: svc}
}

// List godoc
// @Summary List lessons
// @Tags Lessons
// @Produce json
// @Param classId query string false "Class group ID"
// @Param teacherId query string false "Teacher ID"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /lessons [get]
func (h *LessonHandler) List(c *gin.Context) {
	filter := models.LessonFilter{
		ClassID:   c.Query("classId"),
		TeacherID: c.Query("teacherId"),
	}
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid from date"))
			return
		}
		filter.From = &parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid to date"))
			return
		}
		filter.To = &parsed
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "50"))

	lessons, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, pagination)
}

// Delete godoc
// @Summary Delete a lesson
// @Tags Lessons
// @Param id path string true "Lesson ID"
// @Success 204
// @Router /lessons/{id} [delete]
func (h *LessonHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
