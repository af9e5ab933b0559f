package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edusphere/timetable-api/internal/dto"
	"github.com/edusphere/timetable-api/internal/models"
	"github.com/edusphere/timetable-api/internal/service"
	appErrors "github.com/edusphere/timetable-api/pkg/errors"
	"github.com/edusphere/timetable-api/pkg/response"
)

type classGroupManager interface {
	List(ctx context.Context) ([]models.ClassGroup, error)
	GetWeeks(ctx context.Context, classID string) ([]int, error)
	UpdateWeeks(ctx context.Context, classID string, req *dto.UpdateClassWeeksRequest) ([]int, error)
	GenerateAvailabilities(ctx context.Context, req *dto.GenerateAvailabilitiesRequest) (map[string][]int, error)
}

// ClassGroupHandler exposes class group and instruction-week endpoints.
type ClassGroupHandler struct {
	service classGroupManager
}

// NewClassGroupHandler constructs the handler.
func NewClassGroupHandler(svc *service.ClassGroupService) *ClassGroupHandler {
	return &ClassGroupHandler{service: svc}
}

// List godoc
// @Summary List class groups
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassGroupHandler) List(c *gin.Context) {
	groups, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// GetWeeks godoc
// @Summary Get a class group's instruction weeks
// @Tags Classes
// @Produce json
// @Param id path string true "Class group ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/weeks [get]
func (h *ClassGroupHandler) GetWeeks(c *gin.Context) {
	weeks, err := h.service.GetWeeks(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"weeks": weeks}, nil)
}

// UpdateWeeks godoc
// @Summary Replace a class group's instruction weeks
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class group ID"
// @Param payload body dto.UpdateClassWeeksRequest true "Weeks payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/weeks [put]
func (h *ClassGroupHandler) UpdateWeeks(c *gin.Context) {
	var req dto.UpdateClassWeeksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid weeks payload"))
		return
	}
	weeks, err := h.service.UpdateWeeks(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"weeks": weeks}, nil)
}

// GenerateAvailabilities godoc
// @Summary Assign instruction weeks to every class group on a rotating cycle
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body dto.GenerateAvailabilitiesRequest true "Cycle payload"
// @Success 200 {object} response.Envelope
// @Router /classes/availabilities/generate [post]
func (h *ClassGroupHandler) GenerateAvailabilities(c *gin.Context) {
	var req dto.GenerateAvailabilitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cycle payload"))
		return
	}
	assigned, err := h.service.GenerateAvailabilities(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assigned, nil)
}
