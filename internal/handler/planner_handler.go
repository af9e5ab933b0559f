package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/edusphere/timetable-api/internal/dto"
	"github.com/edusphere/timetable-api/internal/service"
	appErrors "github.com/edusphere/timetable-api/pkg/errors"
	"github.com/edusphere/timetable-api/pkg/jobs"
	"github.com/edusphere/timetable-api/pkg/response"
)

type planner interface {
	GeneratePlanning(ctx context.Context, req *dto.GeneratePlanningRequest) (*dto.PlanningResult, error)
	AcceptProposal(ctx context.Context, req *dto.AcceptProposalRequest) (*dto.PlanningResult, error)
	ValidateCandidates(ctx context.Context, req *dto.ValidateCandidatesRequest) (*dto.ValidateCandidatesResponse, error)
}

// PlannerHandler exposes the automatic placement endpoints.
type PlannerHandler struct {
	service    planner
	rangeQueue *jobs.Queue
}

// NewPlannerHandler constructs the handler. rangeQueue may be nil when bulk
// generation is disabled.
func NewPlannerHandler(svc *service.PlannerService, rangeQueue *jobs.Queue) *PlannerHandler {
	return &PlannerHandler{service: svc, rangeQueue: rangeQueue}
}

// Generate godoc
// @Summary Fill one school week for a class group
// @Description Places lessons for every free weekday slot. Mode "propose" returns a proposal without writing.
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.GeneratePlanningRequest true "Generate planning payload"
// @Success 200 {object} response.Envelope
// @Router /planning/generate [post]
func (h *PlannerHandler) Generate(c *gin.Context) {
	var req dto.GeneratePlanningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid planning payload"))
		return
	}
	result, err := h.service.GeneratePlanning(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// GenerateRange godoc
// @Summary Queue commit-mode planning for a range of weeks
// @Description Enqueues a background job that fills each week in order. Runs are serialized.
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.GenerateRangeRequest true "Generate range payload"
// @Success 202 {object} response.Envelope
// @Router /planning/generate-range [post]
func (h *PlannerHandler) GenerateRange(c *gin.Context) {
	var req dto.GenerateRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid range payload"))
		return
	}
	if req.ClassID == "" || req.FromWeek < 1 || req.ToWeek < req.FromWeek || req.ToWeek > 52 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid week range"))
		return
	}
	if h.rangeQueue == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "bulk generation is disabled"))
		return
	}

	jobID := uuid.NewString()
	if err := h.rangeQueue.Enqueue(jobs.Job{ID: jobID, Type: "planning.generate_range", Payload: req}); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to queue generation"))
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"jobId": jobID}, nil)
}

// AcceptProposal godoc
// @Summary Commit a previously proposed planning
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.AcceptProposalRequest true "Accept proposal payload"
// @Success 200 {object} response.Envelope
// @Router /planning/proposals/accept [post]
func (h *PlannerHandler) AcceptProposal(c *gin.Context) {
	var req dto.AcceptProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid proposal payload"))
		return
	}
	result, err := h.service.AcceptProposal(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ValidateCandidates godoc
// @Summary Validate externally produced lesson candidates
// @Description Checks each candidate against current bookings. With commit=true the candidates that fit are persisted.
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.ValidateCandidatesRequest true "Candidates payload"
// @Success 200 {object} response.Envelope
// @Router /planning/candidates/validate [post]
func (h *PlannerHandler) ValidateCandidates(c *gin.Context) {
	var req dto.ValidateCandidatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid candidates payload"))
		return
	}
	result, err := h.service.ValidateCandidates(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
