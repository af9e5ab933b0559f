package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edusphere/timetable-api/internal/service"
	appErrors "github.com/edusphere/timetable-api/pkg/errors"
	"github.com/edusphere/timetable-api/pkg/response"
)

type weekExporter interface {
	WeekCSV(ctx context.Context, classID string, week int) ([]byte, string, error)
	WeekPDF(ctx context.Context, classID string, week int) ([]byte, string, error)
}

// ExportHandler streams weekly timetable exports.
type ExportHandler struct {
	service weekExporter
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// WeekExport godoc
// @Summary Export one class group's week as CSV or PDF
// @Tags Exports
// @Produce octet-stream
// @Param classId query string true "Class group ID"
// @Param week query int true "School week number"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /exports/planning [get]
func (h *ExportHandler) WeekExport(c *gin.Context) {
	classID := c.Query("classId")
	week, err := strconv.Atoi(c.Query("week"))
	if classID == "" || err != nil || week < 1 || week > 52 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "classId and week are required"))
		return
	}

	var (
		raw         []byte
		fileName    string
		contentType string
	)
	switch c.DefaultQuery("format", "csv") {
	case "csv":
		raw, fileName, err = h.service.WeekCSV(c.Request.Context(), classID, week)
		contentType = "text/csv"
	case "pdf":
		raw, fileName, err = h.service.WeekPDF(c.Request.Context(), classID, week)
		contentType = "application/pdf"
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, contentType, raw)
}
