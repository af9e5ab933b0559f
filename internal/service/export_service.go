package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/edusphere/timetable-api/internal/models"
	appErrors "github.com/edusphere/timetable-api/pkg/errors"
	"github.com/edusphere/timetable-api/pkg/export"
)

type detailedLessonReader interface {
	ListDetailedByClassBetween(ctx context.Context, classID string, from, to time.Time) ([]models.LessonDetail, error)
}

// ExportService renders one class group's weekly timetable as CSV or PDF.
type ExportService struct {
	lessons     detailedLessonReader
	classGroups classGroupReader
	calendar    *CalendarService
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	enabled     bool
	logger      *zap.Logger
}

// NewExportService creates the export service.
func NewExportService(
	lessons detailedLessonReader,
	classGroups classGroupReader,
	calendar *CalendarService,
	csv *export.CSVExporter,
	pdf *export.PDFExporter,
	enabled bool,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		lessons:     lessons,
		classGroups: classGroups,
		calendar:    calendar,
		csv:         csv,
		pdf:         pdf,
		enabled:     enabled,
		logger:      logger,
	}
}

// WeekCSV renders the week's timetable as CSV. Returns the bytes and a
// suggested file name.
func (s *ExportService) WeekCSV(ctx context.Context, classID string, week int) ([]byte, string, error) {
	group, data, err := s.weekDataset(ctx, classID, week)
	if err != nil {
		return nil, "", err
	}
	raw, err := s.csv.Render(*data)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
	}
	return raw, exportFileName(group.Name, week, "csv"), nil
}

// WeekPDF renders the week's timetable as a tabular PDF.
func (s *ExportService) WeekPDF(ctx context.Context, classID string, week int) ([]byte, string, error) {
	group, data, err := s.weekDataset(ctx, classID, week)
	if err != nil {
		return nil, "", err
	}
	title := fmt.Sprintf("%s - week %d", group.Name, week)
	raw, err := s.pdf.Render(*data, title)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
	}
	return raw, exportFileName(group.Name, week, "pdf"), nil
}

func (s *ExportService) weekDataset(ctx context.Context, classID string, week int) (*models.ClassGroup, *export.Dataset, error) {
	if !s.enabled {
		return nil, nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "exports are disabled")
	}

	group, err := s.classGroups.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("class group %s not found", classID))
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class group")
	}

	resolved, err := s.calendar.ResolveWeek(week)
	if err != nil {
		return nil, nil, err
	}

	details, err := s.lessons.ListDetailedByClassBetween(ctx, classID, resolved.Days[0].Date, resolved.Days[4].Date)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lessons for export")
	}

	data := &export.Dataset{
		Headers: []string{"Date", "Start", "End", "Course", "Teacher", "Classroom"},
		Rows:    make([]map[string]string, 0, len(details)),
	}
	for _, d := range details {
		data.Rows = append(data.Rows, map[string]string{
			"Date":      d.Date.Format("2006-01-02"),
			"Start":     d.StartTime,
			"End":       d.EndTime,
			"Course":    d.CourseName,
			"Teacher":   d.TeacherName,
			"Classroom": d.ClassroomName,
		})
	}
	return group, data, nil
}

func exportFileName(groupName string, week int, ext string) string {
	return fmt.Sprintf("timetable_%s_week%d.%s", groupName, week, ext)
}
