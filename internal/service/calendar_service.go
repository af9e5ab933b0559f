package service

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/edusphere/timetable-api/pkg/config"
	appErrors "github.com/edusphere/timetable-api/pkg/errors"
)

// SchoolDay is one weekday of a resolved school week.
type SchoolDay struct {
	Date    time.Time `json:"date"`
	Holiday bool      `json:"holiday"`
}

// SchoolWeek maps a logical week number onto concrete Monday-Friday dates.
type SchoolWeek struct {
	Week    int          `json:"week"`
	Year    int          `json:"year"`
	ISOWeek int          `json:"isoWeek"`
	Days    [5]SchoolDay `json:"days"`
}

// CalendarService converts school-year week numbers into calendar dates and
// flags fixed holidays.
type CalendarService struct {
	firstSchoolWeek int
	startYear       int
	holidays        map[string]struct{}
	logger          *zap.Logger
}

// NewCalendarService builds a calendar resolver from planner configuration.
func NewCalendarService(cfg config.PlannerConfig, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	holidays := make(map[string]struct{}, len(cfg.Holidays))
	for _, h := range cfg.Holidays {
		holidays[h] = struct{}{}
	}
	first := cfg.FirstSchoolWeek
	if first < 1 || first > 52 {
		first = 36
	}
	return &CalendarService{
		firstSchoolWeek: first,
		startYear:       cfg.StartYear,
		holidays:        holidays,
		logger:          logger,
	}
}

// ResolveWeek maps a 1-based school week onto the Monday-Friday dates of the
// corresponding ISO week, carrying into the next calendar year when the sum
// runs past week 52.
func (s *CalendarService) ResolveWeek(week int) (*SchoolWeek, error) {
	if week < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("week number %d must be positive", week))
	}

	isoWeek := s.firstSchoolWeek + week - 1
	year := s.startYear
	for isoWeek > 52 {
		isoWeek -= 52
		year++
	}

	monday := mondayOfISOWeek(year, isoWeek)
	resolved := &SchoolWeek{Week: week, Year: year, ISOWeek: isoWeek}
	for i := 0; i < 5; i++ {
		date := monday.AddDate(0, 0, i)
		resolved.Days[i] = SchoolDay{Date: date, Holiday: s.IsHoliday(date)}
	}
	return resolved, nil
}

// SemesterForWeek returns 1 for the first half of the school year, 2 after.
func (s *CalendarService) SemesterForWeek(week int) int {
	if week <= 26 {
		return 1
	}
	return 2
}

// IsHoliday reports whether the date matches the fixed yearly holiday list.
func (s *CalendarService) IsHoliday(date time.Time) bool {
	_, ok := s.holidays[date.Format("01-02")]
	return ok
}

// mondayOfISOWeek returns the Monday of the given ISO week. January 4 always
// falls in ISO week 1.
func mondayOfISOWeek(year, week int) time.Time {
	anchor := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(anchor.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	firstMonday := anchor.AddDate(0, 0, 1-weekday)
	return firstMonday.AddDate(0, 0, (week-1)*7)
}
