package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edusphere/timetable-api/internal/dto"
	"github.com/edusphere/timetable-api/internal/models"
	appErrors "github.com/edusphere/timetable-api/pkg/errors"
)

type lessonOccupancyReader interface {
	ListOverlapping(ctx context.Context, date time.Time, start, end string) ([]models.Lesson, error)
}

type teacherRoster interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type classroomRoster interface {
	ListAll(ctx context.Context) ([]models.Classroom, error)
}

type availabilityTimeline interface {
	ListCovering(ctx context.Context, day time.Time) ([]models.TeacherAvailability, error)
	CountByTeachers(ctx context.Context) (map[string]int, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherAvailability, error)
	Create(ctx context.Context, record *models.TeacherAvailability) error
}

const (
	cacheKeyTeachers   = "planner:teachers:active"
	cacheKeyClassrooms = "planner:classrooms"
)

// AvailabilityService answers "who is free" queries across the teacher and
// classroom pools for a given date and time window. Results are ordered by
// ascending id: the placement engine treats the first element as its pick, so
// the tie-break must stay stable.
type AvailabilityService struct {
	lessons    lessonOccupancyReader
	teachers   teacherRoster
	classrooms classroomRoster
	timeline   availabilityTimeline
	cache      *CacheService
	// allowOverride lets a covering no-reason "available" record override a
	// no-reason "unavailable" record for the same interval.
	allowOverride bool
	validate      *validator.Validate
	logger        *zap.Logger
}

// NewAvailabilityService wires the availability query dependencies.
func NewAvailabilityService(
	lessons lessonOccupancyReader,
	teachers teacherRoster,
	classrooms classroomRoster,
	timeline availabilityTimeline,
	cache *CacheService,
	allowOverride bool,
	logger *zap.Logger,
) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		lessons:       lessons,
		teachers:      teachers,
		classrooms:    classrooms,
		timeline:      timeline,
		cache:         cache,
		allowOverride: allowOverride,
		validate:      validator.New(),
		logger:        logger,
	}
}

// TeacherTimeline returns a teacher's declared availability windows.
func (s *AvailabilityService) TeacherTimeline(ctx context.Context, teacherID string) ([]models.TeacherAvailability, error) {
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("teacher %s not found", teacherID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	records, err := s.timeline.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability records")
	}
	if records == nil {
		records = []models.TeacherAvailability{}
	}
	return records, nil
}

// DeclareWindow records a new availability window for a teacher.
func (s *AvailabilityService) DeclareWindow(ctx context.Context, req *dto.DeclareAvailabilityRequest) (*models.TeacherAvailability, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid start date")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid end date")
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date must not precede start date")
	}

	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("teacher %s not found", req.TeacherID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	record := &models.TeacherAvailability{
		TeacherID: req.TeacherID,
		StartDate: start,
		EndDate:   end,
		Status:    models.AvailabilityStatus(req.Status),
		Reason:    req.Reason,
	}
	if err := s.timeline.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store availability record")
	}

	s.logger.Info("availability window declared",
		zap.String("teacher_id", req.TeacherID),
		zap.String("status", req.Status),
	)
	return record, nil
}

// FreeClassrooms returns rooms without an overlapping booking in
// [start, end) on the date. Overlay rows count as occupied, so dry-run
// candidates block resources exactly like committed lessons.
func (s *AvailabilityService) FreeClassrooms(ctx context.Context, date time.Time, start, end string, overlay []models.Lesson) ([]models.Classroom, error) {
	occupied, err := s.occupiedResources(ctx, date, start, end, overlay)
	if err != nil {
		return nil, err
	}

	var rooms []models.Classroom
	if !s.cache.Fetch(ctx, cacheKeyClassrooms, &rooms) {
		rooms, err = s.classrooms.ListAll(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classrooms")
		}
		s.cache.Store(ctx, cacheKeyClassrooms, rooms)
	}

	free := make([]models.Classroom, 0, len(rooms))
	for _, room := range rooms {
		if _, taken := occupied.rooms[room.ID]; taken {
			continue
		}
		free = append(free, room)
	}
	return free, nil
}

// FreeTeachers returns teachers not booked in the window and not excluded by
// their declared availability timeline. A teacher with no records at all is
// available by default.
func (s *AvailabilityService) FreeTeachers(ctx context.Context, date time.Time, start, end string, overlay []models.Lesson) ([]models.Teacher, error) {
	occupied, err := s.occupiedResources(ctx, date, start, end, overlay)
	if err != nil {
		return nil, err
	}

	var teachers []models.Teacher
	if !s.cache.Fetch(ctx, cacheKeyTeachers, &teachers) {
		teachers, err = s.teachers.ListActive(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
		}
		s.cache.Store(ctx, cacheKeyTeachers, teachers)
	}

	recordCounts, err := s.timeline.CountByTeachers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability records")
	}
	covering, err := s.timeline.ListCovering(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability records")
	}
	coveringByTeacher := make(map[string][]models.TeacherAvailability)
	for _, record := range covering {
		coveringByTeacher[record.TeacherID] = append(coveringByTeacher[record.TeacherID], record)
	}

	free := make([]models.Teacher, 0, len(teachers))
	for _, teacher := range teachers {
		if _, taken := occupied.teachers[teacher.ID]; taken {
			continue
		}
		if !s.teacherDeclaredFree(recordCounts[teacher.ID], coveringByTeacher[teacher.ID]) {
			continue
		}
		free = append(free, teacher)
	}
	return free, nil
}

// ClassBusy reports whether the class group already has any lesson
// overlapping the window, committed or in the overlay.
func (s *AvailabilityService) ClassBusy(ctx context.Context, classID string, date time.Time, start, end string, overlay []models.Lesson) (bool, error) {
	occupied, err := s.occupiedResources(ctx, date, start, end, overlay)
	if err != nil {
		return false, err
	}
	_, busy := occupied.classes[classID]
	return busy, nil
}

type occupancy struct {
	teachers map[string]struct{}
	rooms    map[string]struct{}
	classes  map[string]struct{}
}

func (s *AvailabilityService) occupiedResources(ctx context.Context, date time.Time, start, end string, overlay []models.Lesson) (*occupancy, error) {
	existing, err := s.lessons.ListOverlapping(ctx, date, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load overlapping lessons")
	}

	occ := &occupancy{
		teachers: make(map[string]struct{}),
		rooms:    make(map[string]struct{}),
		classes:  make(map[string]struct{}),
	}
	for _, lesson := range existing {
		occ.teachers[lesson.TeacherID] = struct{}{}
		occ.rooms[lesson.ClassroomID] = struct{}{}
		occ.classes[lesson.ClassID] = struct{}{}
	}
	for i := range overlay {
		lesson := &overlay[i]
		if !lesson.OverlapsInterval(date, start, end) {
			continue
		}
		occ.teachers[lesson.TeacherID] = struct{}{}
		occ.rooms[lesson.ClassroomID] = struct{}{}
		occ.classes[lesson.ClassID] = struct{}{}
	}
	return occ, nil
}

// teacherDeclaredFree applies the declared-availability policy. An
// unavailable record with no reason is an unconditional block; when
// allowOverride is set a covering no-reason available record wins instead.
// With records on file but none covering the day, the teacher is not free.
func (s *AvailabilityService) teacherDeclaredFree(totalRecords int, covering []models.TeacherAvailability) bool {
	if totalRecords == 0 {
		return true
	}

	blocked := false
	declaredAvailable := false
	for i := range covering {
		record := &covering[i]
		if record.Reason != nil {
			continue
		}
		switch record.Status {
		case models.AvailabilityStatusUnavailable:
			blocked = true
		case models.AvailabilityStatusAvailable:
			declaredAvailable = true
		}
	}

	if blocked {
		return s.allowOverride && declaredAvailable
	}
	return declaredAvailable
}
