package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/edusphere/timetable-api/internal/dto"
	"github.com/edusphere/timetable-api/internal/models"
	"github.com/edusphere/timetable-api/pkg/config"
	appErrors "github.com/edusphere/timetable-api/pkg/errors"
)

const (
	skipReasonNoCourse    = "no course requires scheduling"
	skipReasonNoClassroom = "no classroom available"
	skipReasonNoTeacher   = "no teacher available"
	skipReasonClassBusy   = "class is busy"
	skipReasonPersist     = "failed to persist lesson"
	skipReasonStore       = "failed to load schedule data"
)

type classGroupReader interface {
	FindByID(ctx context.Context, id string) (*models.ClassGroup, error)
	GetAvailability(ctx context.Context, classID string) (*models.ClassAvailability, error)
}

type slotGrid interface {
	ListRegular(ctx context.Context) ([]models.TimeSlot, error)
}

type lessonWriter interface {
	ExistsForClassSlot(ctx context.Context, exec sqlx.ExtContext, classID string, date time.Time, start, end string) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, lesson *models.Lesson) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// CourseSelector picks up to n courses to attempt for one slot from the
// remaining needs. The default selector shuffles so repeated runs spread
// courses across the week instead of front-loading the catalog order.
type CourseSelector func(needs []models.CourseNeed, n int) []models.CourseNeed

func defaultCourseSelector(needs []models.CourseNeed, n int) []models.CourseNeed {
	picked := make([]models.CourseNeed, len(needs))
	copy(picked, needs)
	rand.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	if len(picked) > n {
		picked = picked[:n]
	}
	return picked
}

// PlannerService fills school weeks with lessons. For each weekday and each
// regular slot it attempts a small number of candidate courses, books the
// first free classroom and teacher, and either persists the lesson or
// accumulates it in a proposal. Resource exhaustion is an expected outcome
// reported per slot, never an error.
type PlannerService struct {
	calendar     *CalendarService
	availability *AvailabilityService
	quota        *QuotaService
	classGroups  classGroupReader
	slots        slotGrid
	lessons      lessonWriter
	tx           txProvider
	proposals    *proposalStore
	metrics      *MetricsService
	validate     *validator.Validate
	selector     CourseSelector
	perSlot      int
	logger       *zap.Logger
}

// NewPlannerService wires the placement engine.
func NewPlannerService(
	calendar *CalendarService,
	availability *AvailabilityService,
	quota *QuotaService,
	classGroups classGroupReader,
	slots slotGrid,
	lessons lessonWriter,
	tx txProvider,
	metrics *MetricsService,
	cfg config.PlannerConfig,
	logger *zap.Logger,
) *PlannerService {
	perSlot := cfg.CoursesPerSlot
	if perSlot < 1 {
		perSlot = 2
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlannerService{
		calendar:     calendar,
		availability: availability,
		quota:        quota,
		classGroups:  classGroups,
		slots:        slots,
		lessons:      lessons,
		tx:           tx,
		proposals:    newProposalStore(cfg.ProposalTTL),
		metrics:      metrics,
		validate:     validator.New(),
		selector:     defaultCourseSelector,
		perSlot:      perSlot,
		logger:       logger,
	}
}

// SetCourseSelector replaces the slot course selector. Nil restores the
// default shuffle.
func (s *PlannerService) SetCourseSelector(selector CourseSelector) {
	if selector == nil {
		selector = defaultCourseSelector
	}
	s.selector = selector
}

// GeneratePlanning fills one school week for a class group. In commit mode
// each placement is persisted in its own transaction; in propose mode the
// candidates are held in the proposal store and nothing is written.
func (s *PlannerService) GeneratePlanning(ctx context.Context, req *dto.GeneratePlanningRequest) (*dto.PlanningResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	mode := req.Mode
	if mode == "" {
		mode = dto.ModeCommit
	}

	started := time.Now()
	defer func() {
		s.metrics.ObservePlanningRun(time.Since(started))
	}()

	group, err := s.classGroups.FindByID(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("class group %s not found", req.ClassID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class group")
	}

	semester := s.calendar.SemesterForWeek(req.Week)
	result := &dto.PlanningResult{
		ClassID:  group.ID,
		Week:     req.Week,
		Semester: semester,
		Mode:     mode,
		Lessons:  []models.Lesson{},
		Skipped:  []dto.SkippedSlot{},
	}

	scheduled, err := s.classScheduledInWeek(ctx, group.ID, req.Week)
	if err != nil {
		return nil, err
	}
	if !scheduled {
		result.NotScheduled = true
		result.Notice = fmt.Sprintf("class group %s is not scheduled in week %d", group.Name, req.Week)
		return result, nil
	}

	week, err := s.calendar.ResolveWeek(req.Week)
	if err != nil {
		return nil, err
	}

	slots, err := s.slots.ListRegular(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slots")
	}

	var overlay []models.Lesson
	needs, err := s.quota.CoursesNeeding(ctx, group, semester, overlay)
	if err != nil {
		return nil, err
	}

	for _, day := range week.Days {
		if day.Holiday {
			continue
		}
		for _, slot := range slots {
			placed, skips := s.fillSlot(ctx, group, mode, day.Date, slot, needs, &overlay)
			for _, skip := range skips {
				result.Skipped = append(result.Skipped, skip)
				s.metrics.RecordSlotSkipped(skip.Reason)
			}
			if placed != nil {
				result.Lessons = append(result.Lessons, *placed)
				s.metrics.RecordLessonPlaced(string(mode))
				decrementNeed(needs, placed.CourseID)
			}
		}
	}

	result.PlacedCount = len(result.Lessons)
	result.SkippedCount = len(result.Skipped)

	if mode == dto.ModePropose {
		p := s.proposals.Put(group.ID, req.Week, semester, overlay)
		result.ProposalID = p.ID
	}

	s.logger.Info("planning run finished",
		zap.String("class_id", group.ID),
		zap.Int("week", req.Week),
		zap.String("mode", string(mode)),
		zap.Int("placed", result.PlacedCount),
		zap.Int("skipped", result.SkippedCount),
	)
	return result, nil
}

// fillSlot attempts one (date, slot) decision. It returns the placed lesson
// when one candidate course fits, plus the skip records for candidates that
// did not. A slot already holding the exact interval for the class is left
// untouched with no record. A store failure during any check abandons the
// slot with a skip record; the run continues with the next slot.
func (s *PlannerService) fillSlot(
	ctx context.Context,
	group *models.ClassGroup,
	mode dto.PlacementMode,
	date time.Time,
	slot models.TimeSlot,
	needs []models.CourseNeed,
	overlay *[]models.Lesson,
) (*models.Lesson, []dto.SkippedSlot) {
	dup, err := s.slotTaken(ctx, group.ID, date, slot, *overlay)
	if err != nil {
		s.logger.Warn("slot lookup failed",
			zap.String("class_id", group.ID),
			zap.Time("date", date),
			zap.Error(err),
		)
		return nil, []dto.SkippedSlot{skippedSlot(date, slot, "", skipReasonStore)}
	}
	if dup {
		return nil, nil
	}

	remaining := needsWithRemaining(needs)
	if len(remaining) == 0 {
		return nil, []dto.SkippedSlot{{
			Date:      date.Format("2006-01-02"),
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			Reason:    skipReasonNoCourse,
		}}
	}

	var skips []dto.SkippedSlot
	for _, need := range s.selector(remaining, s.perSlot) {
		course := need.Course

		rooms, err := s.availability.FreeClassrooms(ctx, date, slot.StartTime, slot.EndTime, *overlay)
		if err != nil {
			s.logger.Warn("availability lookup failed",
				zap.String("class_id", group.ID),
				zap.Time("date", date),
				zap.Error(err),
			)
			skips = append(skips, skippedSlot(date, slot, course.ID, skipReasonStore))
			return nil, skips
		}
		if len(rooms) == 0 {
			skips = append(skips, skippedSlot(date, slot, course.ID, skipReasonNoClassroom))
			continue
		}

		teachers, err := s.availability.FreeTeachers(ctx, date, slot.StartTime, slot.EndTime, *overlay)
		if err != nil {
			s.logger.Warn("availability lookup failed",
				zap.String("class_id", group.ID),
				zap.Time("date", date),
				zap.Error(err),
			)
			skips = append(skips, skippedSlot(date, slot, course.ID, skipReasonStore))
			return nil, skips
		}
		if len(teachers) == 0 {
			skips = append(skips, skippedSlot(date, slot, course.ID, skipReasonNoTeacher))
			continue
		}

		lesson := models.Lesson{
			ClassID:     group.ID,
			CourseID:    course.ID,
			TeacherID:   teachers[0].ID,
			ClassroomID: rooms[0].ID,
			Date:        date,
			StartTime:   slot.StartTime,
			EndTime:     slot.EndTime,
			Color:       course.Color,
			Generated:   true,
		}

		if mode == dto.ModePropose {
			*overlay = append(*overlay, lesson)
			return &lesson, skips
		}

		persisted, err := s.persistLesson(ctx, &lesson)
		if err != nil {
			s.logger.Warn("lesson persist failed",
				zap.String("class_id", group.ID),
				zap.String("course_id", course.ID),
				zap.Time("date", date),
				zap.Error(err),
			)
			skips = append(skips, skippedSlot(date, slot, course.ID, skipReasonPersist))
			return nil, skips
		}
		if !persisted {
			// Raced with a concurrent writer for the exact interval.
			return nil, skips
		}
		return &lesson, skips
	}
	return nil, skips
}

// persistLesson writes one lesson in its own transaction, rechecking the
// exact-interval duplicate inside the transaction. Returns false when the
// slot turned out to be taken.
func (s *PlannerService) persistLesson(ctx context.Context, lesson *models.Lesson) (bool, error) {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}

	exists, err := s.lessons.ExistsForClassSlot(ctx, tx, lesson.ClassID, lesson.Date, lesson.StartTime, lesson.EndTime)
	if err != nil {
		_ = tx.Rollback()
		return false, err
	}
	if exists {
		_ = tx.Rollback()
		return false, nil
	}

	if err := s.lessons.Create(ctx, tx, lesson); err != nil {
		_ = tx.Rollback()
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// slotTaken reports whether the class already holds the exact slot interval,
// in storage or in the run's overlay.
func (s *PlannerService) slotTaken(ctx context.Context, classID string, date time.Time, slot models.TimeSlot, overlay []models.Lesson) (bool, error) {
	for i := range overlay {
		l := &overlay[i]
		if l.ClassID == classID && models.SameDate(l.Date, date) && l.StartTime == slot.StartTime && l.EndTime == slot.EndTime {
			return true, nil
		}
	}
	exists, err := s.lessons.ExistsForClassSlot(ctx, nil, classID, date, slot.StartTime, slot.EndTime)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing lesson")
	}
	return exists, nil
}

// classScheduledInWeek reports whether the class group receives instruction
// in the given logical week. A class with no availability record is never
// scheduled automatically.
func (s *PlannerService) classScheduledInWeek(ctx context.Context, classID string, week int) (bool, error) {
	availability, err := s.classGroups.GetAvailability(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class availability")
	}
	return availability.HasWeek(week), nil
}

// GenerateRange runs commit-mode planning for each week in [fromWeek, toWeek]
// in order. Week results are collected even when individual weeks place
// nothing.
func (s *PlannerService) GenerateRange(ctx context.Context, req *dto.GenerateRangeRequest) ([]dto.PlanningResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	results := make([]dto.PlanningResult, 0, req.ToWeek-req.FromWeek+1)
	for week := req.FromWeek; week <= req.ToWeek; week++ {
		result, err := s.GeneratePlanning(ctx, &dto.GeneratePlanningRequest{
			ClassID: req.ClassID,
			Week:    week,
			Mode:    dto.ModeCommit,
		})
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	return results, nil
}

// AcceptProposal commits a previously proposed planning. Every candidate is
// re-validated against current bookings; candidates that no longer fit are
// reported as skipped.
func (s *PlannerService) AcceptProposal(ctx context.Context, req *dto.AcceptProposalRequest) (*dto.PlanningResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	p, ok := s.proposals.Take(req.ProposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("proposal %s is unknown or expired", req.ProposalID))
	}

	result := &dto.PlanningResult{
		ClassID:  p.ClassID,
		Week:     p.Week,
		Semester: p.Semester,
		Mode:     dto.ModeCommit,
		Lessons:  []models.Lesson{},
		Skipped:  []dto.SkippedSlot{},
	}

	var accepted []models.Lesson
	for i := range p.Lessons {
		lesson := p.Lessons[i]
		lesson.ID = ""

		reason, err := s.candidateConflict(ctx, &lesson, accepted)
		if err != nil {
			s.logger.Warn("candidate check failed", zap.String("class_id", lesson.ClassID), zap.Error(err))
			reason = skipReasonStore
		}
		if reason != "" {
			result.Skipped = append(result.Skipped, dto.SkippedSlot{
				Date:      lesson.Date.Format("2006-01-02"),
				StartTime: lesson.StartTime,
				EndTime:   lesson.EndTime,
				CourseID:  lesson.CourseID,
				Reason:    reason,
			})
			s.metrics.RecordSlotSkipped(reason)
			continue
		}

		persisted, err := s.persistLesson(ctx, &lesson)
		if err != nil || !persisted {
			if err != nil {
				s.logger.Warn("proposal commit failed", zap.String("class_id", lesson.ClassID), zap.Error(err))
			}
			result.Skipped = append(result.Skipped, dto.SkippedSlot{
				Date:      lesson.Date.Format("2006-01-02"),
				StartTime: lesson.StartTime,
				EndTime:   lesson.EndTime,
				CourseID:  lesson.CourseID,
				Reason:    skipReasonPersist,
			})
			s.metrics.RecordSlotSkipped(skipReasonPersist)
			continue
		}

		accepted = append(accepted, lesson)
		result.Lessons = append(result.Lessons, lesson)
		s.metrics.RecordLessonPlaced(string(dto.ModeCommit))
	}

	result.PlacedCount = len(result.Lessons)
	result.SkippedCount = len(result.Skipped)
	return result, nil
}

// ValidateCandidates checks externally produced placements against current
// bookings, optionally committing the ones that fit. Accepted candidates act
// as an overlay for the rest of the list so the batch stays self-consistent.
func (s *PlannerService) ValidateCandidates(ctx context.Context, req *dto.ValidateCandidatesRequest) (*dto.ValidateCandidatesResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	resp := &dto.ValidateCandidatesResponse{Verdicts: make([]dto.CandidateVerdict, 0, len(req.Candidates))}
	var accepted []models.Lesson

	for _, candidate := range req.Candidates {
		date, err := time.Parse("2006-01-02", candidate.Date)
		if err != nil {
			resp.Rejected++
			resp.Verdicts = append(resp.Verdicts, dto.CandidateVerdict{Candidate: candidate, Reason: "invalid date"})
			continue
		}
		if candidate.StartTime >= candidate.EndTime {
			resp.Rejected++
			resp.Verdicts = append(resp.Verdicts, dto.CandidateVerdict{Candidate: candidate, Reason: "start time must precede end time"})
			continue
		}

		lesson := models.Lesson{
			ClassID:     candidate.ClassID,
			CourseID:    candidate.CourseID,
			TeacherID:   candidate.TeacherID,
			ClassroomID: candidate.ClassroomID,
			Date:        date,
			StartTime:   candidate.StartTime,
			EndTime:     candidate.EndTime,
			Generated:   true,
		}

		reason, err := s.candidateConflict(ctx, &lesson, accepted)
		if err != nil {
			return nil, err
		}
		if reason != "" {
			resp.Rejected++
			resp.Verdicts = append(resp.Verdicts, dto.CandidateVerdict{Candidate: candidate, Reason: reason})
			continue
		}

		if req.Commit {
			persisted, err := s.persistLesson(ctx, &lesson)
			if err != nil {
				s.logger.Warn("candidate commit failed", zap.String("class_id", lesson.ClassID), zap.Error(err))
				resp.Rejected++
				resp.Verdicts = append(resp.Verdicts, dto.CandidateVerdict{Candidate: candidate, Reason: skipReasonPersist})
				continue
			}
			if !persisted {
				resp.Rejected++
				resp.Verdicts = append(resp.Verdicts, dto.CandidateVerdict{Candidate: candidate, Reason: skipReasonClassBusy})
				continue
			}
		}

		accepted = append(accepted, lesson)
		resp.Accepted++
		resp.Verdicts = append(resp.Verdicts, dto.CandidateVerdict{Candidate: candidate, Accepted: true})
	}
	return resp, nil
}

// candidateConflict checks one candidate against current bookings plus the
// accepted overlay. An empty reason means the candidate fits.
func (s *PlannerService) candidateConflict(ctx context.Context, lesson *models.Lesson, overlay []models.Lesson) (string, error) {
	busy, err := s.availability.ClassBusy(ctx, lesson.ClassID, lesson.Date, lesson.StartTime, lesson.EndTime, overlay)
	if err != nil {
		return "", err
	}
	if busy {
		return skipReasonClassBusy, nil
	}

	rooms, err := s.availability.FreeClassrooms(ctx, lesson.Date, lesson.StartTime, lesson.EndTime, overlay)
	if err != nil {
		return "", err
	}
	if !containsClassroom(rooms, lesson.ClassroomID) {
		return skipReasonNoClassroom, nil
	}

	teachers, err := s.availability.FreeTeachers(ctx, lesson.Date, lesson.StartTime, lesson.EndTime, overlay)
	if err != nil {
		return "", err
	}
	if !containsTeacher(teachers, lesson.TeacherID) {
		return skipReasonNoTeacher, nil
	}
	return "", nil
}

func containsClassroom(rooms []models.Classroom, id string) bool {
	for i := range rooms {
		if rooms[i].ID == id {
			return true
		}
	}
	return false
}

func containsTeacher(teachers []models.Teacher, id string) bool {
	for i := range teachers {
		if teachers[i].ID == id {
			return true
		}
	}
	return false
}

func needsWithRemaining(needs []models.CourseNeed) []models.CourseNeed {
	remaining := make([]models.CourseNeed, 0, len(needs))
	for _, need := range needs {
		if need.Remaining > 0 {
			remaining = append(remaining, need)
		}
	}
	return remaining
}

func decrementNeed(needs []models.CourseNeed, courseID string) {
	for i := range needs {
		if needs[i].Course.ID == courseID {
			needs[i].Remaining--
			return
		}
	}
}

func skippedSlot(date time.Time, slot models.TimeSlot, courseID, reason string) dto.SkippedSlot {
	return dto.SkippedSlot{
		Date:      date.Format("2006-01-02"),
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
		CourseID:  courseID,
		Reason:    reason,
	}
}
