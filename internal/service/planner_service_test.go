package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edusphere/timetable-api/internal/dto"
	"github.com/edusphere/timetable-api/internal/models"
	"github.com/edusphere/timetable-api/pkg/config"
	appErrors "github.com/edusphere/timetable-api/pkg/errors"
)

// Week 3 with FirstSchoolWeek=37 and StartYear=2024 resolves to ISO week 39,
// Monday 2024-09-23 through Friday 2024-09-27.
const fixtureWeek = 3

func fixtureDay(offset int) time.Time {
	return time.Date(2024, time.September, 23+offset, 0, 0, 0, 0, time.UTC)
}

type plannerFixtureConfig struct {
	courses      []models.Course
	lessons      []models.Lesson
	teachers     []models.Teacher
	classrooms   []models.Classroom
	availability map[string][]models.TeacherAvailability
	weeks        []int64
	noWeeks      bool
	slots        []models.TimeSlot
	holidays     []string
	tx           txProvider
}

type plannerFixture struct {
	service    *PlannerService
	lessonRepo *lessonRepoStub
}

func newPlannerFixture(t *testing.T, cfg plannerFixtureConfig) *plannerFixture {
	t.Helper()

	if cfg.teachers == nil {
		cfg.teachers = []models.Teacher{
			{ID: "teacher-1", FullName: "Ada Stone", Active: true},
			{ID: "teacher-2", FullName: "Bo Reed", Active: true},
		}
	}
	if cfg.classrooms == nil {
		cfg.classrooms = []models.Classroom{
			{ID: "room-1", Name: "A101"},
			{ID: "room-2", Name: "A102"},
		}
	}
	if cfg.slots == nil {
		cfg.slots = []models.TimeSlot{
			{ID: "slot-1", StartTime: "08:30", EndTime: "12:00"},
			{ID: "slot-2", StartTime: "13:30", EndTime: "17:00"},
		}
	}
	if cfg.weeks == nil && !cfg.noWeeks {
		cfg.weeks = []int64{fixtureWeek}
	}
	tx := cfg.tx
	if tx == nil {
		tx = noopTxProvider{}
	}

	lessonRepo := &lessonRepoStub{items: cfg.lessons}
	courseRepo := courseRepoStub{items: cfg.courses}
	classGroupRepo := classGroupRepoStub{
		group:   models.ClassGroup{ID: "class-1", Name: "B2-INFO", TrackID: "track-1"},
		weeks:   cfg.weeks,
		noWeeks: cfg.noWeeks,
	}
	slotRepo := slotRepoStub{items: cfg.slots}
	teacherRepo := teacherRepoStub{items: cfg.teachers}
	classroomRepo := classroomRepoStub{items: cfg.classrooms}
	timelineRepo := &timelineRepoStub{records: cfg.availability}

	plannerCfg := config.PlannerConfig{
		FirstSchoolWeek: 37,
		StartYear:       2024,
		LessonHours:     3.5,
		CoursesPerSlot:  2,
		ProposalTTL:     time.Hour,
		Holidays:        cfg.holidays,
	}

	logger := zap.NewNop()
	cacheSvc := NewCacheService(nil, nil, 0, logger, false)
	calendar := NewCalendarService(plannerCfg, logger)
	availability := NewAvailabilityService(lessonRepo, teacherRepo, classroomRepo, timelineRepo, cacheSvc, false, logger)
	quota := NewQuotaService(courseRepo, lessonRepo, plannerCfg.LessonHours, logger)

	svc := NewPlannerService(calendar, availability, quota, classGroupRepo, slotRepo, lessonRepo, tx, nil, plannerCfg, logger)
	svc.SetCourseSelector(func(needs []models.CourseNeed, n int) []models.CourseNeed {
		if len(needs) > n {
			needs = needs[:n]
		}
		return needs
	})
	return &plannerFixture{service: svc, lessonRepo: lessonRepo}
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb}, mock
}

type txProviderMock struct {
	db *sqlx.DB
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

type noopTxProvider struct{}

func (noopTxProvider) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return nil, fmt.Errorf("no transactions expected in this test")
}

func expectTransactions(mock sqlmock.Sqlmock, count int) {
	for i := 0; i < count; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
}

func TestGeneratePlanningFillsQuotaAndReportsExhaustion(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	expectTransactions(mock, 2)

	fixture := newPlannerFixture(t, plannerFixtureConfig{
		courses: []models.Course{
			{ID: "course-math", Name: "Maths", HourlyVolume: 3.5, Semester: 1, TrackID: "track-1"},
			{ID: "course-sci", Name: "Science", HourlyVolume: 3.5, Semester: 1, TrackID: "track-1"},
		},
		tx: tx,
	})

	result, err := fixture.service.GeneratePlanning(context.Background(), &dto.GeneratePlanningRequest{
		ClassID: "class-1",
		Week:    fixtureWeek,
		Mode:    dto.ModeCommit,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.PlacedCount)
	assert.Equal(t, 8, result.SkippedCount)
	assert.False(t, result.NotScheduled)
	assert.Len(t, fixture.lessonRepo.items, 2)

	for _, skip := range result.Skipped {
		assert.Equal(t, "no course requires scheduling", skip.Reason)
		assert.Empty(t, skip.CourseID)
	}

	first := fixture.lessonRepo.items[0]
	assert.Equal(t, "course-math", first.CourseID)
	assert.Equal(t, "teacher-1", first.TeacherID)
	assert.Equal(t, "room-1", first.ClassroomID)
	assert.Equal(t, "08:30", first.StartTime)
	assert.True(t, models.SameDate(first.Date, fixtureDay(0)))
	assert.True(t, first.Generated)

	second := fixture.lessonRepo.items[1]
	assert.Equal(t, "course-sci", second.CourseID)
	assert.Equal(t, "13:30", second.StartTime)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGeneratePlanningFillsTwoLessonCourseQuota(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	expectTransactions(mock, 2)

	fixture := newPlannerFixture(t, plannerFixtureConfig{
		courses: []models.Course{
			{ID: "course-algo", Name: "Algorithms", HourlyVolume: 7, Semester: 1, TrackID: "track-1"},
		},
		tx: tx,
	})

	result, err := fixture.service.GeneratePlanning(context.Background(), &dto.GeneratePlanningRequest{
		ClassID: "class-1",
		Week:    fixtureWeek,
		Mode:    dto.ModeCommit,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.PlacedCount, "7 hours at 3.5 per lesson means exactly two lessons")
	require.Len(t, fixture.lessonRepo.items, 2)
	for _, lesson := range fixture.lessonRepo.items {
		assert.Equal(t, "course-algo", lesson.CourseID)
	}

	assert.Equal(t, 8, result.SkippedCount)
	for _, skip := range result.Skipped {
		assert.Equal(t, "no course requires scheduling", skip.Reason)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGeneratePlanningContinuesPastStoreFailure(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	expectTransactions(mock, 8)

	fixture := newPlannerFixture(t, plannerFixtureConfig{
		courses: []models.Course{
			{ID: "course-math", Name: "Maths", HourlyVolume: 35, Semester: 1, TrackID: "track-1"},
		},
		tx: tx,
	})
	monday := fixtureDay(0)
	fixture.lessonRepo.failListOn = &monday

	result, err := fixture.service.GeneratePlanning(context.Background(), &dto.GeneratePlanningRequest{
		ClassID: "class-1",
		Week:    fixtureWeek,
		Mode:    dto.ModeCommit,
	})
	require.NoError(t, err)

	assert.Equal(t, 8, result.PlacedCount, "Tuesday through Friday keep their placements")
	require.Equal(t, 2, result.SkippedCount)
	for _, skip := range result.Skipped {
		assert.Equal(t, "2024-09-23", skip.Date)
		assert.Equal(t, "failed to load schedule data", skip.Reason)
	}

	require.Len(t, fixture.lessonRepo.items, 8)
	for _, lesson := range fixture.lessonRepo.items {
		assert.False(t, models.SameDate(lesson.Date, monday))
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptProposalReportsStoreFailures(t *testing.T) {
	fixture := newPlannerFixture(t, plannerFixtureConfig{
		courses: []models.Course{
			{ID: "course-math", Name: "Maths", HourlyVolume: 3.5, Semester: 1, TrackID: "track-1"},
		},
	})

	proposed, err := fixture.service.GeneratePlanning(context.Background(), &dto.GeneratePlanningRequest{
		ClassID: "class-1",
		Week:    fixtureWeek,
		Mode:    dto.ModePropose,
	})
	require.NoError(t, err)
	require.Equal(t, 1, proposed.PlacedCount)

	monday := fixtureDay(0)
	fixture.lessonRepo.failListOn = &monday

	accepted, err := fixture.service.AcceptProposal(context.Background(), &dto.AcceptProposalRequest{
		ProposalID: proposed.ProposalID,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, accepted.PlacedCount)
	require.Equal(t, 1, accepted.SkippedCount)
	assert.Equal(t, "failed to load schedule data", accepted.Skipped[0].Reason)
	assert.Empty(t, fixture.lessonRepo.items)
}

func TestGeneratePlanningReportsTeacherShortage(t *testing.T) {
	fixture := newPlannerFixture(t, plannerFixtureConfig{
		courses: []models.Course{
			{ID: "course-math", Name: "Maths", HourlyVolume: 35, Semester: 1, TrackID: "track-1"},
		},
		teachers: []models.Teacher{{ID: "teacher-1", FullName: "Ada Stone", Active: true}},
		availability: map[string][]models.TeacherAvailability{
			"teacher-1": {{
				ID:        "window-1",
				TeacherID: "teacher-1",
				StartDate: time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC),
				EndDate:   time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
				Status:    models.AvailabilityStatusUnavailable,
			}},
		},
	})

	result, err := fixture.service.GeneratePlanning(context.Background(), &dto.GeneratePlanningRequest{
		ClassID: "class-1",
		Week:    fixtureWeek,
		Mode:    dto.ModeCommit,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.PlacedCount)
	assert.Equal(t, 10, result.SkippedCount)
	assert.Empty(t, fixture.lessonRepo.items)
	for _, skip := range result.Skipped {
		assert.Equal(t, "no teacher available", skip.Reason)
		assert.Equal(t, "course-math", skip.CourseID)
	}
}

func TestGeneratePlanningIsIdempotent(t *testing.T) {
	var existing []models.Lesson
	for day := 0; day < 5; day++ {
		for _, window := range [][2]string{{"08:30", "12:00"}, {"13:30", "17:00"}} {
			existing = append(existing, models.Lesson{
				ID:          fmt.Sprintf("lesson-%d-%s", day, window[0]),
				ClassID:     "class-1",
				CourseID:    "course-math",
				TeacherID:   "teacher-1",
				ClassroomID: "room-1",
				Date:        fixtureDay(day),
				StartTime:   window[0],
				EndTime:     window[1],
			})
		}
	}

	fixture := newPlannerFixture(t, plannerFixtureConfig{
		courses: []models.Course{
			{ID: "course-math", Name: "Maths", HourlyVolume: 35, Semester: 1, TrackID: "track-1"},
		},
		lessons: existing,
	})

	result, err := fixture.service.GeneratePlanning(context.Background(), &dto.GeneratePlanningRequest{
		ClassID: "class-1",
		Week:    fixtureWeek,
		Mode:    dto.ModeCommit,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.PlacedCount)
	assert.Equal(t, 0, result.SkippedCount)
	assert.Len(t, fixture.lessonRepo.items, 10)
}

func TestGeneratePlanningSkipsHolidays(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	expectTransactions(mock, 8)

	fixture := newPlannerFixture(t, plannerFixtureConfig{
		courses: []models.Course{
			{ID: "course-math", Name: "Maths", HourlyVolume: 35, Semester: 1, TrackID: "track-1"},
		},
		holidays: []string{"09-25"},
		tx:       tx,
	})

	result, err := fixture.service.GeneratePlanning(context.Background(), &dto.GeneratePlanningRequest{
		ClassID: "class-1",
		Week:    fixtureWeek,
		Mode:    dto.ModeCommit,
	})
	require.NoError(t, err)

	assert.Equal(t, 8, result.PlacedCount)
	assert.Equal(t, 0, result.SkippedCount)
	for _, lesson := range fixture.lessonRepo.items {
		assert.False(t, models.SameDate(lesson.Date, fixtureDay(2)), "no lesson may land on the holiday")
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGeneratePlanningNotScheduledWeek(t *testing.T) {
	fixture := newPlannerFixture(t, plannerFixtureConfig{
		courses: []models.Course{
			{ID: "course-math", Name: "Maths", HourlyVolume: 35, Semester: 1, TrackID: "track-1"},
		},
		weeks: []int64{5},
	})

	result, err := fixture.service.GeneratePlanning(context.Background(), &dto.GeneratePlanningRequest{
		ClassID: "class-1",
		Week:    fixtureWeek,
		Mode:    dto.ModeCommit,
	})
	require.NoError(t, err)

	assert.True(t, result.NotScheduled)
	assert.Contains(t, result.Notice, "not scheduled")
	assert.Equal(t, 0, result.PlacedCount)
	assert.Empty(t, fixture.lessonRepo.items)
}

func TestGeneratePlanningWithoutAvailabilityRecord(t *testing.T) {
	fixture := newPlannerFixture(t, plannerFixtureConfig{
		courses: []models.Course{
			{ID: "course-math", Name: "Maths", HourlyVolume: 35, Semester: 1, TrackID: "track-1"},
		},
		noWeeks: true,
	})

	result, err := fixture.service.GeneratePlanning(context.Background(), &dto.GeneratePlanningRequest{
		ClassID: "class-1",
		Week:    fixtureWeek,
	})
	require.NoError(t, err)
	assert.True(t, result.NotScheduled)
}

func TestGeneratePlanningUnknownClass(t *testing.T) {
	fixture := newPlannerFixture(t, plannerFixtureConfig{})

	_, err := fixture.service.GeneratePlanning(context.Background(), &dto.GeneratePlanningRequest{
		ClassID: "class-missing",
		Week:    fixtureWeek,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestProposeThenAcceptProposal(t *testing.T) {
	tx, mock := newTxProviderMock(t)

	fixture := newPlannerFixture(t, plannerFixtureConfig{
		courses: []models.Course{
			{ID: "course-math", Name: "Maths", HourlyVolume: 3.5, Semester: 1, TrackID: "track-1"},
			{ID: "course-sci", Name: "Science", HourlyVolume: 3.5, Semester: 1, TrackID: "track-1"},
		},
		tx: tx,
	})

	proposed, err := fixture.service.GeneratePlanning(context.Background(), &dto.GeneratePlanningRequest{
		ClassID: "class-1",
		Week:    fixtureWeek,
		Mode:    dto.ModePropose,
	})
	require.NoError(t, err)
	require.NotEmpty(t, proposed.ProposalID)
	assert.Equal(t, 2, proposed.PlacedCount)
	assert.Empty(t, fixture.lessonRepo.items, "propose mode must not write")

	expectTransactions(mock, 2)
	accepted, err := fixture.service.AcceptProposal(context.Background(), &dto.AcceptProposalRequest{
		ProposalID: proposed.ProposalID,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, accepted.PlacedCount)
	assert.Equal(t, 0, accepted.SkippedCount)
	assert.Len(t, fixture.lessonRepo.items, 2)
	require.NoError(t, mock.ExpectationsWereMet())

	_, err = fixture.service.AcceptProposal(context.Background(), &dto.AcceptProposalRequest{
		ProposalID: proposed.ProposalID,
	})
	require.Error(t, err, "a proposal is consumed on accept")
}

func TestAcceptProposalUnknownID(t *testing.T) {
	fixture := newPlannerFixture(t, plannerFixtureConfig{})

	_, err := fixture.service.AcceptProposal(context.Background(), &dto.AcceptProposalRequest{
		ProposalID: "nope",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestAcceptProposalSkipsTakenSlots(t *testing.T) {
	tx, mock := newTxProviderMock(t)

	fixture := newPlannerFixture(t, plannerFixtureConfig{
		courses: []models.Course{
			{ID: "course-math", Name: "Maths", HourlyVolume: 3.5, Semester: 1, TrackID: "track-1"},
		},
		tx: tx,
	})

	proposed, err := fixture.service.GeneratePlanning(context.Background(), &dto.GeneratePlanningRequest{
		ClassID: "class-1",
		Week:    fixtureWeek,
		Mode:    dto.ModePropose,
	})
	require.NoError(t, err)
	require.Equal(t, 1, proposed.PlacedCount)

	// Both teachers get booked on the proposed window before acceptance.
	fixture.lessonRepo.items = append(fixture.lessonRepo.items, models.Lesson{
		ID:          "lesson-clash",
		ClassID:     "class-2",
		CourseID:    "course-other",
		TeacherID:   "teacher-1",
		ClassroomID: "lab-9",
		Date:        fixtureDay(0),
		StartTime:   "08:30",
		EndTime:     "12:00",
	})
	fixture.lessonRepo.items = append(fixture.lessonRepo.items, models.Lesson{
		ID:          "lesson-clash-2",
		ClassID:     "class-2",
		CourseID:    "course-other",
		TeacherID:   "teacher-2",
		ClassroomID: "lab-8",
		Date:        fixtureDay(0),
		StartTime:   "08:30",
		EndTime:     "12:00",
	})

	accepted, err := fixture.service.AcceptProposal(context.Background(), &dto.AcceptProposalRequest{
		ProposalID: proposed.ProposalID,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, accepted.PlacedCount)
	assert.Equal(t, 1, accepted.SkippedCount)
	assert.Equal(t, "no teacher available", accepted.Skipped[0].Reason)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateCandidatesRejectsOverlayConflicts(t *testing.T) {
	fixture := newPlannerFixture(t, plannerFixtureConfig{})

	resp, err := fixture.service.ValidateCandidates(context.Background(), &dto.ValidateCandidatesRequest{
		Candidates: []dto.CandidateLesson{
			{
				ClassID: "class-1", CourseID: "course-math", TeacherID: "teacher-1", ClassroomID: "room-1",
				Date: "2024-09-23", StartTime: "08:30", EndTime: "12:00",
			},
			{
				ClassID: "class-2", CourseID: "course-sci", TeacherID: "teacher-1", ClassroomID: "room-2",
				Date: "2024-09-23", StartTime: "09:00", EndTime: "11:00",
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Accepted)
	assert.Equal(t, 1, resp.Rejected)
	assert.True(t, resp.Verdicts[0].Accepted)
	assert.False(t, resp.Verdicts[1].Accepted)
	assert.Equal(t, "no teacher available", resp.Verdicts[1].Reason)
}

func TestValidateCandidatesCommitPersists(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	expectTransactions(mock, 1)

	fixture := newPlannerFixture(t, plannerFixtureConfig{tx: tx})

	resp, err := fixture.service.ValidateCandidates(context.Background(), &dto.ValidateCandidatesRequest{
		Candidates: []dto.CandidateLesson{{
			ClassID: "class-1", CourseID: "course-math", TeacherID: "teacher-1", ClassroomID: "room-1",
			Date: "2024-09-23", StartTime: "08:30", EndTime: "12:00",
		}},
		Commit: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Accepted)
	assert.Len(t, fixture.lessonRepo.items, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateCandidatesRejectsInvertedWindow(t *testing.T) {
	fixture := newPlannerFixture(t, plannerFixtureConfig{})

	resp, err := fixture.service.ValidateCandidates(context.Background(), &dto.ValidateCandidatesRequest{
		Candidates: []dto.CandidateLesson{{
			ClassID: "class-1", CourseID: "course-math", TeacherID: "teacher-1", ClassroomID: "room-1",
			Date: "2024-09-23", StartTime: "12:00", EndTime: "08:30",
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Rejected)
}

func TestGenerateRangeHonoursFilledQuota(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	expectTransactions(mock, 1)

	fixture := newPlannerFixture(t, plannerFixtureConfig{
		courses: []models.Course{
			{ID: "course-math", Name: "Maths", HourlyVolume: 3.5, Semester: 1, TrackID: "track-1"},
		},
		weeks: []int64{3, 4},
		tx:    tx,
	})

	results, err := fixture.service.GenerateRange(context.Background(), &dto.GenerateRangeRequest{
		ClassID:  "class-1",
		FromWeek: 3,
		ToWeek:   5,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, 3, results[0].Week)
	assert.Equal(t, 1, results[0].PlacedCount)
	assert.Equal(t, 0, results[1].PlacedCount, "quota filled in week 3 leaves nothing for week 4")
	assert.Equal(t, 10, results[1].SkippedCount)
	assert.True(t, results[2].NotScheduled, "week 5 is outside the class weeks")

	require.Len(t, fixture.lessonRepo.items, 1)
	assert.True(t, models.SameDate(fixture.lessonRepo.items[0].Date, fixtureDay(0)))
	require.NoError(t, mock.ExpectationsWereMet())
}

type lessonRepoStub struct {
	items []models.Lesson
	// failListOn makes ListOverlapping fail for that calendar day only.
	failListOn *time.Time
}

func (s *lessonRepoStub) ListOverlapping(ctx context.Context, date time.Time, start, end string) ([]models.Lesson, error) {
	if s.failListOn != nil && models.SameDate(date, *s.failListOn) {
		return nil, errors.New("store unreachable")
	}
	var out []models.Lesson
	for _, l := range s.items {
		if l.OverlapsInterval(date, start, end) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *lessonRepoStub) ExistsForClassSlot(ctx context.Context, exec sqlx.ExtContext, classID string, date time.Time, start, end string) (bool, error) {
	for _, l := range s.items {
		if l.ClassID == classID && models.SameDate(l.Date, date) && l.StartTime == start && l.EndTime == end {
			return true, nil
		}
	}
	return false, nil
}

func (s *lessonRepoStub) CountByClassPerCourse(ctx context.Context, classID string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, l := range s.items {
		if l.ClassID == classID {
			counts[l.CourseID]++
		}
	}
	return counts, nil
}

func (s *lessonRepoStub) Create(ctx context.Context, exec sqlx.ExtContext, lesson *models.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = fmt.Sprintf("lesson-%d", len(s.items)+1)
	}
	s.items = append(s.items, *lesson)
	return nil
}

type courseRepoStub struct {
	items []models.Course
}

func (s courseRepoStub) ListByTrackAndSemester(ctx context.Context, trackID string, semester int) ([]models.Course, error) {
	var out []models.Course
	for _, c := range s.items {
		if c.TrackID == trackID && c.Semester == semester {
			out = append(out, c)
		}
	}
	return out, nil
}

type classGroupRepoStub struct {
	group   models.ClassGroup
	weeks   []int64
	noWeeks bool
}

func (s classGroupRepoStub) FindByID(ctx context.Context, id string) (*models.ClassGroup, error) {
	if id != s.group.ID {
		return nil, sql.ErrNoRows
	}
	group := s.group
	return &group, nil
}

func (s classGroupRepoStub) GetAvailability(ctx context.Context, classID string) (*models.ClassAvailability, error) {
	if s.noWeeks || classID != s.group.ID {
		return nil, sql.ErrNoRows
	}
	return &models.ClassAvailability{ClassID: classID, AvailableWeeks: s.weeks}, nil
}

type slotRepoStub struct {
	items []models.TimeSlot
}

func (s slotRepoStub) ListRegular(ctx context.Context) ([]models.TimeSlot, error) {
	return s.items, nil
}

type teacherRepoStub struct {
	items []models.Teacher
}

func (s teacherRepoStub) ListActive(ctx context.Context) ([]models.Teacher, error) {
	var out []models.Teacher
	for _, teacher := range s.items {
		if teacher.Active {
			out = append(out, teacher)
		}
	}
	return out, nil
}

func (s teacherRepoStub) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	for _, teacher := range s.items {
		if teacher.ID == id {
			found := teacher
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

type classroomRepoStub struct {
	items []models.Classroom
}

func (s classroomRepoStub) ListAll(ctx context.Context) ([]models.Classroom, error) {
	return s.items, nil
}

type timelineRepoStub struct {
	records map[string][]models.TeacherAvailability
}

func (s *timelineRepoStub) ListCovering(ctx context.Context, day time.Time) ([]models.TeacherAvailability, error) {
	var out []models.TeacherAvailability
	for _, records := range s.records {
		for _, record := range records {
			if record.Covers(day) {
				out = append(out, record)
			}
		}
	}
	return out, nil
}

func (s *timelineRepoStub) CountByTeachers(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for teacherID, records := range s.records {
		counts[teacherID] = len(records)
	}
	return counts, nil
}

func (s *timelineRepoStub) ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherAvailability, error) {
	return s.records[teacherID], nil
}

func (s *timelineRepoStub) Create(ctx context.Context, record *models.TeacherAvailability) error {
	if s.records == nil {
		s.records = make(map[string][]models.TeacherAvailability)
	}
	s.records[record.TeacherID] = append(s.records[record.TeacherID], *record)
	return nil
}
