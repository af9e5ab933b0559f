package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edusphere/timetable-api/internal/dto"
	"github.com/edusphere/timetable-api/internal/models"
	appErrors "github.com/edusphere/timetable-api/pkg/errors"
)

type classGroupStore interface {
	FindByID(ctx context.Context, id string) (*models.ClassGroup, error)
	ListAll(ctx context.Context) ([]models.ClassGroup, error)
	GetAvailability(ctx context.Context, classID string) (*models.ClassAvailability, error)
	UpsertAvailability(ctx context.Context, classID string, weeks []int64) error
}

// ClassGroupService manages class groups and their instruction-week windows.
type ClassGroupService struct {
	repo     classGroupStore
	validate *validator.Validate
	logger   *zap.Logger
}

// NewClassGroupService creates the class group service.
func NewClassGroupService(repo classGroupStore, logger *zap.Logger) *ClassGroupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassGroupService{repo: repo, validate: validator.New(), logger: logger}
}

// List returns every class group.
func (s *ClassGroupService) List(ctx context.Context) ([]models.ClassGroup, error) {
	groups, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class groups")
	}
	if groups == nil {
		groups = []models.ClassGroup{}
	}
	return groups, nil
}

// GetWeeks returns a class group's instruction weeks. A group without an
// availability record has no weeks yet.
func (s *ClassGroupService) GetWeeks(ctx context.Context, classID string) ([]int, error) {
	if _, err := s.mustFind(ctx, classID); err != nil {
		return nil, err
	}

	availability, err := s.repo.GetAvailability(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []int{}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class availability")
	}

	weeks := make([]int, 0, len(availability.AvailableWeeks))
	for _, w := range availability.AvailableWeeks {
		weeks = append(weeks, int(w))
	}
	return weeks, nil
}

// UpdateWeeks replaces a class group's instruction weeks. Weeks are
// deduplicated and stored sorted.
func (s *ClassGroupService) UpdateWeeks(ctx context.Context, classID string, req *dto.UpdateClassWeeksRequest) ([]int, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if _, err := s.mustFind(ctx, classID); err != nil {
		return nil, err
	}

	weeks := normalizeWeeks(req.Weeks)
	stored := make([]int64, len(weeks))
	for i, w := range weeks {
		stored[i] = int64(w)
	}

	if err := s.repo.UpsertAvailability(ctx, classID, stored); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store class availability")
	}

	s.logger.Info("class weeks updated", zap.String("class_id", classID), zap.Int("weeks", len(weeks)))
	return weeks, nil
}

// GenerateAvailabilities assigns instruction weeks to every class group on a
// rotating cycle: the 52 school weeks are cut into consecutive blocks of
// `cycle` weeks and the blocks are dealt out to the groups in id order, round
// robin. Each group's previous weeks are replaced.
func (s *ClassGroupService) GenerateAvailabilities(ctx context.Context, req *dto.GenerateAvailabilitiesRequest) (map[string][]int, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	groups, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class groups")
	}
	if len(groups) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no class groups to assign weeks to")
	}

	assigned := make(map[string][]int, len(groups))
	for i, group := range groups {
		var weeks []int64
		for week := 1; week <= 52; week++ {
			block := (week - 1) / req.Cycle
			if block%len(groups) == i {
				weeks = append(weeks, int64(week))
			}
		}
		if err := s.repo.UpsertAvailability(ctx, group.ID, weeks); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store class availability")
		}
		plain := make([]int, len(weeks))
		for j, w := range weeks {
			plain[j] = int(w)
		}
		assigned[group.ID] = plain
	}

	s.logger.Info("class availabilities generated", zap.Int("groups", len(groups)), zap.Int("cycle", req.Cycle))
	return assigned, nil
}

func (s *ClassGroupService) mustFind(ctx context.Context, classID string) (*models.ClassGroup, error) {
	group, err := s.repo.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("class group %s not found", classID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class group")
	}
	return group, nil
}

func normalizeWeeks(weeks []int) []int {
	seen := make(map[int]struct{}, len(weeks))
	result := make([]int, 0, len(weeks))
	for _, w := range weeks {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		result = append(result, w)
	}
	sort.Ints(result)
	return result
}
