package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rmaia-dev/sgt-api/internal/models"
	appErrors "github.com/rmaia-dev/sgt-api/pkg/errors"
)

type trainingRepository interface {
	List(ctx context.Context, filter models.TrainingFilter) ([]models.Training, int, error)
	FindByID(ctx context.Context, id string) (*models.Training, error)
	Create(ctx context.Context, training *models.Training) error
	Update(ctx context.Context, training *models.Training) error
	Delete(ctx context.Context, id string) error
}

// TrainingRequest represents payload for creating or updating catalog
// entries.
type TrainingRequest struct {
	Name           string  `json:"name" validate:"required"`
	Code           string  `json:"code" validate:"required"`
	Duration       *string `json:"duration"`
	Provider       *string `json:"provider"`
	Content        *string `json:"content"`
	Classification *string `json:"classification"`
	Objective      *string `json:"objective"`
}

// TrainingService manages the portfolio training catalog.
type TrainingService struct {
	repo      trainingRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTrainingService constructs a TrainingService.
func NewTrainingService(repo trainingRepository, validate *validator.Validate, logger *zap.Logger) *TrainingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrainingService{repo: repo, validator: validate, logger: logger}
}

// List returns catalog entries plus pagination data.
func (s *TrainingService) List(ctx context.Context, filter models.TrainingFilter) ([]models.Training, *models.Pagination, error) {
	trainings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list trainings")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return trainings, pagination, nil
}

// Get returns a training definition by id.
func (s *TrainingService) Get(ctx context.Context, id string) (*models.Training, error) {
	training, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "training not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load training")
	}
	return training, nil
}

// Create adds a catalog entry.
func (s *TrainingService) Create(ctx context.Context, req TrainingRequest) (*models.Training, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid training payload")
	}

	training := &models.Training{
		Name:           strings.TrimSpace(req.Name),
		Code:           strings.TrimSpace(req.Code),
		Duration:       normalizeOptional(req.Duration),
		Provider:       normalizeOptional(req.Provider),
		Content:        normalizeOptional(req.Content),
		Classification: normalizeOptional(req.Classification),
		Objective:      normalizeOptional(req.Objective),
	}
	if err := s.repo.Create(ctx, training); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create training")
	}
	return training, nil
}

// Update edits a catalog entry. Classes snapshot the catalog at creation, so
// existing sessions are unaffected.
func (s *TrainingService) Update(ctx context.Context, id string, req TrainingRequest) (*models.Training, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid training payload")
	}

	training, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "training not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load training")
	}

	training.Name = strings.TrimSpace(req.Name)
	training.Code = strings.TrimSpace(req.Code)
	training.Duration = normalizeOptional(req.Duration)
	training.Provider = normalizeOptional(req.Provider)
	training.Content = normalizeOptional(req.Content)
	training.Classification = normalizeOptional(req.Classification)
	training.Objective = normalizeOptional(req.Objective)

	if err := s.repo.Update(ctx, training); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update training")
	}
	return training, nil
}

// Delete removes a catalog entry.
func (s *TrainingService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "training not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load training")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete training")
	}
	return nil
}
