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

type instructorRepository interface {
	List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, int, error)
	FindByID(ctx context.Context, id string) (*models.Instructor, error)
	ExistsByRegistration(ctx context.Context, registration, excludeID string) (bool, error)
	Create(ctx context.Context, instructor *models.Instructor) error
	Update(ctx context.Context, instructor *models.Instructor) error
	Deactivate(ctx context.Context, id string) error
}

// CreateInstructorRequest represents payload for creating instructors.
type CreateInstructorRequest struct {
	Name         string  `json:"name" validate:"required"`
	Registration string  `json:"registration" validate:"required"`
	Unit         string  `json:"unit" validate:"required"`
	Position     *string `json:"position" validate:"omitempty,max=200"`
}

// UpdateInstructorRequest represents payload for updating instructors.
type UpdateInstructorRequest struct {
	Name         string  `json:"name" validate:"required"`
	Registration string  `json:"registration" validate:"required"`
	Unit         string  `json:"unit" validate:"required"`
	Position     *string `json:"position" validate:"omitempty,max=200"`
	Active       *bool   `json:"active"`
}

// InstructorService orchestrates the instructor directory.
type InstructorService struct {
	repo      instructorRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInstructorService constructs an InstructorService.
func NewInstructorService(repo instructorRepository, validate *validator.Validate, logger *zap.Logger) *InstructorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstructorService{repo: repo, validator: validate, logger: logger}
}

// List returns instructors plus pagination data.
func (s *InstructorService) List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, *models.Pagination, error) {
	instructors, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructors")
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
	return instructors, pagination, nil
}

// Get returns an instructor by id.
func (s *InstructorService) Get(ctx context.Context, id string) (*models.Instructor, error) {
	instructor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	return instructor, nil
}

// Create registers a new instructor record.
func (s *InstructorService) Create(ctx context.Context, req CreateInstructorRequest) (*models.Instructor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor payload")
	}

	registration := strings.TrimSpace(req.Registration)
	exists, err := s.repo.ExistsByRegistration(ctx, registration, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check registration uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "registration already used")
	}

	instructor := &models.Instructor{
		Name:         strings.TrimSpace(req.Name),
		Registration: registration,
		Unit:         strings.TrimSpace(req.Unit),
		Position:     normalizeOptional(req.Position),
		Active:       true,
	}
	if err := s.repo.Create(ctx, instructor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create instructor")
	}
	return instructor, nil
}

// Update modifies an existing instructor.
func (s *InstructorService) Update(ctx context.Context, id string, req UpdateInstructorRequest) (*models.Instructor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor payload")
	}

	instructor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}

	registration := strings.TrimSpace(req.Registration)
	exists, err := s.repo.ExistsByRegistration(ctx, registration, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check registration uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "registration already used")
	}

	instructor.Name = strings.TrimSpace(req.Name)
	instructor.Registration = registration
	instructor.Unit = strings.TrimSpace(req.Unit)
	instructor.Position = normalizeOptional(req.Position)
	if req.Active != nil {
		instructor.Active = *req.Active
	}

	if err := s.repo.Update(ctx, instructor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update instructor")
	}
	return instructor, nil
}

// Deactivate marks an instructor inactive. Historical classes keep their
// reference.
func (s *InstructorService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate instructor")
	}
	return nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
