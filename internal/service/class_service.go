package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rmaia-dev/sgt-api/internal/models"
	"github.com/rmaia-dev/sgt-api/internal/repository"
	appErrors "github.com/rmaia-dev/sgt-api/pkg/errors"
)

type classRepository interface {
	Create(ctx context.Context, class *models.Class) error
	FindByID(ctx context.Context, id string) (*models.Class, error)
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error)
	Update(ctx context.Context, id string, patch models.ClassPatch) (*models.Class, error)
	Delete(ctx context.Context, id string) error
	Finalize(ctx context.Context, id string, status models.ClassStatus, endedAt time.Time) (*models.Class, error)
	ListAttendees(ctx context.Context, classID string) ([]models.Attendee, error)
}

// instructorDirectory is the narrow lookup contract the class core consumes.
// Instructor lifecycle is managed elsewhere.
type instructorDirectory interface {
	FindByID(ctx context.Context, id string) (*models.Instructor, error)
}

type trainingCatalog interface {
	FindByID(ctx context.Context, id string) (*models.Training, error)
}

// inviteInvalidator drops any cached invite token when a class stops
// accepting check-ins.
type inviteInvalidator interface {
	Invalidate(ctx context.Context, classID string)
}

// CreateClassRequest represents the payload for scheduling a session.
type CreateClassRequest struct {
	Type           models.ClassType `json:"type" validate:"required"`
	TrainingID     string           `json:"training_id"`
	Name           string           `json:"name"`
	Duration       *string          `json:"duration"`
	Provider       *string          `json:"provider"`
	Content        *string          `json:"content"`
	Classification *string          `json:"classification"`
	Objective      *string          `json:"objective"`
	Unit           string           `json:"unit" validate:"required"`
	InstructorID   string           `json:"instructor_id" validate:"required"`
	DateStart      *time.Time       `json:"date_start" validate:"required"`
}

// UpdateClassRequest carries a partial patch. Nil fields stay untouched; the
// class type is immutable.
type UpdateClassRequest struct {
	Name           *string    `json:"name"`
	Duration       *string    `json:"duration"`
	Provider       *string    `json:"provider"`
	Content        *string    `json:"content"`
	Classification *string    `json:"classification"`
	Objective      *string    `json:"objective"`
	Unit           *string    `json:"unit"`
	InstructorID   *string    `json:"instructor_id"`
	DateStart      *time.Time `json:"date_start"`
}

// ClassService drives the session lifecycle: scheduling, editing, finishing,
// cancelling and listing open sessions.
type ClassService struct {
	repo        classRepository
	instructors instructorDirectory
	trainings   trainingCatalog
	invites     inviteInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewClassService constructs a ClassService. The invite invalidator may be
// nil when no cache is configured.
func NewClassService(repo classRepository, instructors instructorDirectory, trainings trainingCatalog, invites inviteInvalidator, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, instructors: instructors, trainings: trainings, invites: invites, validator: validate, logger: logger}
}

// Create schedules a new class session. Portfolio classes snapshot their
// descriptive fields from the training catalog; other types derive code and
// defaults from the type itself.
func (s *ClassService) Create(ctx context.Context, actor models.Actor, req CreateClassRequest) (*models.ClassDetail, error) {
	if !actor.IsAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators may schedule classes")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown class type")
	}

	instructor, err := s.instructors.FindByID(ctx, req.InstructorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve instructor")
	}

	class := &models.Class{
		Type:          req.Type,
		Unit:          strings.TrimSpace(req.Unit),
		InstructorID:  instructor.ID,
		DateStart:     req.DateStart.UTC(),
		PresentsCount: 0,
		Status:        models.ClassStatusScheduled,
	}

	if req.Type == models.ClassTypePortfolio {
		if strings.TrimSpace(req.TrainingID) == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "training_id is required for portfolio classes")
		}
		training, err := s.trainings.FindByID(ctx, req.TrainingID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "training not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve training")
		}
		// copy-on-create: later catalog edits must not alter this session
		class.Name = training.Name
		class.Code = training.Code
		class.Duration = training.Duration
		class.Provider = training.Provider
		class.Content = training.Content
		class.Classification = training.Classification
		class.Objective = training.Objective
	} else {
		name := strings.TrimSpace(req.Name)
		if name == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "name is required for non-portfolio classes")
		}
		class.Name = name
		class.Code = req.Type.DefaultCode()
		class.Duration = req.Duration
		class.Provider = req.Provider
		class.Content = req.Content
		class.Classification = req.Classification
		class.Objective = req.Objective
		if req.Type == models.ClassTypeDDS && (class.Duration == nil || strings.TrimSpace(*class.Duration) == "") {
			dds := "00:40"
			class.Duration = &dds
		}
	}

	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}

	s.logger.Info("class scheduled",
		zap.String("class_id", class.ID),
		zap.String("type", string(class.Type)),
		zap.String("actor", actor.ID),
	)
	return models.NewClassDetail(*class, instructor, nil), nil
}

// Update merges a patch into a scheduled or cancelled class. Completed
// classes are immutable. The merge itself happens in the repository under the
// row lock, so concurrent patches on the same class compose.
func (s *ClassService) Update(ctx context.Context, actor models.Actor, id string, req UpdateClassRequest) (*models.ClassDetail, error) {
	if !actor.IsAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators may edit classes")
	}

	patch := models.ClassPatch{
		Duration:       req.Duration,
		Provider:       req.Provider,
		Content:        req.Content,
		Classification: req.Classification,
		Objective:      req.Objective,
		DateStart:      req.DateStart,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "name cannot be empty")
		}
		patch.Name = &name
	}
	if req.Unit != nil {
		unit := strings.TrimSpace(*req.Unit)
		if unit == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unit cannot be empty")
		}
		patch.Unit = &unit
	}
	if req.InstructorID != nil {
		if _, err := s.instructors.FindByID(ctx, *req.InstructorID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve instructor")
		}
		patch.InstructorID = req.InstructorID
	}

	class, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, s.mapClassError(err, "class not found")
	}
	return s.detail(ctx, class)
}

// Delete permanently removes a class with its roster and invite token.
func (s *ClassService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if !actor.IsAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only administrators may delete classes")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapClassError(err, "class not found")
	}
	if s.invites != nil {
		s.invites.Invalidate(ctx, id)
	}
	s.logger.Info("class deleted", zap.String("class_id", id), zap.String("actor", actor.ID))
	return nil
}

// Finish completes a class, stamping date_end and freezing the record.
// Finishing an already finalized class fails with INVALID_STATE.
func (s *ClassService) Finish(ctx context.Context, actor models.Actor, id string) (*models.ClassDetail, error) {
	return s.finalize(ctx, actor, id, models.ClassStatusCompleted)
}

// Cancel moves a class into the cancelled terminal state.
func (s *ClassService) Cancel(ctx context.Context, actor models.Actor, id string) (*models.ClassDetail, error) {
	return s.finalize(ctx, actor, id, models.ClassStatusCancelled)
}

func (s *ClassService) finalize(ctx context.Context, actor models.Actor, id string, status models.ClassStatus) (*models.ClassDetail, error) {
	if !actor.IsAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators may finalize classes")
	}
	class, err := s.repo.Finalize(ctx, id, status, time.Now().UTC())
	if err != nil {
		return nil, s.mapClassError(err, "class not found")
	}
	if s.invites != nil {
		s.invites.Invalidate(ctx, id)
	}
	s.logger.Info("class finalized",
		zap.String("class_id", id),
		zap.String("status", string(status)),
		zap.String("actor", actor.ID),
	)
	return s.detail(ctx, class)
}

// List returns open classes plus pagination data.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, *models.Pagination, error) {
	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}

	details := make([]models.ClassDetail, 0, len(classes))
	for _, class := range classes {
		instructor, err := s.instructors.FindByID(ctx, class.InstructorID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve instructor")
		}
		details = append(details, *models.NewClassDetail(class, instructor, nil))
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
	return details, pagination, nil
}

// Get returns the full record with instructor and roster embedded.
func (s *ClassService) Get(ctx context.Context, id string) (*models.ClassDetail, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapClassError(err, "class not found")
	}
	attendees, err := s.repo.ListAttendees(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	instructor, err := s.instructors.FindByID(ctx, class.InstructorID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve instructor")
	}
	return models.NewClassDetail(*class, instructor, attendees), nil
}

func (s *ClassService) detail(ctx context.Context, class *models.Class) (*models.ClassDetail, error) {
	instructor, err := s.instructors.FindByID(ctx, class.InstructorID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve instructor")
	}
	return models.NewClassDetail(*class, instructor, nil), nil
}

func (s *ClassService) mapClassError(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, notFoundMsg)
	case errors.Is(err, repository.ErrClassFinalized):
		return appErrors.Clone(appErrors.ErrInvalidState, "class is finalized")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "class operation failed")
	}
}
