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

type attendanceRepository interface {
	RegisterAttendee(ctx context.Context, classID string, attendee *models.Attendee) error
	MarkEarlyLeave(ctx context.Context, classID, registration string, leftAt time.Time) error
	RemoveAttendee(ctx context.Context, classID, registration string) error
	ListAttendees(ctx context.Context, classID string) ([]models.Attendee, error)
}

// RegisterAttendanceRequest represents a check-in payload.
type RegisterAttendanceRequest struct {
	Name         string `json:"name" validate:"required"`
	Registration string `json:"registration" validate:"required"`
	Unit         string `json:"unit" validate:"required"`
}

// AttendanceService enforces roster rules: check-in, early leave and removal.
// All state checks run inside the repository transaction, so a class cannot
// be finished while a registration is in flight.
type AttendanceService struct {
	repo      attendanceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, validator: validate, logger: logger}
}

// Register appends an attendee to a scheduled class. Duplicate registrations
// within the same class are rejected.
func (s *AttendanceService) Register(ctx context.Context, classID string, req RegisterAttendanceRequest) (*models.Attendee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	attendee := &models.Attendee{
		Registration: strings.TrimSpace(req.Registration),
		Name:         strings.TrimSpace(req.Name),
		Unit:         strings.TrimSpace(req.Unit),
		CheckedInAt:  time.Now().UTC(),
	}
	if err := s.repo.RegisterAttendee(ctx, classID, attendee); err != nil {
		return nil, s.mapRosterError(err)
	}

	s.logger.Info("attendee registered",
		zap.String("class_id", classID),
		zap.String("registration", attendee.Registration),
	)
	return attendee, nil
}

// MarkEarlyLeave stamps the departure time on an attendee who left before the
// session ended. The attendee remains on the roster; repeat calls re-stamp.
func (s *AttendanceService) MarkEarlyLeave(ctx context.Context, classID, registration string) error {
	registration = strings.TrimSpace(registration)
	if registration == "" {
		return appErrors.Clone(appErrors.ErrValidation, "registration is required")
	}
	if err := s.repo.MarkEarlyLeave(ctx, classID, registration, time.Now().UTC()); err != nil {
		return s.mapRosterError(err)
	}
	s.logger.Info("early leave recorded",
		zap.String("class_id", classID),
		zap.String("registration", registration),
	)
	return nil
}

// Remove erases a check-in entirely. Unlike early leave, the registration may
// check in again afterwards.
func (s *AttendanceService) Remove(ctx context.Context, classID, registration string) error {
	registration = strings.TrimSpace(registration)
	if registration == "" {
		return appErrors.Clone(appErrors.ErrValidation, "registration is required")
	}
	if err := s.repo.RemoveAttendee(ctx, classID, registration); err != nil {
		return s.mapRosterError(err)
	}
	s.logger.Info("attendee removed",
		zap.String("class_id", classID),
		zap.String("registration", registration),
	)
	return nil
}

// Roster returns the attendee list in check-in order.
func (s *AttendanceService) Roster(ctx context.Context, classID string) ([]models.Attendee, error) {
	attendees, err := s.repo.ListAttendees(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	return attendees, nil
}

func (s *AttendanceService) mapRosterError(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, "class not found")
	case errors.Is(err, repository.ErrAttendeeNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, "attendee not found")
	case errors.Is(err, repository.ErrClassFinalized):
		return appErrors.Clone(appErrors.ErrInvalidState, "class no longer accepts roster changes")
	case errors.Is(err, repository.ErrDuplicateAttendee):
		return appErrors.Clone(appErrors.ErrDuplicate, "registration already checked in")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "roster operation failed")
	}
}
