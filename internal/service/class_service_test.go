package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rmaia-dev/sgt-api/internal/models"
	"github.com/rmaia-dev/sgt-api/internal/repository"
	appErrors "github.com/rmaia-dev/sgt-api/pkg/errors"
)

type classRepoStub struct {
	classes   map[string]*models.Class
	attendees map[string][]models.Attendee
	filter    models.ClassFilter
}

func newClassRepoStub() *classRepoStub {
	return &classRepoStub{
		classes:   make(map[string]*models.Class),
		attendees: make(map[string][]models.Attendee),
	}
}

func (s *classRepoStub) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = "class-" + class.Code
	}
	copy := *class
	s.classes[class.ID] = &copy
	return nil
}

func (s *classRepoStub) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if class, ok := s.classes[id]; ok {
		copy := *class
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *classRepoStub) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error) {
	s.filter = filter
	result := make([]models.Class, 0, len(s.classes))
	for _, class := range s.classes {
		if class.Status == models.ClassStatusScheduled && class.DateEnd == nil {
			result = append(result, *class)
		}
	}
	return result, len(result), nil
}

func (s *classRepoStub) Update(ctx context.Context, id string, patch models.ClassPatch) (*models.Class, error) {
	current, ok := s.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if current.Status == models.ClassStatusCompleted {
		return nil, repository.ErrClassFinalized
	}
	patch.Apply(current)
	copy := *current
	return &copy, nil
}

func (s *classRepoStub) Delete(ctx context.Context, id string) error {
	current, ok := s.classes[id]
	if !ok {
		return sql.ErrNoRows
	}
	if current.Status == models.ClassStatusCompleted {
		return repository.ErrClassFinalized
	}
	delete(s.classes, id)
	delete(s.attendees, id)
	return nil
}

func (s *classRepoStub) Finalize(ctx context.Context, id string, status models.ClassStatus, endedAt time.Time) (*models.Class, error) {
	current, ok := s.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if current.Status.Final() {
		return nil, repository.ErrClassFinalized
	}
	current.Status = status
	current.DateEnd = &endedAt
	copy := *current
	return &copy, nil
}

func (s *classRepoStub) ListAttendees(ctx context.Context, classID string) ([]models.Attendee, error) {
	return s.attendees[classID], nil
}

type directoryStub struct {
	instructors map[string]*models.Instructor
}

func newDirectoryStub(ids ...string) *directoryStub {
	stub := &directoryStub{instructors: make(map[string]*models.Instructor)}
	for _, id := range ids {
		stub.instructors[id] = &models.Instructor{ID: id, Name: "Instructor " + id, Active: true}
	}
	return stub
}

func (s *directoryStub) FindByID(ctx context.Context, id string) (*models.Instructor, error) {
	if instructor, ok := s.instructors[id]; ok {
		return instructor, nil
	}
	return nil, sql.ErrNoRows
}

type catalogStub struct {
	trainings map[string]*models.Training
}

func (s *catalogStub) FindByID(ctx context.Context, id string) (*models.Training, error) {
	if training, ok := s.trainings[id]; ok {
		copy := *training
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

type invalidatorStub struct {
	invalidated []string
}

func (s *invalidatorStub) Invalidate(ctx context.Context, classID string) {
	s.invalidated = append(s.invalidated, classID)
}

func strPtr(v string) *string { return &v }

func timePtr(v time.Time) *time.Time { return &v }

var adminActor = models.Actor{ID: "admin-1", IsAdmin: true}

func newTestClassService(repo *classRepoStub, dir *directoryStub, catalog *catalogStub, invalidator *invalidatorStub) *ClassService {
	var invites inviteInvalidator
	if invalidator != nil {
		invites = invalidator
	}
	return NewClassService(repo, dir, catalog, invites, nil, nil)
}

func TestClassServiceCreateRequiresAdmin(t *testing.T) {
	svc := newTestClassService(newClassRepoStub(), newDirectoryStub("instructor-1"), &catalogStub{}, nil)

	_, err := svc.Create(context.Background(), models.Actor{ID: "user-1"}, CreateClassRequest{
		Type:         models.ClassTypeDDS,
		Name:         "Daily safety talk",
		Unit:         "Plant A",
		InstructorID: "instructor-1",
		DateStart:    timePtr(time.Now()),
	})
	require.True(t, appErrors.HasCode(err, appErrors.ErrForbidden))
}

func TestClassServiceCreateDDSDefaults(t *testing.T) {
	repo := newClassRepoStub()
	svc := newTestClassService(repo, newDirectoryStub("instructor-1"), &catalogStub{}, nil)

	detail, err := svc.Create(context.Background(), adminActor, CreateClassRequest{
		Type:         models.ClassTypeDDS,
		Name:         "Daily safety talk",
		Unit:         "Plant A",
		InstructorID: "instructor-1",
		DateStart:    timePtr(time.Now()),
	})
	require.NoError(t, err)
	require.Equal(t, "DDS", detail.Code)
	require.NotNil(t, detail.Duration)
	require.Equal(t, "00:40", *detail.Duration)
	require.Equal(t, "DDS", detail.TypeLabel)
	require.Equal(t, models.ClassStatusScheduled, detail.Status)
	require.Zero(t, detail.PresentsCount)
}

func TestClassServiceCreatePortfolioSnapshot(t *testing.T) {
	repo := newClassRepoStub()
	catalog := &catalogStub{trainings: map[string]*models.Training{
		"training-1": {
			ID:       "training-1",
			Name:     "NR-35 Work at Height",
			Code:     "NR35",
			Duration: strPtr("08:00"),
			Provider: strPtr("Internal"),
		},
	}}
	svc := newTestClassService(repo, newDirectoryStub("instructor-1"), catalog, nil)

	detail, err := svc.Create(context.Background(), adminActor, CreateClassRequest{
		Type:         models.ClassTypePortfolio,
		TrainingID:   "training-1",
		Unit:         "Plant A",
		InstructorID: "instructor-1",
		DateStart:    timePtr(time.Now()),
	})
	require.NoError(t, err)
	require.Equal(t, "NR-35 Work at Height", detail.Name)
	require.Equal(t, "NR35", detail.Code)
	require.Equal(t, "08:00", *detail.Duration)

	// a later catalog edit must not alter the stored session
	catalog.trainings["training-1"].Name = "Renamed"
	stored, err := repo.FindByID(context.Background(), detail.ID)
	require.NoError(t, err)
	require.Equal(t, "NR-35 Work at Height", stored.Name)
}

func TestClassServiceCreatePortfolioRequiresTraining(t *testing.T) {
	svc := newTestClassService(newClassRepoStub(), newDirectoryStub("instructor-1"), &catalogStub{}, nil)

	_, err := svc.Create(context.Background(), adminActor, CreateClassRequest{
		Type:         models.ClassTypePortfolio,
		Unit:         "Plant A",
		InstructorID: "instructor-1",
		DateStart:    timePtr(time.Now()),
	})
	require.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestClassServiceCreateUnknownType(t *testing.T) {
	svc := newTestClassService(newClassRepoStub(), newDirectoryStub("instructor-1"), &catalogStub{}, nil)

	_, err := svc.Create(context.Background(), adminActor, CreateClassRequest{
		Type:         models.ClassType("WORKSHOP"),
		Name:         "Workshop",
		Unit:         "Plant A",
		InstructorID: "instructor-1",
		DateStart:    timePtr(time.Now()),
	})
	require.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestClassServiceCreateUnknownInstructor(t *testing.T) {
	svc := newTestClassService(newClassRepoStub(), newDirectoryStub(), &catalogStub{}, nil)

	_, err := svc.Create(context.Background(), adminActor, CreateClassRequest{
		Type:         models.ClassTypeExternal,
		Name:         "Fire brigade refresher",
		Unit:         "Plant A",
		InstructorID: "ghost",
		DateStart:    timePtr(time.Now()),
	})
	require.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestClassServiceUpdateCompletedClass(t *testing.T) {
	repo := newClassRepoStub()
	repo.classes["class-1"] = &models.Class{
		ID:           "class-1",
		Type:         models.ClassTypeExternal,
		Name:         "Fire brigade refresher",
		InstructorID: "instructor-1",
		Status:       models.ClassStatusCompleted,
	}
	svc := newTestClassService(repo, newDirectoryStub("instructor-1"), &catalogStub{}, nil)

	_, err := svc.Update(context.Background(), adminActor, "class-1", UpdateClassRequest{Name: strPtr("New name")})
	require.True(t, appErrors.HasCode(err, appErrors.ErrInvalidState))
}

func TestClassServiceUpdatePatchesCompose(t *testing.T) {
	repo := newClassRepoStub()
	repo.classes["class-1"] = &models.Class{
		ID:           "class-1",
		Type:         models.ClassTypeExternal,
		Name:         "Fire brigade refresher",
		Unit:         "Plant A",
		InstructorID: "instructor-1",
		Status:       models.ClassStatusScheduled,
	}
	svc := newTestClassService(repo, newDirectoryStub("instructor-1"), &catalogStub{}, nil)

	// each caller sends only its own fields; the repository merges against
	// the stored row, so neither patch reverts the other
	_, err := svc.Update(context.Background(), adminActor, "class-1", UpdateClassRequest{Name: strPtr("Fire brigade annual")})
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), adminActor, "class-1", UpdateClassRequest{Unit: strPtr("Plant B")})
	require.NoError(t, err)

	stored, err := repo.FindByID(context.Background(), "class-1")
	require.NoError(t, err)
	require.Equal(t, "Fire brigade annual", stored.Name)
	require.Equal(t, "Plant B", stored.Unit)
}

func TestClassServiceFinishLifecycle(t *testing.T) {
	repo := newClassRepoStub()
	repo.classes["class-1"] = &models.Class{
		ID:           "class-1",
		Type:         models.ClassTypeDDS,
		Name:         "Daily safety talk",
		InstructorID: "instructor-1",
		Status:       models.ClassStatusScheduled,
	}
	invalidator := &invalidatorStub{}
	svc := newTestClassService(repo, newDirectoryStub("instructor-1"), &catalogStub{}, invalidator)

	detail, err := svc.Finish(context.Background(), adminActor, "class-1")
	require.NoError(t, err)
	require.Equal(t, models.ClassStatusCompleted, detail.Status)
	require.NotNil(t, detail.DateEnd)
	require.Equal(t, []string{"class-1"}, invalidator.invalidated)

	// a finished class cannot be finished or cancelled again
	_, err = svc.Finish(context.Background(), adminActor, "class-1")
	require.True(t, appErrors.HasCode(err, appErrors.ErrInvalidState))
	_, err = svc.Cancel(context.Background(), adminActor, "class-1")
	require.True(t, appErrors.HasCode(err, appErrors.ErrInvalidState))
}

func TestClassServiceCancel(t *testing.T) {
	repo := newClassRepoStub()
	repo.classes["class-1"] = &models.Class{
		ID:           "class-1",
		Type:         models.ClassTypeOthers,
		Name:         "Onboarding",
		InstructorID: "instructor-1",
		Status:       models.ClassStatusScheduled,
	}
	svc := newTestClassService(repo, newDirectoryStub("instructor-1"), &catalogStub{}, nil)

	detail, err := svc.Cancel(context.Background(), adminActor, "class-1")
	require.NoError(t, err)
	require.Equal(t, models.ClassStatusCancelled, detail.Status)
}

func TestClassServiceDeleteInvalidatesInvite(t *testing.T) {
	repo := newClassRepoStub()
	repo.classes["class-1"] = &models.Class{ID: "class-1", Status: models.ClassStatusScheduled}
	invalidator := &invalidatorStub{}
	svc := newTestClassService(repo, newDirectoryStub(), &catalogStub{}, invalidator)

	require.NoError(t, svc.Delete(context.Background(), adminActor, "class-1"))
	require.Equal(t, []string{"class-1"}, invalidator.invalidated)

	err := svc.Delete(context.Background(), adminActor, "class-1")
	require.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestClassServiceListSkipsFinalized(t *testing.T) {
	repo := newClassRepoStub()
	repo.classes["class-1"] = &models.Class{ID: "class-1", InstructorID: "instructor-1", Status: models.ClassStatusScheduled}
	now := time.Now()
	repo.classes["class-2"] = &models.Class{ID: "class-2", InstructorID: "instructor-1", Status: models.ClassStatusCompleted, DateEnd: &now}
	svc := newTestClassService(repo, newDirectoryStub("instructor-1"), &catalogStub{}, nil)

	details, pagination, err := svc.List(context.Background(), models.ClassFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, details, 1)
	require.Equal(t, "class-1", details[0].ID)
	require.Equal(t, 1, pagination.TotalCount)
}

func TestClassServiceGetEmbedsRoster(t *testing.T) {
	repo := newClassRepoStub()
	repo.classes["class-1"] = &models.Class{ID: "class-1", Type: models.ClassTypeDDS, InstructorID: "instructor-1", Status: models.ClassStatusScheduled}
	repo.attendees["class-1"] = []models.Attendee{
		{ID: "attendee-1", ClassID: "class-1", Registration: "12345", Name: "Jane Doe"},
	}
	svc := newTestClassService(repo, newDirectoryStub("instructor-1"), &catalogStub{}, nil)

	detail, err := svc.Get(context.Background(), "class-1")
	require.NoError(t, err)
	require.NotNil(t, detail.Instructor)
	require.Len(t, detail.Attendees, 1)
	require.Equal(t, "12345", detail.Attendees[0].Registration)
}
