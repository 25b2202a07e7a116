package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rmaia-dev/sgt-api/internal/models"
)

const trainingColumns = `id, name, code, duration, provider, content, classification, objective, created_at, updated_at`

// TrainingRepository manages the portfolio training catalog.
type TrainingRepository struct {
	db *sqlx.DB
}

// NewTrainingRepository constructs a new training repository.
func NewTrainingRepository(db *sqlx.DB) *TrainingRepository {
	return &TrainingRepository{db: db}
}

// List returns catalog entries matching filter criteria.
func (r *TrainingRepository) List(ctx context.Context, filter models.TrainingFilter) ([]models.Training, int, error) {
	base := "FROM trainings WHERE 1=1"
	var args []interface{}

	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		base += fmt.Sprintf(" AND (LOWER(name) LIKE $%d OR LOWER(code) LIKE $%d)", len(args), len(args))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY name ASC LIMIT %d OFFSET %d", trainingColumns, base, size, offset)
	var trainings []models.Training
	if err := r.db.SelectContext(ctx, &trainings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list trainings: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count trainings: %w", err)
	}
	return trainings, total, nil
}

// FindByID returns a training definition by ID.
func (r *TrainingRepository) FindByID(ctx context.Context, id string) (*models.Training, error) {
	query := fmt.Sprintf("SELECT %s FROM trainings WHERE id = $1", trainingColumns)
	var training models.Training
	if err := r.db.GetContext(ctx, &training, query, id); err != nil {
		return nil, err
	}
	return &training, nil
}

// Create persists a training definition.
func (r *TrainingRepository) Create(ctx context.Context, training *models.Training) error {
	if training.ID == "" {
		training.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if training.CreatedAt.IsZero() {
		training.CreatedAt = now
	}
	training.UpdatedAt = now

	const query = `INSERT INTO trainings (id, name, code, duration, provider, content, classification, objective, created_at, updated_at) VALUES (:id, :name, :code, :duration, :provider, :content, :classification, :objective, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, training); err != nil {
		return fmt.Errorf("create training: %w", err)
	}
	return nil
}

// Update modifies a training definition. Classes created before the edit keep
// their snapshot untouched.
func (r *TrainingRepository) Update(ctx context.Context, training *models.Training) error {
	training.UpdatedAt = time.Now().UTC()
	const query = `UPDATE trainings SET name = :name, code = :code, duration = :duration, provider = :provider, content = :content, classification = :classification, objective = :objective, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, training); err != nil {
		return fmt.Errorf("update training: %w", err)
	}
	return nil
}

// Delete removes a catalog entry.
func (r *TrainingRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM trainings WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete training: %w", err)
	}
	return nil
}
