package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/rmaia-dev/sgt-api/internal/models"
)

// Sentinel errors surfaced by atomic roster/lifecycle operations. Services
// translate them into the API error taxonomy.
var (
	ErrClassFinalized    = errors.New("class is finalized")
	ErrDuplicateAttendee = errors.New("attendee registration already present")
	ErrAttendeeNotFound  = errors.New("attendee not found")
)

const classColumns = `id, type, name, code, duration, provider, content, classification, objective, unit, instructor_id, date_start, date_end, presents_count, status, created_at, updated_at`

// ClassRepository manages persistence for class sessions, their roster and
// invite tokens. Every mutation of a single class runs inside a transaction
// that locks the class row, so concurrent writers on the same id are
// serialized and state checks cannot go stale mid-operation.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// Create persists a new class session.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if class.CreatedAt.IsZero() {
		class.CreatedAt = now
	}
	class.UpdatedAt = now

	const query = `INSERT INTO classes (id, type, name, code, duration, provider, content, classification, objective, unit, instructor_id, date_start, date_end, presents_count, status, created_at, updated_at)
VALUES (:id, :type, :name, :code, :duration, :provider, :content, :classification, :objective, :unit, :instructor_id, :date_start, :date_end, :presents_count, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// FindByID returns a class record by ID.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	query := fmt.Sprintf("SELECT %s FROM classes WHERE id = $1", classColumns)
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// List returns open classes (scheduled and not yet ended) matching the
// filter, newest start date first.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error) {
	base := "FROM classes WHERE status = 'scheduled' AND date_end IS NULL"
	var args []interface{}

	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		base += fmt.Sprintf(" AND (LOWER(name) LIKE $%d OR LOWER(code) LIKE $%d)", len(args), len(args))
	}
	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		args = append(args, pq.Array(types))
		base += fmt.Sprintf(" AND type = ANY($%d)", len(args))
	}
	if len(filter.Units) > 0 {
		args = append(args, pq.Array(filter.Units))
		base += fmt.Sprintf(" AND unit = ANY($%d)", len(args))
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY date_start DESC LIMIT %d OFFSET %d", classColumns, base, size, offset)
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list classes: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count classes: %w", err)
	}
	return classes, total, nil
}

// Update merges a partial edit into a class. The merge happens against the
// row read under the lock, so two concurrent patches compose instead of the
// later one reverting the earlier. Completed classes are immutable.
func (r *ClassRepository) Update(ctx context.Context, id string, patch models.ClassPatch) (*models.Class, error) {
	var updated *models.Class
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		current, err := lockClass(ctx, tx, id)
		if err != nil {
			return err
		}
		if current.Status == models.ClassStatusCompleted {
			return ErrClassFinalized
		}

		patch.Apply(current)
		current.UpdatedAt = time.Now().UTC()
		const query = `UPDATE classes SET name = :name, duration = :duration, provider = :provider, content = :content, classification = :classification, objective = :objective, unit = :unit, instructor_id = :instructor_id, date_start = :date_start, updated_at = :updated_at WHERE id = :id`
		if _, err := tx.NamedExecContext(ctx, query, current); err != nil {
			return fmt.Errorf("update class: %w", err)
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a class with its owned attendees and invite token.
// Completed classes cannot be deleted.
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		current, err := lockClass(ctx, tx, id)
		if err != nil {
			return err
		}
		if current.Status == models.ClassStatusCompleted {
			return ErrClassFinalized
		}
		// attendees and invite_tokens cascade on class deletion
		if _, err := tx.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete class: %w", err)
		}
		return nil
	})
}

// Finalize moves a class into a terminal state, stamps date_end and drops any
// live invite token. Finalizing an already terminal class fails.
func (r *ClassRepository) Finalize(ctx context.Context, id string, status models.ClassStatus, endedAt time.Time) (*models.Class, error) {
	var finalized *models.Class
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		current, err := lockClass(ctx, tx, id)
		if err != nil {
			return err
		}
		if current.Status.Final() {
			return ErrClassFinalized
		}

		const query = `UPDATE classes SET status = $1, date_end = $2, updated_at = $3 WHERE id = $4`
		if _, err := tx.ExecContext(ctx, query, status, endedAt, time.Now().UTC(), id); err != nil {
			return fmt.Errorf("finalize class: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM invite_tokens WHERE class_id = $1`, id); err != nil {
			return fmt.Errorf("drop invite token: %w", err)
		}

		current.Status = status
		current.DateEnd = &endedAt
		finalized = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return finalized, nil
}

// ListAttendees returns the roster in check-in order.
func (r *ClassRepository) ListAttendees(ctx context.Context, classID string) ([]models.Attendee, error) {
	const query = `SELECT id, class_id, registration, name, unit, checked_in_at, left_early_at FROM attendees WHERE class_id = $1 ORDER BY checked_in_at ASC`
	var attendees []models.Attendee
	if err := r.db.SelectContext(ctx, &attendees, query, classID); err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	return attendees, nil
}

// RegisterAttendee appends an attendee to a scheduled class. The duplicate
// check, insert and presents_count recount share one transaction.
func (r *ClassRepository) RegisterAttendee(ctx context.Context, classID string, attendee *models.Attendee) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		current, err := lockClass(ctx, tx, classID)
		if err != nil {
			return err
		}
		if current.Status != models.ClassStatusScheduled {
			return ErrClassFinalized
		}

		var exists int
		err = tx.GetContext(ctx, &exists, `SELECT 1 FROM attendees WHERE class_id = $1 AND registration = $2 LIMIT 1`, classID, attendee.Registration)
		if err == nil {
			return ErrDuplicateAttendee
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check attendee registration: %w", err)
		}

		if attendee.ID == "" {
			attendee.ID = uuid.NewString()
		}
		attendee.ClassID = classID
		if attendee.CheckedInAt.IsZero() {
			attendee.CheckedInAt = time.Now().UTC()
		}
		const query = `INSERT INTO attendees (id, class_id, registration, name, unit, checked_in_at, left_early_at) VALUES (:id, :class_id, :registration, :name, :unit, :checked_in_at, :left_early_at)`
		if _, err := tx.NamedExecContext(ctx, query, attendee); err != nil {
			return fmt.Errorf("insert attendee: %w", err)
		}
		return recountPresents(ctx, tx, classID)
	})
}

// MarkEarlyLeave stamps left_early_at on a roster entry. Repeat calls
// re-stamp the time. The attendee stays on the roster.
func (r *ClassRepository) MarkEarlyLeave(ctx context.Context, classID, registration string, leftAt time.Time) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		current, err := lockClass(ctx, tx, classID)
		if err != nil {
			return err
		}
		if current.Status == models.ClassStatusCompleted {
			return ErrClassFinalized
		}

		res, err := tx.ExecContext(ctx, `UPDATE attendees SET left_early_at = $1 WHERE class_id = $2 AND registration = $3`, leftAt, classID, registration)
		if err != nil {
			return fmt.Errorf("mark early leave: %w", err)
		}
		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			return ErrAttendeeNotFound
		}
		return recountPresents(ctx, tx, classID)
	})
}

// RemoveAttendee erases a check-in entirely, freeing the registration for a
// later re-register.
func (r *ClassRepository) RemoveAttendee(ctx context.Context, classID, registration string) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		current, err := lockClass(ctx, tx, classID)
		if err != nil {
			return err
		}
		if current.Status == models.ClassStatusCompleted {
			return ErrClassFinalized
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM attendees WHERE class_id = $1 AND registration = $2`, classID, registration)
		if err != nil {
			return fmt.Errorf("remove attendee: %w", err)
		}
		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			return ErrAttendeeNotFound
		}
		return recountPresents(ctx, tx, classID)
	})
}

// SaveInviteToken stores the active invite token for a class, replacing any
// previous one. Finalized classes cannot receive tokens.
func (r *ClassRepository) SaveInviteToken(ctx context.Context, token *models.InviteToken) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		current, err := lockClass(ctx, tx, token.ClassID)
		if err != nil {
			return err
		}
		if current.Status.Final() {
			return ErrClassFinalized
		}

		if token.CreatedAt.IsZero() {
			token.CreatedAt = time.Now().UTC()
		}
		const query = `INSERT INTO invite_tokens (class_id, token, expires_at, created_at)
VALUES (:class_id, :token, :expires_at, :created_at)
ON CONFLICT (class_id) DO UPDATE SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at, created_at = EXCLUDED.created_at`
		if _, err := tx.NamedExecContext(ctx, query, token); err != nil {
			return fmt.Errorf("save invite token: %w", err)
		}
		return nil
	})
}

// FindInviteToken returns the stored token for a class.
func (r *ClassRepository) FindInviteToken(ctx context.Context, classID string) (*models.InviteToken, error) {
	const query = `SELECT class_id, token, expires_at, created_at FROM invite_tokens WHERE class_id = $1`
	var token models.InviteToken
	if err := r.db.GetContext(ctx, &token, query, classID); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *ClassRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// lockClass reads the class row FOR UPDATE, serializing concurrent mutations
// on the same id for the duration of the transaction.
func lockClass(ctx context.Context, tx *sqlx.Tx, id string) (*models.Class, error) {
	query := fmt.Sprintf("SELECT %s FROM classes WHERE id = $1 FOR UPDATE", classColumns)
	var class models.Class
	if err := tx.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// recountPresents rewrites presents_count from the roster inside the same
// transaction as the roster mutation, so the cached count never drifts.
func recountPresents(ctx context.Context, tx *sqlx.Tx, classID string) error {
	const query = `UPDATE classes SET presents_count = (SELECT COUNT(*) FROM attendees WHERE class_id = $1 AND left_early_at IS NULL), updated_at = $2 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, classID, time.Now().UTC()); err != nil {
		return fmt.Errorf("recount presents: %w", err)
	}
	return nil
}
