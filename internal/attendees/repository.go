package attendees

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cyberlab-events/backend/internal/models"
)

// Repository persists the attendee registry and the access-code ledger.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an attendees repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByName returns the attendee whose normalized name matches, or (nil, nil)
// when no such attendee exists.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.Attendee, error) {
	const q = `SELECT id, full_name, registered_at FROM attendees WHERE normalized_name = $1`
	var a models.Attendee
	err := r.pool.QueryRow(ctx, q, NormalizeName(name)).Scan(&a.ID, &a.FullName, &a.RegisteredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByID returns an attendee by ID, or (nil, nil) when not found.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Attendee, error) {
	const q = `SELECT id, full_name, registered_at FROM attendees WHERE id = $1`
	var a models.Attendee
	err := r.pool.QueryRow(ctx, q, id).Scan(&a.ID, &a.FullName, &a.RegisteredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Register creates an attendee and issues their first access code in one
// transaction. A failure of either write registers nothing.
func (r *Repository) Register(ctx context.Context, name string) (*models.Attendee, string, error) {
	code, err := GenerateCode()
	if err != nil {
		return nil, "", err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertAttendee = `INSERT INTO attendees (id, full_name, normalized_name)
		VALUES (gen_random_uuid(), $1, $2)
		RETURNING id, full_name, registered_at`
	var a models.Attendee
	if err := tx.QueryRow(ctx, insertAttendee, name, NormalizeName(name)).
		Scan(&a.ID, &a.FullName, &a.RegisteredAt); err != nil {
		return nil, "", fmt.Errorf("insert attendee: %w", err)
	}

	const insertCode = `INSERT INTO access_codes (attendee_id, code) VALUES ($1, $2)`
	if _, err := tx.Exec(ctx, insertCode, a.ID, code); err != nil {
		return nil, "", fmt.Errorf("insert access code: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, "", fmt.Errorf("commit: %w", err)
	}
	return &a, code, nil
}

// Reset mints a new code for an attendee, overwriting the prior mapping. The
// previous code value stops validating for this attendee (it may still
// validate globally if another attendee happens to hold the same value).
func (r *Repository) Reset(ctx context.Context, attendeeID uuid.UUID) (string, error) {
	code, err := GenerateCode()
	if err != nil {
		return "", err
	}
	const q = `INSERT INTO access_codes (attendee_id, code) VALUES ($1, $2)
		ON CONFLICT (attendee_id) DO UPDATE SET code = EXCLUDED.code, issued_at = NOW()`
	if _, err := r.pool.Exec(ctx, q, attendeeID, code); err != nil {
		return "", fmt.Errorf("reset code: %w", err)
	}
	return code, nil
}

// IsValid reports whether the code equals any value currently in the ledger.
// The check is deliberately not scoped to a single attendee; see DESIGN.md.
func (r *Repository) IsValid(ctx context.Context, code string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM access_codes WHERE code = $1)`
	var ok bool
	if err := r.pool.QueryRow(ctx, q, code).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// DeleteAttendee removes an attendee and, via FK cascade, their ledger entry,
// attendance records, and feedback responses.
func (r *Repository) DeleteAttendee(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM attendees WHERE id = $1`, id)
	return err
}

// List returns all attendees for admin display.
func (r *Repository) List(ctx context.Context) ([]models.Attendee, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, full_name, registered_at FROM attendees ORDER BY registered_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Attendee
	for rows.Next() {
		var a models.Attendee
		if err := rows.Scan(&a.ID, &a.FullName, &a.RegisteredAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// ListWithCodes returns attendees joined with their current codes for the
// admin dashboard.
func (r *Repository) ListWithCodes(ctx context.Context) ([]models.AttendeeWithCode, error) {
	const q = `SELECT a.id, a.full_name, COALESCE(c.code, ''), a.registered_at
		FROM attendees a
		LEFT JOIN access_codes c ON c.attendee_id = a.id
		ORDER BY a.registered_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.AttendeeWithCode
	for rows.Next() {
		var a models.AttendeeWithCode
		if err := rows.Scan(&a.ID, &a.FullName, &a.Code, &a.RegisteredAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
