package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cyberlab-events/backend/internal/models"
)

// Repository handles event and attendance persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new event.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (id, title, description, topic, venue, starts_at, ends_at, created_by)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, e.Title, e.Description, e.Topic, e.Venue, e.StartsAt, e.EndsAt, e.CreatedBy).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID returns an event by ID, or (nil, nil) when not found.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	const q = `SELECT id, title, description, topic, venue, starts_at, ends_at, created_by, created_at, updated_at
		FROM events WHERE id = $1`
	var e models.Event
	err := r.pool.QueryRow(ctx, q, id).Scan(&e.ID, &e.Title, &e.Description, &e.Topic, &e.Venue,
		&e.StartsAt, &e.EndsAt, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns all events, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Event, error) {
	return r.query(ctx, `SELECT id, title, description, topic, venue, starts_at, ends_at, created_by, created_at, updated_at
		FROM events ORDER BY starts_at DESC`)
}

// ListUpcoming returns events that have not ended yet, soonest first.
func (r *Repository) ListUpcoming(ctx context.Context) ([]models.Event, error) {
	return r.query(ctx, `SELECT id, title, description, topic, venue, starts_at, ends_at, created_by, created_at, updated_at
		FROM events WHERE COALESCE(ends_at, starts_at + interval '1 day') > NOW() ORDER BY starts_at ASC`)
}

func (r *Repository) query(ctx context.Context, q string) ([]models.Event, error) {
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Topic, &e.Venue,
			&e.StartsAt, &e.EndsAt, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Update applies partial changes to an event.
func (r *Repository) Update(ctx context.Context, e *models.Event) error {
	const q = `UPDATE events SET title = $2, description = $3, topic = $4, venue = $5,
		starts_at = $6, ends_at = $7, updated_at = NOW() WHERE id = $1
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, e.ID, e.Title, e.Description, e.Topic, e.Venue, e.StartsAt, e.EndsAt).
		Scan(&e.UpdatedAt)
}

// Delete removes an event. Attendance, resources, and feedback cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	return err
}

// MarkAttendance records a check-in for the event. Repeat check-ins by the
// same attendee keep the first timestamp.
func (r *Repository) MarkAttendance(ctx context.Context, eventID, attendeeID uuid.UUID) error {
	const q = `INSERT INTO event_attendance (event_id, attendee_id)
		VALUES ($1, $2) ON CONFLICT (event_id, attendee_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, q, eventID, attendeeID)
	return err
}

// ListAttendance returns attendance records with attendee names for admin display.
func (r *Repository) ListAttendance(ctx context.Context, eventID uuid.UUID) ([]models.AttendanceEntry, error) {
	const q = `SELECT ea.attendee_id, a.full_name, ea.checked_in_at
		FROM event_attendance ea
		JOIN attendees a ON a.id = ea.attendee_id
		WHERE ea.event_id = $1 ORDER BY ea.checked_in_at DESC`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.AttendanceEntry
	for rows.Next() {
		var e models.AttendanceEntry
		if err := rows.Scan(&e.AttendeeID, &e.FullName, &e.CheckedInAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// CountAttendance returns the number of check-ins for an event.
func (r *Repository) CountAttendance(ctx context.Context, eventID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM event_attendance WHERE event_id = $1`, eventID).Scan(&n)
	return n, err
}
