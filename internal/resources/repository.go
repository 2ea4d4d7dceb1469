package resources

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cyberlab-events/backend/internal/models"
)

// Repository handles resource metadata persistence. Object bytes live in S3.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a resources repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts resource metadata after a successful S3 upload.
func (r *Repository) Create(ctx context.Context, res *models.Resource) error {
	const q = `INSERT INTO resources (id, event_id, title, file_name, s3_key, content_type, size_bytes, uploaded_by)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, res.EventID, res.Title, res.FileName, res.S3Key,
		res.ContentType, res.SizeBytes, res.UploadedBy).
		Scan(&res.ID, &res.CreatedAt)
}

// GetByID returns a resource by ID, or (nil, nil) when not found.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	const q = `SELECT id, event_id, title, file_name, s3_key, content_type, size_bytes, uploaded_by, created_at
		FROM resources WHERE id = $1`
	var res models.Resource
	err := r.pool.QueryRow(ctx, q, id).Scan(&res.ID, &res.EventID, &res.Title, &res.FileName,
		&res.S3Key, &res.ContentType, &res.SizeBytes, &res.UploadedBy, &res.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ListByEvent returns all resources for an event, newest first.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Resource, error) {
	const q = `SELECT id, event_id, title, file_name, s3_key, content_type, size_bytes, uploaded_by, created_at
		FROM resources WHERE event_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Resource
	for rows.Next() {
		var res models.Resource
		if err := rows.Scan(&res.ID, &res.EventID, &res.Title, &res.FileName,
			&res.S3Key, &res.ContentType, &res.SizeBytes, &res.UploadedBy, &res.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, res)
	}
	return list, rows.Err()
}

// Delete removes resource metadata.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	return err
}
