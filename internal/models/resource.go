package models

import (
	"time"

	"github.com/google/uuid"
)

// Resource is a downloadable workshop material stored in S3.
type Resource struct {
	ID          uuid.UUID `json:"id"`
	EventID     uuid.UUID `json:"event_id"`
	Title       string    `json:"title"`
	FileName    string    `json:"file_name"`
	S3Key       string    `json:"-"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedBy  uuid.UUID `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}
