package models

import (
	"time"

	"github.com/google/uuid"
)

// FeedbackQuestion is an admin-defined feedback question for an event.
// SuggestedAnswer is filled in asynchronously by the AI suggestion worker.
type FeedbackQuestion struct {
	ID              uuid.UUID `json:"id"`
	EventID         uuid.UUID `json:"event_id"`
	Prompt          string    `json:"prompt"`
	SuggestedAnswer *string   `json:"suggested_answer,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// FeedbackResponse is one attendee's answer to a feedback question.
type FeedbackResponse struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	AttendeeID uuid.UUID `json:"attendee_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}
