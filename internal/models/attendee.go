package models

import (
	"time"

	"github.com/google/uuid"
)

// Attendee is a registered workshop participant. The display name is the natural
// lookup key for returning attendees; normalized (trimmed, case-folded) names are
// unique, the opaque ID is the real identity.
type Attendee struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"full_name"`
	RegisteredAt time.Time `json:"registered_at"`
}

// AccessCode maps an attendee to their current 6-digit re-entry code.
// Exactly one current code exists per attendee; reset overwrites it.
type AccessCode struct {
	AttendeeID uuid.UUID `json:"attendee_id"`
	Code       string    `json:"code"`
	IssuedAt   time.Time `json:"issued_at"`
}

// AttendeeWithCode is the admin dashboard view joining attendee and current code.
type AttendeeWithCode struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"full_name"`
	Code         string    `json:"code"`
	RegisteredAt time.Time `json:"registered_at"`
}
