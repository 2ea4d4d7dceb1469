package models

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a training event (workshop session).
type Event struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Topic       string     `json:"topic"`
	Venue       string     `json:"venue"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Attendance records that an attendee checked in to an event.
type Attendance struct {
	EventID     uuid.UUID `json:"event_id"`
	AttendeeID  uuid.UUID `json:"attendee_id"`
	CheckedInAt time.Time `json:"checked_in_at"`
}

// AttendanceEntry is the admin view of one attendance record with the attendee name.
type AttendanceEntry struct {
	AttendeeID  uuid.UUID `json:"attendee_id"`
	FullName    string    `json:"full_name"`
	CheckedInAt time.Time `json:"checked_in_at"`
}
