package attendees

import (
	"context"
	"errors"
	"strings"

	"github.com/cyberlab-events/backend/internal/models"
)

var (
	// ErrEmptyName is returned when the submitted name is empty or whitespace-only.
	ErrEmptyName = errors.New("name must not be empty")
	// ErrCodeLength is returned when the submitted code is not exactly 6 characters.
	ErrCodeLength = errors.New("access code must be 6 digits")
	// ErrInvalidCode is returned when the submitted code matches no ledger entry.
	ErrInvalidCode = errors.New("invalid access code")
)

// Store is the persistence surface the check-in flow needs.
// FindByName returns (nil, nil) on a miss; a miss is the new-attendee signal,
// not a failure. Register creates the attendee and issues their first access
// code as a single atomic operation: either both writes land or neither does.
type Store interface {
	FindByName(ctx context.Context, name string) (*models.Attendee, error)
	Register(ctx context.Context, name string) (*models.Attendee, string, error)
	IsValid(ctx context.Context, code string) (bool, error)
}

// Outcome is the branch taken for a submitted name.
type Outcome string

const (
	// OutcomeRegistered means the name was new: an attendee was created and a
	// fresh code issued for display.
	OutcomeRegistered Outcome = "registered"
	// OutcomeReturning means the name matched an existing attendee: the caller
	// must collect the previously issued code.
	OutcomeReturning Outcome = "returning"
)

// CheckinResult carries the decision for a submitted name.
// AccessCode is set only when Outcome is OutcomeRegistered.
type CheckinResult struct {
	Outcome    Outcome
	Attendee   *models.Attendee
	AccessCode string
}

// NormalizeName trims surrounding whitespace and case-folds a display name.
// Returning-attendee detection compares normalized names only.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Flow decides, for a submitted name, whether the participant is new (register
// and mint a code) or returning (demand the previously issued code), and
// validates submitted codes against the ledger.
type Flow struct {
	store Store
}

// NewFlow creates a check-in flow over the given store.
func NewFlow(store Store) *Flow {
	return &Flow{store: store}
}

// SubmitName routes a submitted name to the new-attendee or returning-attendee
// branch. A normalized-name match always routes to returning, never to a
// duplicate create.
func (f *Flow) SubmitName(ctx context.Context, name string) (*CheckinResult, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	existing, err := f.store.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &CheckinResult{Outcome: OutcomeReturning, Attendee: existing}, nil
	}
	attendee, code, err := f.store.Register(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	return &CheckinResult{Outcome: OutcomeRegistered, Attendee: attendee, AccessCode: code}, nil
}

// SubmitCode validates a code submitted on the code-entry step. Length is
// checked before the ledger is consulted. An invalid code is not terminal;
// the caller stays on the code-entry step and may retry without limit.
func (f *Flow) SubmitCode(ctx context.Context, code string) error {
	if len(code) != CodeLength {
		return ErrCodeLength
	}
	ok, err := f.store.IsValid(ctx, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCode
	}
	return nil
}
