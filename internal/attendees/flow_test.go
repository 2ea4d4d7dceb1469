package attendees

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberlab-events/backend/internal/models"
)

// memStore is an in-memory AdminStore mirroring the repository semantics:
// normalized-name lookup, atomic register, global code validity.
type memStore struct {
	mu        sync.Mutex
	byName    map[string]*models.Attendee
	ledger    map[uuid.UUID]string
	failOn    string // method name that should return an error
	lastError error
}

func newMemStore() *memStore {
	return &memStore{
		byName: make(map[string]*models.Attendee),
		ledger: make(map[uuid.UUID]string),
	}
}

type storeErr string

func (e storeErr) Error() string { return string(e) }

func (s *memStore) fail(method string) error {
	if s.failOn == method {
		s.lastError = storeErr("store failure in " + method)
		return s.lastError
	}
	return nil
}

func (s *memStore) FindByName(_ context.Context, name string) (*models.Attendee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("FindByName"); err != nil {
		return nil, err
	}
	if a, ok := s.byName[NormalizeName(name)]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (s *memStore) Register(_ context.Context, name string) (*models.Attendee, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("Register"); err != nil {
		return nil, "", err
	}
	code, err := GenerateCode()
	if err != nil {
		return nil, "", err
	}
	a := &models.Attendee{ID: uuid.New(), FullName: name}
	s.byName[NormalizeName(name)] = a
	s.ledger[a.ID] = code
	cp := *a
	return &cp, code, nil
}

func (s *memStore) IsValid(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("IsValid"); err != nil {
		return false, err
	}
	for _, c := range s.ledger {
		if c == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) GetByID(_ context.Context, id uuid.UUID) (*models.Attendee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.byName {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) Reset(_ context.Context, attendeeID uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, err := GenerateCode()
	if err != nil {
		return "", err
	}
	s.ledger[attendeeID] = code
	return code, nil
}

func (s *memStore) DeleteAttendee(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, a := range s.byName {
		if a.ID == id {
			delete(s.byName, k)
		}
	}
	delete(s.ledger, id)
	return nil
}

func (s *memStore) List(_ context.Context) ([]models.Attendee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []models.Attendee
	for _, a := range s.byName {
		list = append(list, *a)
	}
	return list, nil
}

func (s *memStore) ListWithCodes(_ context.Context) ([]models.AttendeeWithCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []models.AttendeeWithCode
	for _, a := range s.byName {
		list = append(list, models.AttendeeWithCode{
			ID:           a.ID,
			FullName:     a.FullName,
			Code:         s.ledger[a.ID],
			RegisteredAt: a.RegisteredAt,
		})
	}
	return list, nil
}

func (s *memStore) codeOf(id uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger[id]
}

func (s *memStore) setCode(id uuid.UUID, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger[id] = code
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "ama owusu", NormalizeName("  Ama Owusu "))
	assert.Equal(t, "ama owusu", NormalizeName("AMA OWUSU"))
	assert.Equal(t, "", NormalizeName("   "))
}

func TestSubmitName_NewAttendee(t *testing.T) {
	store := newMemStore()
	flow := NewFlow(store)
	ctx := context.Background()

	result, err := flow.SubmitName(ctx, "Ama Owusu")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRegistered, result.Outcome)
	require.NotNil(t, result.Attendee)
	assert.Equal(t, "Ama Owusu", result.Attendee.FullName)
	assert.Len(t, result.AccessCode, CodeLength)

	// Issued code validates immediately.
	err = flow.SubmitCode(ctx, result.AccessCode)
	assert.NoError(t, err)

	// Lookup under any casing/whitespace variation finds the record.
	found, err := store.FindByName(ctx, "  ama owusu ")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, result.Attendee.ID, found.ID)
}

func TestSubmitName_ReturningAttendee(t *testing.T) {
	store := newMemStore()
	flow := NewFlow(store)
	ctx := context.Background()

	first, err := flow.SubmitName(ctx, "Ama Owusu")
	require.NoError(t, err)
	require.Equal(t, OutcomeRegistered, first.Outcome)

	// Same name again routes to code entry, never a duplicate create.
	second, err := flow.SubmitName(ctx, "ama owusu")
	require.NoError(t, err)
	assert.Equal(t, OutcomeReturning, second.Outcome)
	assert.Equal(t, first.Attendee.ID, second.Attendee.ID)
	assert.Empty(t, second.AccessCode)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSubmitName_EmptyName(t *testing.T) {
	flow := NewFlow(newMemStore())
	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := flow.SubmitName(context.Background(), name)
		assert.ErrorIs(t, err, ErrEmptyName)
	}
}

func TestSubmitName_StorageFailure(t *testing.T) {
	store := newMemStore()
	store.failOn = "Register"
	flow := NewFlow(store)

	_, err := flow.SubmitName(context.Background(), "Kofi Mensah")
	require.Error(t, err)

	// Nothing registered: the same name still takes the new-attendee branch.
	store.failOn = ""
	result, err := flow.SubmitName(context.Background(), "Kofi Mensah")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRegistered, result.Outcome)
}

func TestSubmitCode_Validation(t *testing.T) {
	store := newMemStore()
	flow := NewFlow(store)
	ctx := context.Background()

	store.setCode(uuid.New(), "483920")

	tests := []struct {
		name string
		code string
		want error
	}{
		{"too short", "4839", ErrCodeLength},
		{"too long", "4839200", ErrCodeLength},
		{"no match", "000000", ErrInvalidCode},
		{"match", "483920", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := flow.SubmitCode(ctx, tt.code)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestSubmitCode_UnlimitedRetries(t *testing.T) {
	store := newMemStore()
	flow := NewFlow(store)
	ctx := context.Background()
	store.setCode(uuid.New(), "123456")

	for i := 0; i < 10; i++ {
		assert.ErrorIs(t, flow.SubmitCode(ctx, "654321"), ErrInvalidCode)
	}
	// Still accepted after any number of failures.
	assert.NoError(t, flow.SubmitCode(ctx, "123456"))
}

// Code validity is a global ledger check: any attendee's current code passes,
// regardless of whose name started the flow.
func TestGlobalCodeValidity(t *testing.T) {
	store := newMemStore()
	flow := NewFlow(store)
	ctx := context.Background()

	a, err := flow.SubmitName(ctx, "Ama Owusu")
	require.NoError(t, err)
	b, err := flow.SubmitName(ctx, "Kofi Mensah")
	require.NoError(t, err)

	// Either attendee's code validates the other's re-entry.
	assert.NoError(t, flow.SubmitCode(ctx, a.AccessCode))
	assert.NoError(t, flow.SubmitCode(ctx, b.AccessCode))
}

func TestReset_RotatesCode(t *testing.T) {
	store := newMemStore()
	flow := NewFlow(store)
	ctx := context.Background()

	reg, err := flow.SubmitName(ctx, "Ama Owusu")
	require.NoError(t, err)
	old := reg.AccessCode

	newCode, err := store.Reset(ctx, reg.Attendee.ID)
	require.NoError(t, err)
	assert.Len(t, newCode, CodeLength)
	assert.Equal(t, newCode, store.codeOf(reg.Attendee.ID))

	// The old value no longer validates unless another attendee holds it.
	if old != newCode {
		assert.ErrorIs(t, flow.SubmitCode(ctx, old), ErrInvalidCode)
	}

	// If a different attendee independently holds the old value, it stays
	// valid globally.
	other := uuid.New()
	store.setCode(other, old)
	assert.NoError(t, flow.SubmitCode(ctx, old))
}
