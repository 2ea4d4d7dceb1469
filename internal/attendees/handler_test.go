package attendees

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberlab-events/backend/pkg/response"
)

type fakeAttendance struct {
	mu     sync.Mutex
	marked [][2]uuid.UUID
}

func (f *fakeAttendance) MarkAttendance(_ context.Context, eventID, attendeeID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, [2]uuid.UUID{eventID, attendeeID})
	return nil
}

type fakeFeed struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeFeed) PublishToEventOnly(_ uuid.UUID, event string, _ interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func setupRouter(store AdminStore, attendance AttendanceMarker, feed Publisher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, attendance, feed, nil)
	r := gin.New()
	r.POST("/checkin", h.Checkin)
	r.POST("/checkin/verify", h.VerifyCode)
	r.POST("/checkin/confirm", h.Confirm)
	r.GET("/admin/attendees", h.ListWithCodes)
	r.POST("/admin/attendees/:id/reset-code", h.ResetCode)
	r.DELETE("/admin/attendees/:id", h.Delete)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, response.Body) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp response.Body
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestCheckin_New(t *testing.T) {
	store := newMemStore()
	r := setupRouter(store, &fakeAttendance{}, &fakeFeed{})

	w, resp := doJSON(t, r, http.MethodPost, "/checkin", gin.H{"full_name": "Ama Owusu"})
	require.Equal(t, http.StatusCreated, w.Code)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "registered", data["status"])
	assert.Len(t, data["access_code"], CodeLength)
}

func TestCheckin_Returning(t *testing.T) {
	store := newMemStore()
	r := setupRouter(store, &fakeAttendance{}, &fakeFeed{})

	w, _ := doJSON(t, r, http.MethodPost, "/checkin", gin.H{"full_name": "Ama Owusu"})
	require.Equal(t, http.StatusCreated, w.Code)

	// Re-submitting the same name, whatever the casing, never mints a code.
	w, resp := doJSON(t, r, http.MethodPost, "/checkin", gin.H{"full_name": "  AMA owusu "})
	require.Equal(t, http.StatusOK, w.Code)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "returning", data["status"])
	assert.NotContains(t, data, "access_code")
	assert.Equal(t, "Ama Owusu", data["full_name"])
}

func TestCheckin_BadRequests(t *testing.T) {
	r := setupRouter(newMemStore(), &fakeAttendance{}, &fakeFeed{})

	// Missing field trips binding, whitespace-only trips the flow.
	w, _ := doJSON(t, r, http.MethodPost, "/checkin", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp := doJSON(t, r, http.MethodPost, "/checkin", gin.H{"full_name": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Error, "empty")
}

func TestVerifyCode(t *testing.T) {
	store := newMemStore()
	store.setCode(uuid.New(), "483920")
	r := setupRouter(store, &fakeAttendance{}, &fakeFeed{})

	tests := []struct {
		name     string
		code     string
		wantCode int
	}{
		{"wrong length", "123", http.StatusBadRequest},
		{"unknown code", "000000", http.StatusUnauthorized},
		{"valid code", "483920", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := doJSON(t, r, http.MethodPost, "/checkin/verify", gin.H{"code": tt.code})
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestConfirm(t *testing.T) {
	store := newMemStore()
	attendance := &fakeAttendance{}
	feed := &fakeFeed{}
	r := setupRouter(store, attendance, feed)

	attendee, _, err := store.Register(context.Background(), "Ama Owusu")
	require.NoError(t, err)
	eventID := uuid.New()

	w, _ := doJSON(t, r, http.MethodPost, "/checkin/confirm", gin.H{
		"attendee_id": attendee.ID,
		"event_id":    eventID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, attendance.marked, 1)
	assert.Equal(t, eventID, attendance.marked[0][0])
	assert.Equal(t, attendee.ID, attendance.marked[0][1])
	assert.Equal(t, []string{"checkin"}, feed.events)
}

func TestConfirm_WithoutEvent(t *testing.T) {
	store := newMemStore()
	attendance := &fakeAttendance{}
	r := setupRouter(store, attendance, &fakeFeed{})

	attendee, _, err := store.Register(context.Background(), "Kofi Mensah")
	require.NoError(t, err)

	w, _ := doJSON(t, r, http.MethodPost, "/checkin/confirm", gin.H{"attendee_id": attendee.ID})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, attendance.marked)
}

func TestConfirm_UnknownAttendee(t *testing.T) {
	r := setupRouter(newMemStore(), &fakeAttendance{}, &fakeFeed{})
	w, _ := doJSON(t, r, http.MethodPost, "/checkin/confirm", gin.H{"attendee_id": uuid.New()})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminListWithCodes(t *testing.T) {
	store := newMemStore()
	r := setupRouter(store, &fakeAttendance{}, &fakeFeed{})

	_, code, err := store.Register(context.Background(), "Ama Owusu")
	require.NoError(t, err)

	w, resp := doJSON(t, r, http.MethodGet, "/admin/attendees", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := resp.Data.(map[string]interface{})
	list := data["attendees"].([]interface{})
	require.Len(t, list, 1)
	entry := list[0].(map[string]interface{})
	assert.Equal(t, "Ama Owusu", entry["full_name"])
	assert.Equal(t, code, entry["code"])
}

func TestAdminResetCode(t *testing.T) {
	store := newMemStore()
	r := setupRouter(store, &fakeAttendance{}, &fakeFeed{})

	attendee, _, err := store.Register(context.Background(), "Ama Owusu")
	require.NoError(t, err)

	w, resp := doJSON(t, r, http.MethodPost, "/admin/attendees/"+attendee.ID.String()+"/reset-code", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := resp.Data.(map[string]interface{})
	newCode := data["access_code"].(string)
	assert.Len(t, newCode, CodeLength)
	assert.Equal(t, newCode, store.codeOf(attendee.ID))
}

func TestAdminResetCode_NotFound(t *testing.T) {
	r := setupRouter(newMemStore(), &fakeAttendance{}, &fakeFeed{})

	w, _ := doJSON(t, r, http.MethodPost, "/admin/attendees/"+uuid.NewString()+"/reset-code", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/admin/attendees/not-a-uuid/reset-code", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminDelete(t *testing.T) {
	store := newMemStore()
	flow := NewFlow(store)
	r := setupRouter(store, &fakeAttendance{}, &fakeFeed{})

	attendee, code, err := store.Register(context.Background(), "Ama Owusu")
	require.NoError(t, err)

	w, _ := doJSON(t, r, http.MethodDelete, "/admin/attendees/"+attendee.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// Both the attendee and their ledger entry are gone.
	found, err := store.FindByName(context.Background(), "Ama Owusu")
	require.NoError(t, err)
	assert.Nil(t, found)
	assert.ErrorIs(t, flow.SubmitCode(context.Background(), code), ErrInvalidCode)
}
