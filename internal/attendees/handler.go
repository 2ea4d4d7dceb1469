package attendees

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cyberlab-events/backend/internal/models"
	"github.com/cyberlab-events/backend/pkg/response"
)

// AdminStore extends Store with the admin reset/delete/list surface.
type AdminStore interface {
	Store
	GetByID(ctx context.Context, id uuid.UUID) (*models.Attendee, error)
	Reset(ctx context.Context, attendeeID uuid.UUID) (string, error)
	DeleteAttendee(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]models.Attendee, error)
	ListWithCodes(ctx context.Context) ([]models.AttendeeWithCode, error)
}

// AttendanceMarker records that an attendee checked in to an event.
type AttendanceMarker interface {
	MarkAttendance(ctx context.Context, eventID, attendeeID uuid.UUID) error
}

// Publisher pushes check-in events to the realtime dashboard feed.
type Publisher interface {
	PublishToEventOnly(eventID uuid.UUID, event string, payload interface{})
}

// CheckinRequest is the body for POST /checkin.
type CheckinRequest struct {
	FullName string `json:"full_name" binding:"required"`
}

// VerifyRequest is the body for POST /checkin/verify.
type VerifyRequest struct {
	Code string `json:"code" binding:"required"`
}

// ConfirmRequest is the body for POST /checkin/confirm. EventID marks
// attendance for that event when supplied.
type ConfirmRequest struct {
	AttendeeID uuid.UUID  `json:"attendee_id" binding:"required"`
	EventID    *uuid.UUID `json:"event_id,omitempty"`
}

// Handler handles the attendee check-in flow and admin attendee endpoints.
type Handler struct {
	flow       *Flow
	store      AdminStore
	attendance AttendanceMarker
	feed       Publisher
	logger     *zap.Logger
}

// NewHandler creates an attendees handler.
func NewHandler(store AdminStore, attendance AttendanceMarker, feed Publisher, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{flow: NewFlow(store), store: store, attendance: attendance, feed: feed, logger: logger}
}

// Checkin handles POST /checkin. Routes a submitted name to the new-attendee
// branch (register + fresh code for display) or the returning-attendee branch
// (code entry, no code generated).
func (h *Handler) Checkin(c *gin.Context) {
	var req CheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	result, err := h.flow.SubmitName(c.Request.Context(), req.FullName)
	if err != nil {
		if errors.Is(err, ErrEmptyName) {
			response.BadRequest(c, err.Error())
			return
		}
		h.logger.Error("checkin failed", zap.Error(err), zap.String("name", req.FullName))
		response.Internal(c, "failed to check in")
		return
	}

	switch result.Outcome {
	case OutcomeRegistered:
		response.Created(c, gin.H{
			"status":      string(OutcomeRegistered),
			"attendee":    result.Attendee,
			"access_code": result.AccessCode,
		})
	default:
		response.OK(c, gin.H{
			"status":      string(OutcomeReturning),
			"attendee_id": result.Attendee.ID,
			"full_name":   result.Attendee.FullName,
		})
	}
}

// VerifyCode handles POST /checkin/verify. An invalid code leaves the caller
// on the code-entry step; retries are unlimited.
func (h *Handler) VerifyCode(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if err := h.flow.SubmitCode(c.Request.Context(), req.Code); err != nil {
		switch {
		case errors.Is(err, ErrCodeLength):
			response.BadRequest(c, err.Error())
		case errors.Is(err, ErrInvalidCode):
			response.Unauthorized(c, err.Error())
		default:
			h.logger.Error("verify code failed", zap.Error(err))
			response.Internal(c, "failed to verify code")
		}
		return
	}
	response.OK(c, gin.H{"status": "verified"})
}

// Confirm handles POST /checkin/confirm ("I have saved my code"). Marks
// attendance when an event id is supplied and pushes the check-in to the
// dashboard feed.
func (h *Handler) Confirm(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	attendee, err := h.store.GetByID(c.Request.Context(), req.AttendeeID)
	if err != nil {
		h.logger.Error("confirm lookup failed", zap.Error(err))
		response.Internal(c, "failed to confirm check-in")
		return
	}
	if attendee == nil {
		response.NotFound(c, "attendee not found")
		return
	}

	if req.EventID != nil {
		if err := h.attendance.MarkAttendance(c.Request.Context(), *req.EventID, attendee.ID); err != nil {
			h.logger.Error("mark attendance failed", zap.Error(err),
				zap.String("event_id", req.EventID.String()), zap.String("attendee_id", attendee.ID.String()))
			response.Internal(c, "failed to record attendance")
			return
		}
		if h.feed != nil {
			h.feed.PublishToEventOnly(*req.EventID, "checkin", gin.H{
				"attendee_id": attendee.ID,
				"full_name":   attendee.FullName,
			})
		}
	}
	response.OK(c, gin.H{"status": "confirmed"})
}

// ListWithCodes handles GET /admin/attendees.
func (h *Handler) ListWithCodes(c *gin.Context) {
	list, err := h.store.ListWithCodes(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list attendees")
		return
	}
	response.OK(c, gin.H{"attendees": list})
}

// ResetCode handles POST /admin/attendees/:id/reset-code. Invalidates the
// attendee's current code and returns the replacement.
func (h *Handler) ResetCode(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid attendee id")
		return
	}
	attendee, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to reset code")
		return
	}
	if attendee == nil {
		response.NotFound(c, "attendee not found")
		return
	}
	code, err := h.store.Reset(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("reset code failed", zap.Error(err), zap.String("attendee_id", id.String()))
		response.Internal(c, "failed to reset code")
		return
	}
	response.OK(c, gin.H{"attendee_id": id, "access_code": code})
}

// Delete handles DELETE /admin/attendees/:id. Cascades to the ledger.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid attendee id")
		return
	}
	if err := h.store.DeleteAttendee(c.Request.Context(), id); err != nil {
		h.logger.Error("delete attendee failed", zap.Error(err), zap.String("attendee_id", id.String()))
		response.Internal(c, "failed to delete attendee")
		return
	}
	response.NoContent(c)
}
