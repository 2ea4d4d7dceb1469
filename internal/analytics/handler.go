package analytics

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cyberlab-events/backend/internal/events"
	"github.com/cyberlab-events/backend/internal/feedback"
	"github.com/cyberlab-events/backend/pkg/response"
)

// Handler serves dashboard analytics.
type Handler struct {
	pool         *pgxpool.Pool
	eventRepo    *events.Repository
	feedbackRepo *feedback.Repository
}

// NewHandler creates an analytics handler.
func NewHandler(pool *pgxpool.Pool, eventRepo *events.Repository, feedbackRepo *feedback.Repository) *Handler {
	return &Handler{pool: pool, eventRepo: eventRepo, feedbackRepo: feedbackRepo}
}

// GetByEvent handles GET /events/:id/analytics (admin).
func (h *Handler) GetByEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.eventRepo.GetByID(c.Request.Context(), eventID)
	if err != nil || e == nil {
		response.NotFound(c, "event not found")
		return
	}

	attendance, err := h.eventRepo.CountAttendance(c.Request.Context(), eventID)
	if err != nil {
		response.Internal(c, "failed to load analytics")
		return
	}
	responses, err := h.feedbackRepo.CountResponsesByEvent(c.Request.Context(), eventID)
	if err != nil {
		response.Internal(c, "failed to load analytics")
		return
	}

	response.OK(c, gin.H{
		"event_id":           eventID,
		"title":              e.Title,
		"attendance":         attendance,
		"feedback_responses": responses,
	})
}

// Overview handles GET /analytics (admin). Platform-wide totals.
func (h *Handler) Overview(c *gin.Context) {
	const q = `SELECT
		(SELECT COUNT(*) FROM attendees),
		(SELECT COUNT(*) FROM events),
		(SELECT COUNT(*) FROM event_attendance),
		(SELECT COUNT(*) FROM feedback_responses)`
	var attendees, eventCount, attendance, responses int
	if err := h.pool.QueryRow(c.Request.Context(), q).
		Scan(&attendees, &eventCount, &attendance, &responses); err != nil {
		response.Internal(c, "failed to load analytics")
		return
	}
	response.OK(c, gin.H{
		"attendees":          attendees,
		"events":             eventCount,
		"checkins":           attendance,
		"feedback_responses": responses,
	})
}
