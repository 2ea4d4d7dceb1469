package events

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cyberlab-events/backend/internal/middleware"
	"github.com/cyberlab-events/backend/internal/models"
	"github.com/cyberlab-events/backend/pkg/response"
)

// CreateRequest is the body for POST /events.
type CreateRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Topic       string  `json:"topic"`
	Venue       string  `json:"venue"`
	StartsAt    string  `json:"starts_at" binding:"required"`
	EndsAt      *string `json:"ends_at"`
}

// UpdateRequest is the body for PATCH /events/:id. Nil fields are unchanged.
type UpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Topic       *string `json:"topic"`
	Venue       *string `json:"venue"`
	StartsAt    *string `json:"starts_at"`
	EndsAt      *string `json:"ends_at"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	repo    *Repository
	baseURL string
	qrSize  int
}

// NewHandler creates an events handler. baseURL and qrSize configure the
// check-in QR code images.
func NewHandler(repo *Repository, baseURL string, qrSize int) *Handler {
	return &Handler{repo: repo, baseURL: baseURL, qrSize: qrSize}
}

// Create handles POST /events (admin).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		response.BadRequest(c, "invalid starts_at (RFC3339 expected)")
		return
	}
	var endsAt *time.Time
	if req.EndsAt != nil {
		t, err := time.Parse(time.RFC3339, *req.EndsAt)
		if err != nil {
			response.BadRequest(c, "invalid ends_at (RFC3339 expected)")
			return
		}
		endsAt = &t
	}
	createdBy := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	e := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		Topic:       req.Topic,
		Venue:       req.Venue,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		CreatedBy:   createdBy,
	}
	if err := h.repo.Create(c.Request.Context(), e); err != nil {
		response.Internal(c, "failed to create event")
		return
	}
	response.Created(c, e)
}

// List handles GET /admin/events (all events, admin view).
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, gin.H{"events": list})
}

// ListUpcoming handles GET /events (public listing for the welcome screen).
func (h *Handler) ListUpcoming(c *gin.Context) {
	list, err := h.repo.ListUpcoming(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, gin.H{"events": list})
}

// GetByID handles GET /events/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load event")
		return
	}
	if e == nil {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, e)
}

// Update handles PATCH /events/:id (admin).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load event")
		return
	}
	if e == nil {
		response.NotFound(c, "event not found")
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Title != nil {
		e.Title = *req.Title
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Topic != nil {
		e.Topic = *req.Topic
	}
	if req.Venue != nil {
		e.Venue = *req.Venue
	}
	if req.StartsAt != nil {
		t, err := time.Parse(time.RFC3339, *req.StartsAt)
		if err != nil {
			response.BadRequest(c, "invalid starts_at (RFC3339 expected)")
			return
		}
		e.StartsAt = t
	}
	if req.EndsAt != nil {
		t, err := time.Parse(time.RFC3339, *req.EndsAt)
		if err != nil {
			response.BadRequest(c, "invalid ends_at (RFC3339 expected)")
			return
		}
		e.EndsAt = &t
	}
	if err := h.repo.Update(c.Request.Context(), e); err != nil {
		response.Internal(c, "failed to update event")
		return
	}
	response.OK(c, e)
}

// Delete handles DELETE /events/:id (admin).
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to delete event")
		return
	}
	response.NoContent(c)
}

// QRCode handles GET /events/:id/qr. Serves the check-in QR code as PNG for
// printing and on-site display.
func (h *Handler) QRCode(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load event")
		return
	}
	if e == nil {
		response.NotFound(c, "event not found")
		return
	}
	png, err := CheckinQR(h.baseURL, id.String(), h.qrSize, nil)
	if err != nil {
		response.Internal(c, "failed to generate QR code")
		return
	}
	c.Header("Content-Disposition", "inline; filename=\"checkin-qr.png\"")
	c.Data(200, "image/png", png)
}

// Attendance handles GET /events/:id/attendance (admin).
func (h *Handler) Attendance(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	list, err := h.repo.ListAttendance(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to list attendance")
		return
	}
	response.OK(c, gin.H{"attendance": list})
}
