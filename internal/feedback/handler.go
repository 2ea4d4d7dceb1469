package feedback

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cyberlab-events/backend/internal/events"
	"github.com/cyberlab-events/backend/internal/models"
	"github.com/cyberlab-events/backend/pkg/queue"
	"github.com/cyberlab-events/backend/pkg/response"
)

// CreateQuestionRequest is the body for POST /events/:id/feedback/questions.
type CreateQuestionRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// SubmitResponseRequest is the body for POST /feedback/questions/:id/responses.
type SubmitResponseRequest struct {
	AttendeeID uuid.UUID `json:"attendee_id" binding:"required"`
	Content    string    `json:"content" binding:"required"`
}

// Handler handles feedback HTTP endpoints.
type Handler struct {
	repo      *Repository
	eventRepo *events.Repository
	jobs      *queue.Queue
	logger    *zap.Logger
}

// NewHandler creates a feedback handler.
func NewHandler(repo *Repository, eventRepo *events.Repository, jobs *queue.Queue, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, eventRepo: eventRepo, jobs: jobs, logger: logger}
}

// CreateQuestion handles POST /events/:id/feedback/questions (admin).
func (h *Handler) CreateQuestion(c *gin.Context) {
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

	var req CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	q := &models.FeedbackQuestion{EventID: eventID, Prompt: req.Prompt}
	if err := h.repo.CreateQuestion(c.Request.Context(), q); err != nil {
		response.Internal(c, "failed to create question")
		return
	}
	response.Created(c, q)
}

// ListQuestions handles GET /events/:id/feedback/questions (access-code gated
// for attendees; also used by the admin dashboard).
func (h *Handler) ListQuestions(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	list, err := h.repo.ListQuestionsByEvent(c.Request.Context(), eventID)
	if err != nil {
		response.Internal(c, "failed to list questions")
		return
	}
	response.OK(c, gin.H{"questions": list})
}

// SubmitResponse handles POST /feedback/questions/:id/responses (access-code gated).
func (h *Handler) SubmitResponse(c *gin.Context) {
	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}
	q, err := h.repo.GetQuestionByID(c.Request.Context(), questionID)
	if err != nil {
		response.Internal(c, "failed to load question")
		return
	}
	if q == nil {
		response.NotFound(c, "question not found")
		return
	}

	var req SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	resp := &models.FeedbackResponse{
		QuestionID: questionID,
		AttendeeID: req.AttendeeID,
		Content:    req.Content,
	}
	if err := h.repo.CreateResponse(c.Request.Context(), resp); err != nil {
		h.logger.Error("create response failed", zap.Error(err), zap.String("question_id", questionID.String()))
		response.Internal(c, "failed to submit response")
		return
	}
	response.Created(c, resp)
}

// ListResponses handles GET /feedback/questions/:id/responses (admin).
func (h *Handler) ListResponses(c *gin.Context) {
	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}
	list, err := h.repo.ListResponsesByQuestion(c.Request.Context(), questionID)
	if err != nil {
		response.Internal(c, "failed to list responses")
		return
	}
	response.OK(c, gin.H{"responses": list})
}

// Suggest handles POST /feedback/questions/:id/suggest (admin). Enqueues an AI
// answer-suggestion job; the worker fills in suggested_answer asynchronously.
func (h *Handler) Suggest(c *gin.Context) {
	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}
	q, err := h.repo.GetQuestionByID(c.Request.Context(), questionID)
	if err != nil {
		response.Internal(c, "failed to load question")
		return
	}
	if q == nil {
		response.NotFound(c, "question not found")
		return
	}
	if h.jobs == nil {
		response.ServiceUnavailable(c, "suggestions not available")
		return
	}

	err = h.jobs.EnqueueSuggestion(c.Request.Context(), queue.SuggestionPayload{
		QuestionID: q.ID,
		EventID:    q.EventID,
		Prompt:     q.Prompt,
	})
	if err != nil {
		h.logger.Error("enqueue suggestion failed", zap.Error(err), zap.String("question_id", q.ID.String()))
		response.Internal(c, "failed to request suggestion")
		return
	}
	response.OK(c, gin.H{"id": q.ID, "status": "queued"})
}

// DeleteQuestion handles DELETE /feedback/questions/:id (admin).
func (h *Handler) DeleteQuestion(c *gin.Context) {
	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}
	if err := h.repo.DeleteQuestion(c.Request.Context(), questionID); err != nil {
		response.Internal(c, "failed to delete question")
		return
	}
	response.NoContent(c)
}
