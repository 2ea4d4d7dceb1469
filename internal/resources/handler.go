package resources

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cyberlab-events/backend/internal/events"
	"github.com/cyberlab-events/backend/internal/middleware"
	"github.com/cyberlab-events/backend/internal/models"
	"github.com/cyberlab-events/backend/pkg/response"
	"github.com/cyberlab-events/backend/pkg/storage"
)

// UploadURLRequest is the body for POST /events/:id/resources/generate-upload-url.
type UploadURLRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type"`
}

// CreateRequest registers metadata for a file already uploaded via presigned URL.
type CreateRequest struct {
	Title       string `json:"title" binding:"required"`
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

// Handler handles workshop resource endpoints.
type Handler struct {
	repo      *Repository
	eventRepo *events.Repository
	s3        *storage.S3
	logger    *zap.Logger
}

// NewHandler creates a resources handler.
func NewHandler(repo *Repository, eventRepo *events.Repository, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, eventRepo: eventRepo, s3: s3, logger: logger}
}

func (h *Handler) eventOr404(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return uuid.Nil, false
	}
	e, err := h.eventRepo.GetByID(c.Request.Context(), id)
	if err != nil || e == nil {
		response.NotFound(c, "event not found")
		return uuid.Nil, false
	}
	return id, true
}

// Upload handles POST /events/:id/resources/upload (admin, multipart form:
// title + file). Streams the file to S3 and stores metadata.
func (h *Handler) Upload(c *gin.Context) {
	eventID, ok := h.eventOr404(c)
	if !ok {
		return
	}
	if h.s3 == nil {
		response.ServiceUnavailable(c, "file storage not configured")
		return
	}

	title := c.PostForm("title")
	if title == "" {
		response.BadRequest(c, "title required")
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file required")
		return
	}
	if fileHeader.Size > storage.MaxResourceFileSize {
		response.BadRequest(c, "file too large")
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !storage.ValidateResourceFileType(contentType, fileHeader.Filename) {
		response.BadRequest(c, "unsupported file type")
		return
	}
	if contentType == "" {
		contentType = storage.ContentTypeForFilename(fileHeader.Filename)
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Internal(c, "failed to read file")
		return
	}
	defer file.Close()

	key := storage.ResourceKey(eventID.String(), fileHeader.Filename)
	if err := h.s3.Upload(c.Request.Context(), key, contentType, file, fileHeader.Size); err != nil {
		h.logger.Error("resource upload failed", zap.Error(err), zap.String("key", key))
		response.Internal(c, "failed to upload file")
		return
	}

	uploadedBy := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	res := &models.Resource{
		EventID:     eventID,
		Title:       title,
		FileName:    fileHeader.Filename,
		S3Key:       key,
		ContentType: contentType,
		SizeBytes:   fileHeader.Size,
		UploadedBy:  uploadedBy,
	}
	if err := h.repo.Create(c.Request.Context(), res); err != nil {
		h.logger.Error("create resource failed", zap.Error(err), zap.String("key", key))
		response.Internal(c, "failed to save resource")
		return
	}
	response.Created(c, res)
}

// GenerateUploadURL handles POST /events/:id/resources/generate-upload-url
// (admin). Returns a presigned PUT URL for direct browser upload.
func (h *Handler) GenerateUploadURL(c *gin.Context) {
	eventID, ok := h.eventOr404(c)
	if !ok {
		return
	}
	if h.s3 == nil {
		response.ServiceUnavailable(c, "file storage not configured")
		return
	}

	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !storage.ValidateResourceFileType(req.ContentType, req.FileName) {
		response.BadRequest(c, "unsupported file type")
		return
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = storage.ContentTypeForFilename(req.FileName)
	}

	key := storage.ResourceKey(eventID.String(), req.FileName)
	url, err := h.s3.GeneratePresignedUploadURL(c.Request.Context(), key, contentType, h.s3.PresignExpire())
	if err != nil {
		h.logger.Error("presign upload failed", zap.Error(err), zap.String("key", key))
		response.Internal(c, "failed to generate upload URL")
		return
	}
	response.OK(c, gin.H{"upload_url": url, "s3_key": key, "content_type": contentType})
}

// Create handles POST /events/:id/resources (admin). Registers metadata for a
// file uploaded via presigned URL.
func (h *Handler) Create(c *gin.Context) {
	eventID, ok := h.eventOr404(c)
	if !ok {
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = storage.ContentTypeForFilename(req.FileName)
	}
	uploadedBy := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	res := &models.Resource{
		EventID:     eventID,
		Title:       req.Title,
		FileName:    req.FileName,
		S3Key:       storage.ResourceKey(eventID.String(), req.FileName),
		ContentType: contentType,
		SizeBytes:   req.SizeBytes,
		UploadedBy:  uploadedBy,
	}
	if err := h.repo.Create(c.Request.Context(), res); err != nil {
		response.Internal(c, "failed to save resource")
		return
	}
	response.Created(c, res)
}

// ListByEvent handles GET /events/:id/resources (access-code gated).
func (h *Handler) ListByEvent(c *gin.Context) {
	eventID, ok := h.eventOr404(c)
	if !ok {
		return
	}
	list, err := h.repo.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		response.Internal(c, "failed to list resources")
		return
	}
	response.OK(c, gin.H{"resources": list})
}

// DownloadURL handles GET /resources/:id/download-url (access-code gated).
func (h *Handler) DownloadURL(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid resource id")
		return
	}
	res, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load resource")
		return
	}
	if res == nil {
		response.NotFound(c, "resource not found")
		return
	}
	if h.s3 == nil {
		response.ServiceUnavailable(c, "file storage not configured")
		return
	}
	url, err := h.s3.GeneratePresignedDownloadURL(c.Request.Context(), res.S3Key, h.s3.PresignExpire())
	if err != nil {
		h.logger.Error("presign download failed", zap.Error(err), zap.String("key", res.S3Key))
		response.Internal(c, "failed to generate download URL")
		return
	}
	response.OK(c, gin.H{"download_url": url, "file_name": res.FileName, "expires_in_minutes": int(h.s3.PresignExpire().Minutes())})
}

// Delete handles DELETE /resources/:id (admin). Removes the S3 object and metadata.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid resource id")
		return
	}
	res, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load resource")
		return
	}
	if res == nil {
		response.NotFound(c, "resource not found")
		return
	}
	if h.s3 != nil {
		if err := h.s3.DeleteObject(c.Request.Context(), res.S3Key); err != nil {
			h.logger.Warn("delete s3 object failed", zap.Error(err), zap.String("key", res.S3Key))
		}
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to delete resource")
		return
	}
	response.NoContent(c)
}
