package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pulsenews/authoring-api/internal/config"
	"github.com/pulsenews/authoring-api/internal/models"
	"github.com/pulsenews/authoring-api/internal/service"
	"github.com/pulsenews/authoring-api/internal/validation"
)

// DraftHandler exposes the form-submission surface of the authoring
// pipeline: edits feed the autosave scheduler, submit runs the publish
// controller.
type DraftHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewDraftHandler creates a new DraftHandler
func NewDraftHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *DraftHandler {
	return &DraftHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "draft").Logger(),
	}
}

func draftKeyParam(c *gin.Context) string {
	key := c.Param("key")
	if key == "new" {
		return models.NewArticleKey
	}
	return key
}

// Open handles GET /v1/drafts/:key — opens or restores an editing session
func (h *DraftHandler) Open(c *gin.Context) {
	key := draftKeyParam(c)

	session, err := h.services.Sessions.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, service.ErrDraftNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "draft not found"})
			return
		}
		h.log.Error().Err(err).Str("key", key).Msg("Failed to open editing session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open draft"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"draft":    session.Draft(),
		"autosave": session.State(),
	})
}

// ApplyEdits handles POST /v1/drafts/:key/edits
func (h *DraftHandler) ApplyEdits(c *gin.Context) {
	key := draftKeyParam(c)

	var req struct {
		Edits []service.Edit `json:"edits" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "edits are required"})
		return
	}

	session, err := h.services.Sessions.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, service.ErrDraftNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "draft not found"})
			return
		}
		h.log.Error().Err(err).Str("key", key).Msg("Failed to open editing session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open draft"})
		return
	}

	session.ApplyEdit(req.Edits)

	c.JSON(http.StatusOK, gin.H{
		"draft":    session.Draft(),
		"autosave": session.State(),
	})
}

// StageImage handles POST /v1/drafts/:key/image — stages a local image
// file; the upload to object storage happens on publish.
func (h *DraftHandler) StageImage(c *gin.Context) {
	key := draftKeyParam(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file upload is required"})
		return
	}
	defer file.Close()

	if header.Size > h.cfg.Storage.MaxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("file too large, max size is %d MB", h.cfg.Storage.MaxUploadSize/(1024*1024)),
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported image type"})
		return
	}

	session, err := h.services.Sessions.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, service.ErrDraftNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "draft not found"})
			return
		}
		h.log.Error().Err(err).Str("key", key).Msg("Failed to open editing session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open draft"})
		return
	}

	stagingDir := filepath.Join(h.cfg.Storage.UploadDir, "staging")
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		h.log.Error().Err(err).Msg("Failed to create staging directory")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to stage image"})
		return
	}

	stagedPath := filepath.Join(stagingDir, uuid.New().String()[:8]+ext)
	dst, err := os.Create(stagedPath)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create staged file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to stage image"})
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		h.log.Error().Err(err).Msg("Failed to write staged file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to stage image"})
		return
	}

	session.StageImage(stagedPath)

	c.JSON(http.StatusOK, gin.H{"staged": header.Filename})
}

// AutosaveState handles GET /v1/drafts/:key/autosave — the UI indicator
func (h *DraftHandler) AutosaveState(c *gin.Context) {
	key := draftKeyParam(c)

	session, err := h.services.Sessions.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, service.ErrDraftNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "draft not found"})
			return
		}
		h.log.Error().Err(err).Str("key", key).Msg("Failed to open editing session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open draft"})
		return
	}

	c.JSON(http.StatusOK, session.State())
}

// Submit handles POST /v1/drafts/:key/submit — body {"draft": bool}
func (h *DraftHandler) Submit(c *gin.Context) {
	key := draftKeyParam(c)

	var req struct {
		Draft bool `json:"draft"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session, err := h.services.Sessions.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, service.ErrDraftNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "draft not found"})
			return
		}
		h.log.Error().Err(err).Str("key", key).Msg("Failed to open editing session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open draft"})
		return
	}

	token := c.GetHeader("Authorization")
	article, err := h.services.Publisher.Publish(c.Request.Context(), session, token, req.Draft)
	if err != nil {
		h.respondPublishError(c, key, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"article": article,
		"draft":   req.Draft,
	})
}

// Close handles DELETE /v1/drafts/:key — unmounts the editing session,
// cancelling any pending autosave timer.
func (h *DraftHandler) Close(c *gin.Context) {
	key := draftKeyParam(c)
	h.services.Sessions.Close(key)
	c.Status(http.StatusNoContent)
}

// respondPublishError maps the pipeline error taxonomy onto HTTP statuses
func (h *DraftHandler) respondPublishError(c *gin.Context, key string, err error) {
	var violation *validation.Violation
	var dup *service.DuplicateSlugError
	var upload *service.UploadError
	var remote *service.RemoteWriteError

	switch {
	case errors.Is(err, service.ErrAuthenticationRequired):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":    "authentication required",
			"redirect": "/signin",
		})
	case errors.As(err, &violation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": violation.Message,
			"field": violation.Field,
		})
	case errors.As(err, &dup):
		c.JSON(http.StatusConflict, gin.H{
			"error": dup.Error(),
			"field": "slug",
		})
	case errors.As(err, &upload):
		h.log.Error().Err(err).Str("key", key).Msg("Image upload failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": upload.Error()})
	case errors.As(err, &remote):
		h.log.Error().Err(err).Str("key", key).Msg("Remote write failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": remote.Error()})
	default:
		h.log.Error().Err(err).Str("key", key).Msg("Publish failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save article"})
	}
}
