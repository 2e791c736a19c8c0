package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pulsenews/authoring-api/internal/repository"
)

// CategoryHandler serves category lookups for the authoring form
type CategoryHandler struct {
	categories repository.CategoryRepository
	log        zerolog.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categories repository.CategoryRepository, log zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		categories: categories,
		log:        log.With().Str("handler", "category").Logger(),
	}
}

// List handles GET /v1/categories
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list categories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
