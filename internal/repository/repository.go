package repository

import (
	"context"

	"github.com/pulsenews/authoring-api/internal/database"
	"github.com/pulsenews/authoring-api/internal/models"
)

// ArticleRepository defines the remote article store operations the
// authoring pipeline consumes. Every call is a single atomic row
// operation; partial multi-field writes are not possible.
type ArticleRepository interface {
	Insert(ctx context.Context, article *models.Article) (string, error)
	Update(ctx context.Context, id string, article *models.Article) error
	UpdateContent(ctx context.Context, id string, patch *models.ContentPatch) error
	GetByID(ctx context.Context, id string) (*models.Article, error)
	FindIDBySlug(ctx context.Context, slug string, excludeID string) (string, error)
}

// CategoryRepository defines category lookups
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Article  ArticleRepository
	Category CategoryRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Article:  NewArticleRepo(db),
		Category: NewCategoryRepo(db),
	}
}
