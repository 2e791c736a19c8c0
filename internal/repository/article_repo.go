package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/pulsenews/authoring-api/internal/database"
	"github.com/pulsenews/authoring-api/internal/models"
)

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

// Insert creates a new article row and returns its id
func (r *articleRepo) Insert(ctx context.Context, article *models.Article) (string, error) {
	if article.ID == "" {
		article.ID = uuid.New().String()
	}
	tagsJSON := marshalTags(article.Tags)

	query := `
		INSERT INTO articles (
			id, slug, title, excerpt, content, image_url, category_id, author_id,
			tags, published, published_at, meta_title, meta_description,
			is_premium, premium_preview_length, ads_enabled, affiliate_products_enabled,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err := r.db.ExecContext(ctx, query,
		article.ID, article.Slug, article.Title, article.Excerpt, article.Content,
		nullable(article.ImageURL), nullable(article.CategoryID), article.AuthorID,
		tagsJSON, article.Published, article.PublishedAt,
		nullable(article.MetaTitle), nullable(article.MetaDescription),
		article.IsPremium, article.PremiumPreviewLength, article.AdsEnabled, article.AffiliateProductsEnabled,
		article.CreatedAt, article.UpdatedAt,
	)
	if err != nil {
		return "", err
	}
	return article.ID, nil
}

// Update replaces the editable state of an existing row
func (r *articleRepo) Update(ctx context.Context, id string, article *models.Article) error {
	tagsJSON := marshalTags(article.Tags)

	query := `
		UPDATE articles SET
			slug = $2, title = $3, excerpt = $4, content = $5, image_url = $6,
			category_id = $7, tags = $8, published = $9, published_at = $10,
			meta_title = $11, meta_description = $12,
			is_premium = $13, premium_preview_length = $14, ads_enabled = $15,
			affiliate_products_enabled = $16, updated_at = $17
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		id, article.Slug, article.Title, article.Excerpt, article.Content,
		nullable(article.ImageURL), nullable(article.CategoryID), tagsJSON,
		article.Published, article.PublishedAt,
		nullable(article.MetaTitle), nullable(article.MetaDescription),
		article.IsPremium, article.PremiumPreviewLength, article.AdsEnabled,
		article.AffiliateProductsEnabled, article.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateContent pushes an autosave patch: editable content fields and
// updated_at only. It never creates a row, flips published, or touches
// author_id or lifecycle timestamps.
func (r *articleRepo) UpdateContent(ctx context.Context, id string, patch *models.ContentPatch) error {
	tagsJSON := marshalTags(patch.Tags)

	query := `
		UPDATE articles SET
			slug = $2, title = $3, excerpt = $4, content = $5, image_url = $6,
			category_id = $7, tags = $8, meta_title = $9, meta_description = $10,
			updated_at = $11
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		id, patch.Slug, patch.Title, patch.Excerpt, patch.Content,
		nullable(patch.ImageURL), nullable(patch.CategoryID), tagsJSON,
		nullable(patch.MetaTitle), nullable(patch.MetaDescription),
		time.Now(),
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetByID retrieves an article by id, nil when not found
func (r *articleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	query := `
		SELECT id, slug, title, excerpt, content, image_url, category_id, author_id,
		       tags, published, published_at, meta_title, meta_description,
		       is_premium, premium_preview_length, ads_enabled, affiliate_products_enabled,
		       created_at, updated_at
		FROM articles WHERE id = $1
	`

	var article models.Article
	var tagsJSON []byte
	var imageURL, categoryID, metaTitle, metaDesc sql.NullString
	var publishedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&article.ID, &article.Slug, &article.Title, &article.Excerpt, &article.Content,
		&imageURL, &categoryID, &article.AuthorID,
		&tagsJSON, &article.Published, &publishedAt, &metaTitle, &metaDesc,
		&article.IsPremium, &article.PremiumPreviewLength, &article.AdsEnabled,
		&article.AffiliateProductsEnabled, &article.CreatedAt, &article.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	json.Unmarshal(tagsJSON, &article.Tags)
	article.ImageURL = imageURL.String
	article.CategoryID = categoryID.String
	article.MetaTitle = metaTitle.String
	article.MetaDescription = metaDesc.String
	if publishedAt.Valid {
		article.PublishedAt = &publishedAt.Time
	}

	return &article, nil
}

// FindIDBySlug returns the id of the article owning slug, excluding
// excludeID when editing an existing article. Empty string means the slug
// is free.
func (r *articleRepo) FindIDBySlug(ctx context.Context, slug string, excludeID string) (string, error) {
	var id string
	var err error
	if excludeID != "" {
		err = r.db.QueryRowContext(ctx,
			"SELECT id FROM articles WHERE slug = $1 AND id <> $2 LIMIT 1", slug, excludeID).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx,
			"SELECT id FROM articles WHERE slug = $1 LIMIT 1", slug).Scan(&id)
	}
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func marshalTags(tags []string) string {
	if tags == nil {
		return "[]"
	}
	raw, _ := json.Marshal(tags)
	return string(raw)
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
