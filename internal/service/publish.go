package service

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulsenews/authoring-api/internal/auth"
	"github.com/pulsenews/authoring-api/internal/cache"
	"github.com/pulsenews/authoring-api/internal/draftstore"
	"github.com/pulsenews/authoring-api/internal/models"
	"github.com/pulsenews/authoring-api/internal/repository"
	"github.com/pulsenews/authoring-api/internal/slug"
	"github.com/pulsenews/authoring-api/internal/storage"
	"github.com/pulsenews/authoring-api/internal/validation"
)

// Publisher orchestrates the validate, de-duplicate-slug, persist,
// invalidate-caches, clear-draft sequence for explicit draft-save and
// publish actions. It is mutually exclusive with the autosave scheduler
// over any one draft.
type Publisher struct {
	articles    repository.ArticleRepository
	categories  repository.CategoryRepository
	drafts      draftstore.Store
	uploader    storage.Uploader
	auth        auth.Service
	invalidator cache.Invalidator
	now         func() time.Time
	log         zerolog.Logger
}

// NewPublisher creates the publish controller
func NewPublisher(repos *repository.Repositories, drafts draftstore.Store,
	uploader storage.Uploader, authSvc auth.Service, invalidator cache.Invalidator,
	log zerolog.Logger) *Publisher {
	return &Publisher{
		articles:    repos.Article,
		categories:  repos.Category,
		drafts:      drafts,
		uploader:    uploader,
		auth:        authSvc,
		invalidator: invalidator,
		now:         time.Now,
		log:         log.With().Str("service", "publish").Logger(),
	}
}

// Publish runs the full sequence for the session's draft. asDraft selects
// save-as-draft over publish. Every local precondition failure returns
// before any remote write; a remote write failure leaves the local
// snapshot intact so the user can retry.
func (p *Publisher) Publish(ctx context.Context, session *Session, token string, asDraft bool) (*models.Article, error) {
	// 1. Cancel any pending autosave and block re-arming for the duration
	working := session.beginPublish()
	defer session.endPublish()

	key := models.DraftKey(working.ID)

	// 2. Resolve the acting identity; abort before any write without one
	identity, err := p.auth.CurrentUser(ctx, token)
	if err != nil {
		return nil, ErrAuthenticationRequired
	}

	// 3. Upload a staged image before touching the article row
	if working.PendingImage != "" {
		url, err := p.uploadStagedImage(ctx, working.PendingImage)
		if err != nil {
			return nil, &UploadError{Err: err}
		}
		working.ImageURL = url
		working.PendingImage = ""
	}

	// 4. Normalize tags and resolve the category default
	working.Tags = validation.NormalizeTags(working.Tags)
	if err := p.resolveCategory(ctx, working); err != nil {
		return nil, err
	}

	// 5. Normalize the slug from the current slug-or-title
	source := working.Slug
	if source == "" {
		source = working.Title
	}
	working.Slug = slug.Normalize(source)

	// 6. Validate the assembled record; first violation wins
	if v := validation.ValidateDraft(working); v != nil {
		return nil, v
	}

	// 7. Reject slugs owned by any other article
	otherID, err := p.articles.FindIDBySlug(ctx, working.Slug, working.ID)
	if err != nil {
		return nil, &RemoteWriteError{Op: "slug lookup", Err: err}
	}
	if otherID != "" {
		return nil, &DuplicateSlugError{Slug: working.Slug}
	}

	// 8. Category precondition, same predicate as the validator rule
	if validation.MissingCategory(working.CategoryID) {
		return nil, &validation.Violation{Field: "category_id", Message: "category is required"}
	}

	// 9. Build the final record
	now := p.now()
	article := articleFromDraft(working)
	article.UpdatedAt = now
	if asDraft {
		article.Published = false
	} else {
		article.Published = true
		if article.PublishedAt == nil {
			// Stamped exactly once, on the first transition to published
			article.PublishedAt = &now
		}
	}

	// 10. Single atomic row write
	if working.ID != "" {
		if err := p.articles.Update(ctx, working.ID, article); err != nil {
			return nil, &RemoteWriteError{Op: "update", Err: err}
		}
		article.ID = working.ID
	} else {
		article.CreatedAt = now
		article.AuthorID = identity.ID
		id, err := p.articles.Insert(ctx, article)
		if err != nil {
			return nil, &RemoteWriteError{Op: "insert", Err: err}
		}
		article.ID = id
	}

	// 11. Clear the local draft, reset autosave state, invalidate listings
	if err := p.drafts.Remove(key); err != nil {
		p.log.Warn().Err(err).Str("key", key).Msg("Failed to clear local draft after publish")
	}
	if err := p.invalidator.InvalidateArticleLists(ctx); err != nil {
		p.log.Warn().Err(err).Msg("Failed to invalidate article listing caches")
	}

	published := draftFromArticle(article)
	session.commitPublish(published)

	p.log.Info().
		Str("article_id", article.ID).
		Str("slug", article.Slug).
		Bool("draft", asDraft).
		Msg("Article persisted")

	// 12. endPublish runs deferred in all paths so autosave can resume
	return article, nil
}

func (p *Publisher) uploadStagedImage(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	url, err := p.uploader.Upload(ctx, filepath.Base(path), f)
	if err != nil {
		return "", err
	}
	// Best effort: the staged file is no longer needed
	os.Remove(path)
	return url, nil
}

// resolveCategory falls back to the first available category only when
// none was chosen. No categories at all is a missing-category failure.
func (p *Publisher) resolveCategory(ctx context.Context, d *models.ArticleDraft) error {
	if !validation.MissingCategory(d.CategoryID) {
		return nil
	}
	categories, err := p.categories.List(ctx)
	if err != nil {
		return &RemoteWriteError{Op: "categories", Err: err}
	}
	if len(categories) == 0 {
		return &validation.Violation{Field: "category_id", Message: "category is required"}
	}
	d.CategoryID = categories[0].ID
	return nil
}

func articleFromDraft(d *models.ArticleDraft) *models.Article {
	return &models.Article{
		ID:                       d.ID,
		Slug:                     d.Slug,
		Title:                    d.Title,
		Excerpt:                  d.Excerpt,
		Content:                  d.Content,
		ImageURL:                 d.ImageURL,
		CategoryID:               d.CategoryID,
		Tags:                     append([]string(nil), d.Tags...),
		Published:                d.Published,
		PublishedAt:              d.PublishedAt,
		MetaTitle:                d.MetaTitle,
		MetaDescription:          d.MetaDescription,
		IsPremium:                d.IsPremium,
		PremiumPreviewLength:     d.PremiumPreviewLength,
		AdsEnabled:               d.AdsEnabled,
		AffiliateProductsEnabled: d.AffiliateProductsEnabled,
	}
}
