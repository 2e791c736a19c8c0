package models

import (
	"strings"
	"time"
)

// Article represents a persisted article row in the remote store
type Article struct {
	ID                       string     `json:"id" db:"id"`
	Slug                     string     `json:"slug" db:"slug"`
	Title                    string     `json:"title" db:"title"`
	Excerpt                  string     `json:"excerpt" db:"excerpt"`
	Content                  string     `json:"content" db:"content"`
	ImageURL                 string     `json:"image_url,omitempty" db:"image_url"`
	CategoryID               string     `json:"category_id" db:"category_id"`
	AuthorID                 string     `json:"author_id" db:"author_id"`
	Tags                     []string   `json:"tags" db:"-"` // Stored as JSON string in DB
	Published                bool       `json:"published" db:"published"`
	PublishedAt              *time.Time `json:"published_at,omitempty" db:"published_at"`
	MetaTitle                string     `json:"meta_title,omitempty" db:"meta_title"`
	MetaDescription          string     `json:"meta_description,omitempty" db:"meta_description"`
	IsPremium                bool       `json:"is_premium" db:"is_premium"`
	PremiumPreviewLength     int        `json:"premium_preview_length" db:"premium_preview_length"`
	AdsEnabled               bool       `json:"ads_enabled" db:"ads_enabled"`
	AffiliateProductsEnabled bool       `json:"affiliate_products_enabled" db:"affiliate_products_enabled"`
	CreatedAt                time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at" db:"updated_at"`
}

// ContentPatch carries the editable content fields pushed by an autosave
// tick. It never includes published, author or lifecycle timestamps.
type ContentPatch struct {
	Title           string   `json:"title"`
	Slug            string   `json:"slug"`
	Excerpt         string   `json:"excerpt"`
	Content         string   `json:"content"`
	ImageURL        string   `json:"image_url"`
	CategoryID      string   `json:"category_id"`
	Tags            []string `json:"tags"`
	MetaTitle       string   `json:"meta_title"`
	MetaDescription string   `json:"meta_description"`
}

// Category represents an article category
type Category struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Identity is the acting user resolved by the authentication collaborator
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Monetization defaults applied on first publish
const (
	DefaultPremiumPreviewLength = 300
	MaxTags                     = 20
)

// ArticleDraft is the mutable in-memory record owned by one editing
// session. ID is empty for a new, never-published article.
type ArticleDraft struct {
	ID              string   `json:"id,omitempty"`
	Title           string   `json:"title"`
	Slug            string   `json:"slug"`
	Excerpt         string   `json:"excerpt"`
	Content         string   `json:"content"`
	ImageURL        string   `json:"image_url,omitempty"`
	PendingImage    string   `json:"pending_image,omitempty"` // staged local file, not yet uploaded
	CategoryID      string   `json:"category_id,omitempty"`
	Tags            []string `json:"tags"`
	Published       bool     `json:"published"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	MetaTitle       string   `json:"meta_title,omitempty"`
	MetaDescription string   `json:"meta_description,omitempty"`

	SlugEdited bool `json:"slug_edited"` // user overrode the slug; stop deriving it from the title

	IsPremium                bool `json:"is_premium"`
	PremiumPreviewLength     int  `json:"premium_preview_length"`
	AdsEnabled               bool `json:"ads_enabled"`
	AffiliateProductsEnabled bool `json:"affiliate_products_enabled"`
}

// IsEmpty reports whether the draft has neither title nor content.
// Autosave never persists an empty shell.
func (d *ArticleDraft) IsEmpty() bool {
	return strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Content) == ""
}

// Clone returns a deep copy so snapshots are not aliased to the live draft
func (d *ArticleDraft) Clone() *ArticleDraft {
	c := *d
	if d.Tags != nil {
		c.Tags = append([]string(nil), d.Tags...)
	}
	if d.PublishedAt != nil {
		t := *d.PublishedAt
		c.PublishedAt = &t
	}
	return &c
}

// ContentPatch projects the draft's editable content fields for a partial
// remote update.
func (d *ArticleDraft) ContentPatch() *ContentPatch {
	return &ContentPatch{
		Title:           d.Title,
		Slug:            d.Slug,
		Excerpt:         d.Excerpt,
		Content:         d.Content,
		ImageURL:        d.ImageURL,
		CategoryID:      d.CategoryID,
		Tags:            d.Tags,
		MetaTitle:       d.MetaTitle,
		MetaDescription: d.MetaDescription,
	}
}
