package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pulsenews/authoring-api/internal/models"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Field limits for publish and explicit draft-save
const (
	MinTitleLength          = 3
	MinSlugLength           = 3
	MaxSlugLength           = 120
	MinContentLength        = 20
	MaxExcerptLength        = 300
	MaxMetaTitleLength      = 60
	MaxMetaDescLength       = 160
	MaxPremiumPreviewLength = 5000
)

// Violation is a single field-level rule violation
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// MissingCategory reports whether the category rule would fire for the
// given id. The publish controller reuses this predicate for its final
// precondition check so the two can never disagree.
func MissingCategory(categoryID string) bool {
	return strings.TrimSpace(categoryID) == ""
}

// ValidateDraft runs the fixed, ordered publish rule set against a
// normalized candidate draft and returns the first violation, or nil when
// the record is well formed. Autosave ticks never call this; only publish
// and explicit draft-save do.
func ValidateDraft(d *models.ArticleDraft) *Violation {
	// 1. title present, minimum length
	title := strings.TrimSpace(d.Title)
	if len(title) < MinTitleLength {
		return &Violation{Field: "title", Message: fmt.Sprintf("title must be at least %d characters", MinTitleLength)}
	}

	// 2. slug present, bounded, kebab-case
	if len(d.Slug) < MinSlugLength || len(d.Slug) > MaxSlugLength {
		return &Violation{Field: "slug", Message: fmt.Sprintf("slug must be between %d and %d characters", MinSlugLength, MaxSlugLength)}
	}
	if !slugRegex.MatchString(d.Slug) {
		return &Violation{Field: "slug", Message: "slug must be kebab-case (lowercase letters, numbers, hyphens)"}
	}

	// 3. content minimum length, post-trim
	if len(strings.TrimSpace(d.Content)) < MinContentLength {
		return &Violation{Field: "content", Message: fmt.Sprintf("content must be at least %d characters", MinContentLength)}
	}

	// 4. excerpt bounded (optional)
	if len(d.Excerpt) > MaxExcerptLength {
		return &Violation{Field: "excerpt", Message: fmt.Sprintf("excerpt must be at most %d characters", MaxExcerptLength)}
	}

	// 5. meta title bounded (optional)
	if len(d.MetaTitle) > MaxMetaTitleLength {
		return &Violation{Field: "meta_title", Message: fmt.Sprintf("meta title must be at most %d characters", MaxMetaTitleLength)}
	}

	// 6. meta description bounded (optional)
	if len(d.MetaDescription) > MaxMetaDescLength {
		return &Violation{Field: "meta_description", Message: fmt.Sprintf("meta description must be at most %d characters", MaxMetaDescLength)}
	}

	// 7. category required
	if MissingCategory(d.CategoryID) {
		return &Violation{Field: "category_id", Message: "category is required"}
	}

	// 8. tag count bounded
	if len(d.Tags) > models.MaxTags {
		return &Violation{Field: "tags", Message: fmt.Sprintf("at most %d tags allowed", models.MaxTags)}
	}

	// 9. premium preview length bounded if present
	if d.PremiumPreviewLength < 0 || d.PremiumPreviewLength > MaxPremiumPreviewLength {
		return &Violation{Field: "premium_preview_length", Message: fmt.Sprintf("premium preview length must be between 0 and %d", MaxPremiumPreviewLength)}
	}

	return nil
}

// NormalizeTags trims, drops empties and de-duplicates case-insensitively
// while preserving first-seen order and casing.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		t := strings.TrimSpace(tag)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
