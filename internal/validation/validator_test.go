package validation

import (
	"reflect"
	"strings"
	"testing"

	"github.com/pulsenews/authoring-api/internal/models"
)

func validDraft() *models.ArticleDraft {
	return &models.ArticleDraft{
		Title:      "My First Post",
		Slug:       "my-first-post",
		Content:    "This is 25 characters ok!",
		CategoryID: "cat-1",
		Tags:       []string{"news"},
	}
}

func TestValidateDraft(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*models.ArticleDraft)
		wantField string
	}{
		{"valid draft", func(d *models.ArticleDraft) {}, ""},
		{"title too short", func(d *models.ArticleDraft) { d.Title = "ab" }, "title"},
		{"title whitespace only", func(d *models.ArticleDraft) { d.Title = "   " }, "title"},
		{"slug missing", func(d *models.ArticleDraft) { d.Slug = "" }, "slug"},
		{"slug too long", func(d *models.ArticleDraft) { d.Slug = strings.Repeat("a", 121) }, "slug"},
		{"slug not kebab-case", func(d *models.ArticleDraft) { d.Slug = "My_Slug" }, "slug"},
		{"slug double hyphen", func(d *models.ArticleDraft) { d.Slug = "double--dash" }, "slug"},
		{"content too short", func(d *models.ArticleDraft) { d.Content = "short" }, "content"},
		{"content whitespace padded", func(d *models.ArticleDraft) { d.Content = "  short  " }, "content"},
		{"excerpt too long", func(d *models.ArticleDraft) { d.Excerpt = strings.Repeat("x", 301) }, "excerpt"},
		{"meta title too long", func(d *models.ArticleDraft) { d.MetaTitle = strings.Repeat("x", 61) }, "meta_title"},
		{"meta description too long", func(d *models.ArticleDraft) { d.MetaDescription = strings.Repeat("x", 161) }, "meta_description"},
		{"category missing", func(d *models.ArticleDraft) { d.CategoryID = "" }, "category_id"},
		{"too many tags", func(d *models.ArticleDraft) { d.Tags = make([]string, 21) }, "tags"},
		{"preview length negative", func(d *models.ArticleDraft) { d.PremiumPreviewLength = -1 }, "premium_preview_length"},
		{"preview length too large", func(d *models.ArticleDraft) { d.PremiumPreviewLength = 5001 }, "premium_preview_length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(d)
			v := ValidateDraft(d)
			if tt.wantField == "" {
				if v != nil {
					t.Errorf("ValidateDraft() = %v, want nil", v)
				}
				return
			}
			if v == nil {
				t.Fatalf("ValidateDraft() = nil, want violation on %q", tt.wantField)
			}
			if v.Field != tt.wantField {
				t.Errorf("ValidateDraft() violation on %q, want %q", v.Field, tt.wantField)
			}
		})
	}
}

func TestValidateDraftFirstViolationWins(t *testing.T) {
	// Both title and content are invalid; title is rule 1
	d := validDraft()
	d.Title = ""
	d.Content = ""

	v := ValidateDraft(d)
	if v == nil || v.Field != "title" {
		t.Errorf("expected the title rule to fire first, got %v", v)
	}
}

func TestValidateDraftIdempotent(t *testing.T) {
	d := validDraft()
	if v := ValidateDraft(d); v != nil {
		t.Fatalf("first validation failed: %v", v)
	}
	if v := ValidateDraft(d); v != nil {
		t.Errorf("re-validating the same record failed: %v", v)
	}
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"trim and dedupe case-insensitively", []string{"AI", "ai", " Tech "}, []string{"AI", "Tech"}},
		{"drop empties", []string{"", "  ", "go"}, []string{"go"}},
		{"preserve first-seen order", []string{"b", "a", "B"}, []string{"b", "a"}},
		{"nil input", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTags(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeTags(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
