package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulsenews/authoring-api/internal/mocks"
	"github.com/pulsenews/authoring-api/internal/models"
)

func newTestManager(articles *mocks.MockArticleRepository, drafts *mocks.MockDraftStore) *SessionManager {
	return NewSessionManager(time.Hour, drafts, articles, zerolog.Nop())
}

func TestOpenNewArticleStartsWithDefaults(t *testing.T) {
	m := newTestManager(mocks.NewMockArticleRepository(), mocks.NewMockDraftStore())

	s, err := m.Open(context.Background(), models.NewArticleKey)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer m.CloseAll()

	d := s.Draft()
	if d.ID != "" || d.Title != "" {
		t.Errorf("new draft not empty: %+v", d)
	}
	if d.PremiumPreviewLength != models.DefaultPremiumPreviewLength {
		t.Errorf("PremiumPreviewLength = %d, want %d", d.PremiumPreviewLength, models.DefaultPremiumPreviewLength)
	}
	if !d.AdsEnabled || !d.AffiliateProductsEnabled {
		t.Error("monetization toggles should default on")
	}
	if d.Tags == nil {
		t.Error("Tags should start as an empty slice")
	}
}

func TestOpenRestoresLocalSnapshotFirst(t *testing.T) {
	articles := mocks.NewMockArticleRepository()
	articles.Articles["article-1"] = &models.Article{ID: "article-1", Title: "Remote title"}
	drafts := mocks.NewMockDraftStore()
	drafts.Snapshots["article-1"] = models.NewDraftSnapshot(&models.ArticleDraft{
		ID:    "article-1",
		Title: "Local unsent edits",
		Slug:  "local-unsent-edits",
	}, time.Now())
	m := newTestManager(articles, drafts)

	s, err := m.Open(context.Background(), "article-1")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer m.CloseAll()

	if got := s.Draft().Title; got != "Local unsent edits" {
		t.Errorf("draft title = %q, want the local snapshot to win", got)
	}
}

func TestOpenFallsBackToRemoteArticle(t *testing.T) {
	articles := mocks.NewMockArticleRepository()
	published := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	articles.Articles["article-1"] = &models.Article{
		ID:          "article-1",
		Title:       "Remote title",
		Slug:        "remote-title",
		Published:   true,
		PublishedAt: &published,
		Tags:        []string{"news"},
	}
	m := newTestManager(articles, mocks.NewMockDraftStore())

	s, err := m.Open(context.Background(), "article-1")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer m.CloseAll()

	d := s.Draft()
	if d.Title != "Remote title" || d.Slug != "remote-title" {
		t.Errorf("draft = %q/%q, want the remote article", d.Title, d.Slug)
	}
	if d.PublishedAt == nil || !d.PublishedAt.Equal(published) {
		t.Errorf("PublishedAt = %v, want %v", d.PublishedAt, published)
	}

	// A persisted slug stops title-driven derivation
	s.ApplyEdit([]Edit{{Field: "title", Value: "Renamed Title"}})
	if got := s.Draft().Slug; got != "remote-title" {
		t.Errorf("slug = %q after a title edit, want the persisted slug kept", got)
	}
}

func TestOpenUnknownArticle(t *testing.T) {
	m := newTestManager(mocks.NewMockArticleRepository(), mocks.NewMockDraftStore())

	_, err := m.Open(context.Background(), "no-such-article")
	if !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("err = %v, want ErrDraftNotFound", err)
	}
}

func TestOpenReturnsSameSession(t *testing.T) {
	m := newTestManager(mocks.NewMockArticleRepository(), mocks.NewMockDraftStore())
	defer m.CloseAll()

	first, err := m.Open(context.Background(), models.NewArticleKey)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	second, err := m.Open(context.Background(), models.NewArticleKey)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if first != second {
		t.Error("Open created a second session for the same key")
	}
}

func TestCloseDropsSession(t *testing.T) {
	drafts := mocks.NewMockDraftStore()
	m := newTestManager(mocks.NewMockArticleRepository(), drafts)

	first, err := m.Open(context.Background(), models.NewArticleKey)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	first.ApplyEdit([]Edit{{Field: "title", Value: "Kept locally"}})
	m.Close(models.NewArticleKey)

	second, err := m.Open(context.Background(), models.NewArticleKey)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer m.CloseAll()
	if first == second {
		t.Error("Close did not drop the session")
	}
}
