package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulsenews/authoring-api/internal/draftstore"
	"github.com/pulsenews/authoring-api/internal/models"
	"github.com/pulsenews/authoring-api/internal/repository"
)

// SessionManager tracks one editing session per draft key
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	window   time.Duration
	drafts   draftstore.Store
	articles repository.ArticleRepository
	log      zerolog.Logger
}

// NewSessionManager creates the session registry
func NewSessionManager(window time.Duration, drafts draftstore.Store,
	articles repository.ArticleRepository, log zerolog.Logger) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		window:   window,
		drafts:   drafts,
		articles: articles,
		log:      log.With().Str("service", "sessions").Logger(),
	}
}

// Open returns the session for key, creating it if needed. A new session
// restores an unexpired local snapshot first and falls back to the remote
// article; the new-article key starts from an empty draft with
// monetization defaults.
func (m *SessionManager) Open(ctx context.Context, key string) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[key]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	draft, slugLocked, err := m.loadDraft(ctx, key)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Lost the race: keep the session created first
	if s, ok := m.sessions[key]; ok {
		return s, nil
	}
	s := newSession(draft, slugLocked, m.window, m.drafts, m.articles,
		m.log.With().Str("draft_key", key).Logger())
	m.sessions[key] = s
	return s, nil
}

func (m *SessionManager) loadDraft(ctx context.Context, key string) (*models.ArticleDraft, bool, error) {
	snapshot, err := m.drafts.Get(key)
	if err != nil {
		return nil, false, err
	}
	if snapshot != nil {
		d := snapshot.Data
		locked := d.SlugEdited || (d.ID != "" && d.Slug != "")
		m.log.Info().Str("draft_key", key).Msg("Restored local draft snapshot")
		return d, locked, nil
	}

	if key == models.NewArticleKey {
		return &models.ArticleDraft{
			Tags:                     []string{},
			PremiumPreviewLength:     models.DefaultPremiumPreviewLength,
			AdsEnabled:               true,
			AffiliateProductsEnabled: true,
		}, false, nil
	}

	article, err := m.articles.GetByID(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if article == nil {
		return nil, false, ErrDraftNotFound
	}
	return draftFromArticle(article), article.Slug != "", nil
}

// Close tears down the session for key, cancelling any pending autosave
// timer. In-flight requests are left to complete.
func (m *SessionManager) Close(key string) {
	m.mu.Lock()
	s, ok := m.sessions[key]
	delete(m.sessions, key)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
}

// CloseAll tears down every session (process shutdown)
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}

func draftFromArticle(a *models.Article) *models.ArticleDraft {
	return &models.ArticleDraft{
		ID:                       a.ID,
		Title:                    a.Title,
		Slug:                     a.Slug,
		Excerpt:                  a.Excerpt,
		Content:                  a.Content,
		ImageURL:                 a.ImageURL,
		CategoryID:               a.CategoryID,
		Tags:                     append([]string(nil), a.Tags...),
		Published:                a.Published,
		PublishedAt:              a.PublishedAt,
		MetaTitle:                a.MetaTitle,
		MetaDescription:          a.MetaDescription,
		IsPremium:                a.IsPremium,
		PremiumPreviewLength:     a.PremiumPreviewLength,
		AdsEnabled:               a.AdsEnabled,
		AffiliateProductsEnabled: a.AffiliateProductsEnabled,
	}
}
