package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulsenews/authoring-api/internal/draftstore"
	"github.com/pulsenews/authoring-api/internal/models"
	"github.com/pulsenews/authoring-api/internal/repository"
	"github.com/pulsenews/authoring-api/internal/slug"
)

// Session owns one mutable ArticleDraft, its autosave state and debounce
// timer, and the publishing-in-progress flag. All access goes through the
// session mutex; the autosave scheduler and publish controller are
// mutually exclusive over the draft.
type Session struct {
	mu         sync.Mutex
	draft      *models.ArticleDraft
	state      models.AutosaveState
	timer      *time.Timer
	publishing bool
	closed     bool

	// slugLocked stops deriving the slug from the title: set when the
	// article already has a persisted slug or after the first manual edit.
	slugLocked bool

	window   time.Duration
	drafts   draftstore.Store
	articles repository.ArticleRepository
	now      func() time.Time
	log      zerolog.Logger
}

func newSession(draft *models.ArticleDraft, slugLocked bool, window time.Duration,
	drafts draftstore.Store, articles repository.ArticleRepository, log zerolog.Logger) *Session {
	return &Session{
		draft:      draft,
		state:      models.AutosaveState{Status: models.AutosaveIdle},
		slugLocked: slugLocked,
		window:     window,
		drafts:     drafts,
		articles:   articles,
		now:        time.Now,
		log:        log,
	}
}

// Edit carries one field-level change from the authoring form
type Edit struct {
	Field string   `json:"field" binding:"required"`
	Value string   `json:"value"`
	Tags  []string `json:"tags,omitempty"`
	Flag  bool     `json:"flag,omitempty"`
	N     int      `json:"n,omitempty"`
}

// ApplyEdit mutates the draft, marks unsaved changes and re-arms the
// debounce timer. The slug keeps following the title until the user edits
// it directly or the article has ever been persisted with one.
func (s *Session) ApplyEdit(edits []Edit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	for _, e := range edits {
		s.applyField(e)
	}

	if !s.slugLocked && strings.TrimSpace(s.draft.Title) != "" {
		s.draft.Slug = slug.Normalize(s.draft.Title)
	}

	s.state.HasUnsavedChanges = true
	s.rearmLocked()
}

func (s *Session) applyField(e Edit) {
	d := s.draft
	switch e.Field {
	case "title":
		d.Title = e.Value
	case "slug":
		d.Slug = e.Value
		d.SlugEdited = true
		s.slugLocked = true
	case "excerpt":
		d.Excerpt = e.Value
	case "content":
		d.Content = e.Value
	case "category_id":
		d.CategoryID = e.Value
	case "meta_title":
		d.MetaTitle = e.Value
	case "meta_description":
		d.MetaDescription = e.Value
	case "tags":
		d.Tags = e.Tags
	case "image_url":
		d.ImageURL = e.Value
		d.PendingImage = ""
	case "is_premium":
		d.IsPremium = e.Flag
	case "premium_preview_length":
		d.PremiumPreviewLength = e.N
	case "ads_enabled":
		d.AdsEnabled = e.Flag
	case "affiliate_products_enabled":
		d.AffiliateProductsEnabled = e.Flag
	default:
		s.log.Warn().Str("field", e.Field).Msg("Ignoring edit to unknown field")
	}
}

// StageImage records a staged local image file to be uploaded on publish.
// At most one of pending file and remote URL is set at a time.
func (s *Session) StageImage(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.draft.PendingImage = path
	s.draft.ImageURL = ""
	s.state.HasUnsavedChanges = true
	s.rearmLocked()
}

// rearmLocked resets the debounce timer. Arming is blocked while a publish
// is in progress; the next edit after the publish completes re-arms.
func (s *Session) rearmLocked() {
	if s.publishing || s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.window, s.autosaveFire)
}

// autosaveFire runs when the quiescence window elapses with no further
// edits. It always persists the local snapshot first; the remote push
// happens only for drafts that already exist remotely, and its failure
// never loses the local copy.
func (s *Session) autosaveFire() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.publishing || s.closed || !s.state.HasUnsavedChanges {
		return
	}
	if s.draft.IsEmpty() {
		// Never autosave an empty shell
		return
	}

	s.state.Status = models.AutosaveSaving
	now := s.now()
	key := models.DraftKey(s.draft.ID)
	snapshot := models.NewDraftSnapshot(s.draft, now)

	if err := s.drafts.Set(key, snapshot); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Autosave failed to persist local snapshot")
		s.state.Status = models.AutosaveError
		return
	}

	if s.draft.ID != "" {
		if err := s.articles.UpdateContent(context.Background(), s.draft.ID, s.draft.ContentPatch()); err != nil {
			// Local snapshot is intact; no immediate retry, the next edit
			// re-arms the timer.
			s.log.Warn().Err(err).Str("article_id", s.draft.ID).Msg("Autosave remote push failed")
			s.state.Status = models.AutosaveError
			return
		}
	}

	s.state.Status = models.AutosaveSaved
	s.state.LastSavedAt = &now
	s.state.HasUnsavedChanges = false
	s.log.Debug().Str("key", key).Msg("Autosave completed")
}

// beginPublish disarms the scheduler for the controller's duration and
// returns a working copy of the draft.
func (s *Session) beginPublish() *models.ArticleDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishing = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	return s.draft.Clone()
}

// endPublish releases the publishing flag in all cases. The scheduler
// re-arms only when a further edit occurs.
func (s *Session) endPublish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishing = false
}

// commitPublish adopts the persisted record back into the session after a
// successful publish or draft-save and resets the autosave state.
func (s *Session) commitPublish(d *models.ArticleDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = d.Clone()
	s.slugLocked = true
	s.state = models.AutosaveState{Status: models.AutosaveIdle}
}

// State returns a copy of the autosave state for the UI indicator
func (s *Session) State() models.AutosaveState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Draft returns a copy of the current draft
func (s *Session) Draft() *models.ArticleDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

// Close cancels any pending timer. In-flight remote pushes are not
// aborted; they complete or fail silently.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
