package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pulsenews/authoring-api/internal/config"
	"github.com/pulsenews/authoring-api/internal/mocks"
	"github.com/pulsenews/authoring-api/internal/models"
	"github.com/pulsenews/authoring-api/internal/repository"
	"github.com/pulsenews/authoring-api/internal/service"
)

type routerFixture struct {
	router      *gin.Engine
	articles    *mocks.MockArticleRepository
	categories  *mocks.MockCategoryRepository
	drafts      *mocks.MockDraftStore
	auth        *mocks.MockAuthService
	invalidator *mocks.MockInvalidator
	services    *service.Services
}

func setupRouter(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &routerFixture{
		articles:   mocks.NewMockArticleRepository(),
		categories: &mocks.MockCategoryRepository{Categories: []models.Category{{ID: "cat-1", Name: "News"}}},
		drafts:     mocks.NewMockDraftStore(),
		auth: &mocks.MockAuthService{
			Identity: &models.Identity{ID: "user-1", Email: "author@example.com"},
		},
		invalidator: &mocks.MockInvalidator{},
	}

	cfg := &config.Config{
		Authoring: config.AuthoringConfig{QuiescenceWindow: time.Hour},
		Storage: config.StorageConfig{
			UploadDir:     t.TempDir(),
			MaxUploadSize: 10 * 1024 * 1024,
		},
	}

	repos := &repository.Repositories{Article: f.articles, Category: f.categories}
	f.services = service.NewServices(repos, f.drafts, &mocks.MockUploader{}, f.auth, f.invalidator, cfg, zerolog.Nop())
	f.router = NewRouter(f.services, repos, cfg, zerolog.Nop())
	t.Cleanup(f.services.Sessions.CloseAll)
	return f
}

func (f *routerFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestHealthCheck(t *testing.T) {
	f := setupRouter(t)

	w := f.do(t, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeBody(t, w)
	if body["status"] != "healthy" {
		t.Errorf("status field = %v, want healthy", body["status"])
	}
}

func TestListCategories(t *testing.T) {
	f := setupRouter(t)

	w := f.do(t, http.MethodGet, "/v1/categories", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeBody(t, w)
	categories, ok := body["categories"].([]any)
	if !ok || len(categories) != 1 {
		t.Errorf("categories = %v, want one entry", body["categories"])
	}
}

func TestOpenNewDraft(t *testing.T) {
	f := setupRouter(t)

	w := f.do(t, http.MethodGet, "/v1/drafts/new", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeBody(t, w)
	draft, ok := body["draft"].(map[string]any)
	if !ok {
		t.Fatalf("draft missing from response: %v", body)
	}
	if draft["premium_preview_length"] != float64(models.DefaultPremiumPreviewLength) {
		t.Errorf("premium_preview_length = %v, want %d", draft["premium_preview_length"], models.DefaultPremiumPreviewLength)
	}
	autosave, ok := body["autosave"].(map[string]any)
	if !ok || autosave["status"] != string(models.AutosaveIdle) {
		t.Errorf("autosave = %v, want idle", body["autosave"])
	}
}

func TestOpenUnknownDraft(t *testing.T) {
	f := setupRouter(t)

	w := f.do(t, http.MethodGet, "/v1/drafts/no-such-article", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestApplyEditsDerivesSlug(t *testing.T) {
	f := setupRouter(t)

	w := f.do(t, http.MethodPost, "/v1/drafts/new/edits", map[string]any{
		"edits": []map[string]any{
			{"field": "title", "value": "My First Post"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	draft := body["draft"].(map[string]any)
	if draft["slug"] != "my-first-post" {
		t.Errorf("slug = %v, want my-first-post", draft["slug"])
	}
	autosave := body["autosave"].(map[string]any)
	if autosave["has_unsaved_changes"] != true {
		t.Error("has_unsaved_changes not set after an edit")
	}
}

func TestApplyEditsRequiresBody(t *testing.T) {
	f := setupRouter(t)

	w := f.do(t, http.MethodPost, "/v1/drafts/new/edits", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestSubmitPublishes(t *testing.T) {
	f := setupRouter(t)
	f.articles.NextID = "article-1"

	w := f.do(t, http.MethodPost, "/v1/drafts/new/edits", map[string]any{
		"edits": []map[string]any{
			{"field": "title", "value": "My First Post"},
			{"field": "content", "value": "This is 25 characters ok!"},
			{"field": "category_id", "value": "cat-1"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("edit status = %d, body %s", w.Code, w.Body.String())
	}

	w = f.do(t, http.MethodPost, "/v1/drafts/new/submit", map[string]any{"draft": false})
	if w.Code != http.StatusOK {
		t.Fatalf("submit status = %d, body %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	article := body["article"].(map[string]any)
	if article["slug"] != "my-first-post" {
		t.Errorf("slug = %v, want my-first-post", article["slug"])
	}
	if article["published"] != true {
		t.Error("published = false, want true")
	}
	if f.invalidator.Calls() != 1 {
		t.Errorf("invalidator calls = %d, want 1", f.invalidator.Calls())
	}
}

func TestSubmitUnauthorized(t *testing.T) {
	f := setupRouter(t)
	f.auth.Identity = nil

	w := f.do(t, http.MethodPost, "/v1/drafts/new/submit", map[string]any{"draft": false})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	body := decodeBody(t, w)
	if body["redirect"] != "/signin" {
		t.Errorf("redirect = %v, want /signin", body["redirect"])
	}
}

func TestSubmitValidationError(t *testing.T) {
	f := setupRouter(t)

	w := f.do(t, http.MethodPost, "/v1/drafts/new/edits", map[string]any{
		"edits": []map[string]any{
			{"field": "title", "value": "My First Post"},
			{"field": "content", "value": "short"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("edit status = %d", w.Code)
	}

	w = f.do(t, http.MethodPost, "/v1/drafts/new/submit", map[string]any{"draft": false})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
	body := decodeBody(t, w)
	if body["field"] != "content" {
		t.Errorf("field = %v, want content", body["field"])
	}
}

func TestSubmitDuplicateSlug(t *testing.T) {
	f := setupRouter(t)
	f.articles.SlugToID["my-first-post"] = "other-article"

	w := f.do(t, http.MethodPost, "/v1/drafts/new/edits", map[string]any{
		"edits": []map[string]any{
			{"field": "title", "value": "My First Post"},
			{"field": "content", "value": "This is 25 characters ok!"},
			{"field": "category_id", "value": "cat-1"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("edit status = %d", w.Code)
	}

	w = f.do(t, http.MethodPost, "/v1/drafts/new/submit", map[string]any{"draft": false})
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	body := decodeBody(t, w)
	if body["field"] != "slug" {
		t.Errorf("field = %v, want slug", body["field"])
	}
}

func TestCloseDraft(t *testing.T) {
	f := setupRouter(t)

	if w := f.do(t, http.MethodGet, "/v1/drafts/new", nil); w.Code != http.StatusOK {
		t.Fatalf("open status = %d", w.Code)
	}
	w := f.do(t, http.MethodDelete, "/v1/drafts/new", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
}

func TestStageImageRejectsUnsupportedType(t *testing.T) {
	f := setupRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "notes.txt")
	if err != nil {
		t.Fatalf("failed to build multipart body: %v", err)
	}
	part.Write([]byte("plain text"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/drafts/new/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestStageImageAcceptsJPEG(t *testing.T) {
	f := setupRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "photo.jpg")
	if err != nil {
		t.Fatalf("failed to build multipart body: %v", err)
	}
	part.Write([]byte("jpeg bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/drafts/new/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	session, err := f.services.Sessions.Open(req.Context(), models.NewArticleKey)
	if err != nil {
		t.Fatalf("failed to open session: %v", err)
	}
	if session.Draft().PendingImage == "" {
		t.Error("staged image not recorded on the draft")
	}
}
