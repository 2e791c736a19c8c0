package mocks

import (
	"context"
	"io"
	"sync"

	"github.com/pulsenews/authoring-api/internal/auth"
	"github.com/pulsenews/authoring-api/internal/models"
)

// MockArticleRepository is a mock implementation of repository.ArticleRepository
type MockArticleRepository struct {
	mu                 sync.Mutex
	Articles           map[string]*models.Article
	SlugToID           map[string]string
	InsertError        error
	UpdateError        error
	UpdateContentError error
	LookupError        error
	NextID             string
	InsertCalls        int
	UpdateCalls        int
	UpdateContentCalls int
	// BeforeUpdateContent runs inside UpdateContent before any state
	// change, letting tests interleave operations.
	BeforeUpdateContent func()
}

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{
		Articles: make(map[string]*models.Article),
		SlugToID: make(map[string]string),
	}
}

func (m *MockArticleRepository) Insert(ctx context.Context, article *models.Article) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertCalls++
	if m.InsertError != nil {
		return "", m.InsertError
	}
	id := article.ID
	if id == "" {
		id = m.NextID
		if id == "" {
			id = "generated-id"
		}
	}
	copied := *article
	copied.ID = id
	m.Articles[id] = &copied
	m.SlugToID[article.Slug] = id
	return id, nil
}

func (m *MockArticleRepository) Update(ctx context.Context, id string, article *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	if m.UpdateError != nil {
		return m.UpdateError
	}
	copied := *article
	copied.ID = id
	m.Articles[id] = &copied
	m.SlugToID[article.Slug] = id
	return nil
}

func (m *MockArticleRepository) UpdateContent(ctx context.Context, id string, patch *models.ContentPatch) error {
	if m.BeforeUpdateContent != nil {
		m.BeforeUpdateContent()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateContentCalls++
	if m.UpdateContentError != nil {
		return m.UpdateContentError
	}
	if a, ok := m.Articles[id]; ok {
		a.Title = patch.Title
		a.Slug = patch.Slug
		a.Excerpt = patch.Excerpt
		a.Content = patch.Content
		a.Tags = patch.Tags
	}
	return nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Articles[id]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (m *MockArticleRepository) FindIDBySlug(ctx context.Context, slug string, excludeID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LookupError != nil {
		return "", m.LookupError
	}
	id, ok := m.SlugToID[slug]
	if !ok || id == excludeID {
		return "", nil
	}
	return id, nil
}

// ContentPushCount returns the number of UpdateContent calls seen so far
func (m *MockArticleRepository) ContentPushCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.UpdateContentCalls
}

// MockCategoryRepository is a mock implementation of repository.CategoryRepository
type MockCategoryRepository struct {
	Categories []models.Category
	ListError  error
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.Categories, nil
}

// MockDraftStore is an in-memory draftstore.Store
type MockDraftStore struct {
	mu        sync.Mutex
	Snapshots map[string]*models.DraftSnapshot
	SetError  error
	SetCalls  int
}

func NewMockDraftStore() *MockDraftStore {
	return &MockDraftStore{Snapshots: make(map[string]*models.DraftSnapshot)}
}

func (m *MockDraftStore) Get(key string) (*models.DraftSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Snapshots[key], nil
}

func (m *MockDraftStore) Set(key string, snapshot *models.DraftSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++
	if m.SetError != nil {
		return m.SetError
	}
	m.Snapshots[key] = snapshot
	return nil
}

func (m *MockDraftStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Snapshots, key)
	return nil
}

func (m *MockDraftStore) Close() error { return nil }

// SetCount returns the number of Set calls seen so far
func (m *MockDraftStore) SetCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SetCalls
}

// Snapshot returns the stored snapshot for key, or nil
func (m *MockDraftStore) Snapshot(key string) *models.DraftSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Snapshots[key]
}

// MockUploader is a mock implementation of storage.Uploader
type MockUploader struct {
	URL         string
	UploadError error
	UploadCalls int
}

func (m *MockUploader) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	m.UploadCalls++
	if m.UploadError != nil {
		return "", m.UploadError
	}
	if m.URL != "" {
		return m.URL, nil
	}
	return "https://cdn.example.com/" + filename, nil
}

// MockAuthService is a mock implementation of auth.Service
type MockAuthService struct {
	Identity *models.Identity
}

func (m *MockAuthService) CurrentUser(ctx context.Context, token string) (*models.Identity, error) {
	if m.Identity == nil {
		return nil, auth.ErrNoIdentity
	}
	return m.Identity, nil
}

// MockInvalidator records cache invalidation signals
type MockInvalidator struct {
	mu              sync.Mutex
	InvalidateCalls int
	InvalidateError error
}

func (m *MockInvalidator) InvalidateArticleLists(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InvalidateCalls++
	return m.InvalidateError
}

func (m *MockInvalidator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.InvalidateCalls
}
