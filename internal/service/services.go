package service

import (
	"github.com/rs/zerolog"

	"github.com/pulsenews/authoring-api/internal/auth"
	"github.com/pulsenews/authoring-api/internal/cache"
	"github.com/pulsenews/authoring-api/internal/config"
	"github.com/pulsenews/authoring-api/internal/draftstore"
	"github.com/pulsenews/authoring-api/internal/repository"
	"github.com/pulsenews/authoring-api/internal/storage"
)

// Services holds the authoring pipeline entry points
type Services struct {
	Sessions  *SessionManager
	Publisher *Publisher
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, drafts draftstore.Store,
	uploader storage.Uploader, authSvc auth.Service, invalidator cache.Invalidator,
	cfg *config.Config, log zerolog.Logger) *Services {
	return &Services{
		Sessions:  NewSessionManager(cfg.Authoring.QuiescenceWindow, drafts, repos.Article, log),
		Publisher: NewPublisher(repos, drafts, uploader, authSvc, invalidator, log),
	}
}
