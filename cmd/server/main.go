package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pulsenews/authoring-api/internal/api"
	"github.com/pulsenews/authoring-api/internal/auth"
	"github.com/pulsenews/authoring-api/internal/cache"
	"github.com/pulsenews/authoring-api/internal/config"
	"github.com/pulsenews/authoring-api/internal/database"
	"github.com/pulsenews/authoring-api/internal/draftstore"
	"github.com/pulsenews/authoring-api/internal/repository"
	"github.com/pulsenews/authoring-api/internal/service"
	"github.com/pulsenews/authoring-api/internal/storage"
	"github.com/pulsenews/authoring-api/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting authoring API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "./migrations"
	}
	if err := db.RunMigrations(migrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	repos := repository.New(db)

	// Local draft store
	drafts, err := draftstore.Open(cfg.Authoring.DraftDBPath, cfg.Authoring.DraftTTL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open draft store")
	}
	defer drafts.Close()

	// Image storage
	uploader, err := storage.NewDiskUploader(cfg.Storage.UploadDir, cfg.Storage.PublicBaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize image storage")
	}

	// Authentication collaborator
	authSvc := auth.NewJWTService(cfg.Auth.JWTSecret)

	// Cache invalidation; runs without redis when no address is configured
	var invalidator cache.Invalidator = cache.Noop{}
	if cfg.Cache.Addr != "" {
		redisInvalidator, err := cache.NewRedis(&cfg.Cache, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		defer redisInvalidator.Close()
		invalidator = redisInvalidator
	}

	// Initialize services
	services := service.NewServices(repos, drafts, uploader, authSvc, invalidator, cfg, log)

	// Initialize router
	router := api.NewRouter(services, repos, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Cancel pending autosave timers; in-flight pushes complete on their own
	services.Sessions.CloseAll()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
