// Package main is the entry point for the Kalem API server. It loads
// configuration, connects to services, sets up routing, and starts the
// HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kalem/internal/cache"
	"kalem/internal/config"
	"kalem/internal/database"
	"kalem/internal/handlers"
	"kalem/internal/middleware"
	"kalem/internal/models"
	"kalem/internal/router"
	"kalem/internal/session"
	"kalem/internal/storage"
	"kalem/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed the default admin and root categories in development.
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (sessions + listing cache).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Session cookies are HTTPS-only outside development.
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)
	listingCache := cache.NewListingCache(valkeyClient, cache.DefaultListingTTL)

	// Data stores.
	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	publicationStore := store.NewPublicationStore(db)
	commentStore := store.NewCommentStore(db)
	attachmentStore := store.NewAttachmentStore(db)

	// S3-compatible object storage for PDF uploads (optional).
	var storageClient *storage.Client
	if cfg.S3Configured() {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, pdf uploads disabled")
	}

	// Rate limiters for the anonymous write surfaces.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	defer loginLimiter.Stop()
	commentLimiter := middleware.NewRateLimiter(5, time.Minute)
	defer commentLimiter.Stop()

	// Handler groups.
	h := router.Handlers{
		Auth:          handlers.NewAuth(sessionStore, userStore),
		Categories:    handlers.NewCategories(categoryStore),
		Comments:      handlers.NewComments(commentStore, publicationStore),
		Users:         handlers.NewUsers(userStore),
		Uploads:       handlers.NewUploads(storageClient, attachmentStore),
		Health:        handlers.NewHealth(db, valkeyClient),
		Articles:      handlers.NewPublications(models.KindArticle, publicationStore, categoryStore, listingCache),
		Books:         handlers.NewPublications(models.KindBook, publicationStore, categoryStore, listingCache),
		Papers:        handlers.NewPublications(models.KindPaper, publicationStore, categoryStore, listingCache),
		Media:         handlers.NewPublications(models.KindMediaPublication, publicationStore, categoryStore, listingCache),
		CreativeWorks: handlers.NewPublications(models.KindCreativeWork, publicationStore, categoryStore, listingCache),
	}

	r := router.New(sessionStore, secureCookies, h, loginLimiter, commentLimiter)

	// WriteTimeout covers PDF uploads to object storage.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
