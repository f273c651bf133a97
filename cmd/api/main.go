package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-api/internal/auth"
	"catalog-api/internal/config"
	"catalog-api/internal/database"
	"catalog-api/internal/handler"
	"catalog-api/internal/repository"
	"catalog-api/internal/router"
	"catalog-api/internal/service"
	"catalog-api/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting catalog API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the remote datastore when enabled. A failure leaves the
	// remote tier unconfigured and the local store serves everything.
	var pool *pgxpool.Pool
	if cfg.Database.Enabled {
		pool, err = database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to connect to remote datastore, serving from local store only")
			pool = nil
		} else {
			defer pool.Close()
		}
	} else {
		logger.Info().Msg("remote datastore disabled, serving from local store only")
	}

	// Initialize the data access layer: remote first, then local files
	remote := repository.NewPostgresStore(pool, logger)
	local := repository.NewFileStore(cfg.Storage.ProductsFile(), cfg.Storage.UsersFile(), logger)
	store := repository.NewChain(logger, remote, local)

	// Initialize services
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	catalogService := service.NewCatalogService(store, logger)
	credentialService := service.NewCredentialService(store, tokens, service.CredentialConfig{
		AdminUsername: cfg.Auth.AdminUsername,
		AdminPassword: cfg.Auth.AdminPassword,
		BcryptCost:    cfg.Auth.BcryptCost,
	}, logger)

	if err := credentialService.Bootstrap(ctx); err != nil {
		return fmt.Errorf("failed to bootstrap credentials: %w", err)
	}

	// Initialize image storage with S3 and local fallback
	var remoteImages storage.ImageStore
	if cfg.S3.Enabled {
		remoteImages, err = storage.NewS3Store(ctx, storage.S3Options{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Prefix:          cfg.S3.Prefix,
			Endpoint:        cfg.S3.Endpoint,
			PublicURL:       cfg.S3.PublicURL,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		}, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 image store, falling back to local file system only")
			remoteImages = nil
		}
	} else {
		logger.Info().Msg("using local file system for uploaded images (S3 disabled)")
	}
	images := storage.NewFallbackStore(remoteImages, storage.NewFileStore(cfg.Storage.ImagesDir(), "/images", logger), logger)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(catalogService, logger)
	authHandler := handler.NewAuthHandler(credentialService, logger)
	uploadHandler := handler.NewUploadHandler(images, cfg.Upload.MaxBytes, logger)

	// Initialize router
	mux := router.New(router.Options{
		Products:         productHandler,
		Auth:             authHandler,
		Uploads:          uploadHandler,
		Tokens:           tokens,
		RemoteConfigured: remote.Configured(),
		ImagesDir:        cfg.Storage.ImagesDir(),
		WebDir:           cfg.Server.WebDir,
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Bool("remote_configured", remote.Configured()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
