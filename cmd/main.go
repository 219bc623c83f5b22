package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bilgisen/radiocast/internal/api"
	"github.com/bilgisen/radiocast/internal/cache"
	"github.com/bilgisen/radiocast/internal/config"
	"github.com/bilgisen/radiocast/internal/content"
	"github.com/bilgisen/radiocast/internal/events"
	"github.com/bilgisen/radiocast/internal/logger"
	"github.com/bilgisen/radiocast/internal/middleware"
	"github.com/bilgisen/radiocast/internal/nowplaying"
	"github.com/bilgisen/radiocast/internal/repository"
	"github.com/bilgisen/radiocast/internal/storage"
	"github.com/gofiber/fiber/v2"
)

func main() {
	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	output := "stdout"
	if cfg.LogFile != "" {
		output = cfg.LogFile
	}
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: output,
		Pretty: !cfg.IsProduction(),
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Str("env", cfg.Env).Msg("Starting application...")

	db, err := repository.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("Failed to open database")
	}
	defer func() {
		if err := repository.Close(db); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	media, err := newMediaStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.MediaBackend).Msg("Failed to initialize media storage")
	}

	responseCache := newCache(cfg)
	defer func() {
		log.Info().Msg("Closing cache...")
		if err := responseCache.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing cache")
		}
	}()

	publisher := newPublisher(cfg)
	defer publisher.Close()

	if cfg.AdminAPIKey == "" {
		log.Warn().Msg("ADMIN_API_KEY is empty, write endpoints are open to anyone")
	}

	deps := content.Deps{
		Media:        media,
		Cache:        responseCache,
		CacheTTL:     cfg.CacheTTL,
		Events:       publisher,
		DefaultLimit: cfg.DefaultPageSize,
		MaxLimit:     cfg.MaxPageSize,
	}
	handlers := api.NewHandlers(cfg,
		content.NewNewsService(repository.NewNewsRepository(db), deps),
		content.NewPodcastService(repository.NewPodcastRepository(db), deps),
		media,
		nowplaying.NewClient(cfg.NowPlayingURL, cfg.NowPlayingTTL, cfg.NowPlayingTimeout),
	)

	// Create Fiber app with custom config
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: middleware.ErrorHandler,
	})

	api.SetupRoutes(app, handlers, cfg)

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func newMediaStore(cfg *config.Config) (storage.Store, error) {
	if cfg.MediaBackend == config.MediaS3 {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
		defer cancel()
		return storage.NewS3(ctx, cfg)
	}
	return storage.NewLocal(cfg.UploadDir)
}

// newCache uses Redis when configured and reachable, the in-process cache otherwise
func newCache(cfg *config.Config) cache.Cache {
	log := logger.Get()
	if cfg.RedisURL == "" {
		log.Info().Msg("REDIS_URL not set, using in-memory cache")
		return cache.NewMemoryCache()
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, using in-memory cache")
		return cache.NewMemoryCache()
	}
	return redisClient
}

// newPublisher connects to NATS when configured. Content writes never
// depend on it, so a failed connection only disables events.
func newPublisher(cfg *config.Config) events.Publisher {
	log := logger.Get()
	if cfg.NATSURL == "" {
		return events.Noop{}
	}

	publisher, err := events.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix)
	if err != nil {
		log.Warn().Err(err).Msg("NATS unavailable, content events disabled")
		return events.Noop{}
	}
	log.Info().Str("url", cfg.NATSURL).Msg("Publishing content events to NATS")
	return publisher
}
