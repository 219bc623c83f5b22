package api

import (
	"github.com/bilgisen/radiocast/internal/config"
	"github.com/bilgisen/radiocast/internal/metrics"
	"github.com/bilgisen/radiocast/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, h *Handlers, cfg *config.Config) {
	// Middleware
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(metrics.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-API-Key",
	}))

	app.Get("/", h.Root)
	app.Get("/metrics", metrics.Handler())
	app.Get("/uploads/:key", h.ServeUpload)

	api := app.Group("/api")

	api.Get("/health", h.HealthCheck)
	api.Get("/now-playing", h.NowPlaying)

	listQuery := middleware.ValidateQueryParams(cfg.DefaultPageSize, cfg.MaxPageSize)
	admin := middleware.AdminOnly(cfg.AdminAPIKey)

	// News endpoints
	news := api.Group("/news")
	{
		news.Get("", listQuery, h.ListNews)
		news.Get("/:slug", h.GetNews)
		news.Post("", admin, h.CreateNews)
		news.Put("/:slug", admin, h.UpdateNews)
		news.Delete("/:slug", admin, h.DeleteNews)
	}

	// Podcast endpoints
	podcasts := api.Group("/podcasts")
	{
		podcasts.Get("", listQuery, h.ListPodcasts)
		podcasts.Get("/:slug", h.GetPodcast)
		podcasts.Post("", admin, h.CreatePodcast)
		podcasts.Put("/:slug", admin, h.UpdatePodcast)
		podcasts.Delete("/:slug", admin, h.DeletePodcast)
	}

	// 404 Handler
	app.Use(func(c *fiber.Ctx) error {
		return notFound(c)
	})
}
