package handler

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/metrics"
	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Crawl  *CrawlHandler
	Health *HealthHandler
}

// Setup configures the middleware stack and all routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(middleware.NewCORS(corsOrigins))
	app.Use(metrics.Middleware())

	app.Get("/", h.Crawl.Status)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")
	api.Post("/crawl/trigger-daily", h.Crawl.TriggerDaily)
}
