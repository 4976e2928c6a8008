package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/crawler"
	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/middleware"
)

// Runner is the crawl pipeline surface the HTTP layer needs.
// *crawler.Driver is the production implementation.
type Runner interface {
	Start() error
	Running() bool
	StartedAt() time.Time
}

type CrawlHandler struct {
	runner Runner
}

func NewCrawlHandler(runner Runner) *CrawlHandler {
	return &CrawlHandler{runner: runner}
}

// TriggerDaily handles POST /api/crawl/trigger-daily. It only reports
// whether a run could be started — never whether it succeeded; operators
// watch the logs for run outcome.
func (h *CrawlHandler) TriggerDaily(c fiber.Ctx) error {
	if err := h.runner.Start(); err != nil {
		if errors.Is(err, crawler.ErrAlreadyRunning) {
			return middleware.ErrorResponse(c, fiber.StatusConflict,
				"CRAWL_IN_PROGRESS", "A crawl run is already in progress")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError,
			"INTERNAL_ERROR", "Failed to start crawl run")
	}

	return c.JSON(fiber.Map{"message": "Daily crawl started"})
}

// Status handles GET / — service liveness plus whether a run is active and,
// if so, since when.
func (h *CrawlHandler) Status(c fiber.Ctx) error {
	resp := fiber.Map{
		"status":       "Crawling server is running",
		"crawling_now": h.runner.Running(),
	}
	if started := h.runner.StartedAt(); !started.IsZero() {
		resp["crawl_started_at"] = started.UTC().Format(time.RFC3339)
	}
	return c.JSON(resp)
}
