package handler

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/crawler"
)

type stubRunner struct {
	startErr  error
	running   bool
	startedAt time.Time
	started   int
}

func (r *stubRunner) Start() error {
	r.started++
	return r.startErr
}

func (r *stubRunner) Running() bool { return r.running }

func (r *stubRunner) StartedAt() time.Time { return r.startedAt }

func crawlApp(r Runner) *fiber.App {
	app := fiber.New()
	h := NewCrawlHandler(r)
	app.Get("/", h.Status)
	app.Post("/api/crawl/trigger-daily", h.TriggerDaily)
	return app
}

func TestTriggerDailyStartsRun(t *testing.T) {
	runner := &stubRunner{}
	app := crawlApp(runner)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/crawl/trigger-daily", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if runner.started != 1 {
		t.Errorf("runner started %d times, want 1", runner.started)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] != "Daily crawl started" {
		t.Errorf("message = %q", body["message"])
	}
}

func TestTriggerDailyConflictWhileRunning(t *testing.T) {
	runner := &stubRunner{startErr: crawler.ErrAlreadyRunning}
	app := crawlApp(runner)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/crawl/trigger-daily", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Code != "CRAWL_IN_PROGRESS" {
		t.Errorf("error code = %q, want CRAWL_IN_PROGRESS", body.Error.Code)
	}
}

func TestStatusReportsCrawlFlag(t *testing.T) {
	startedAt := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	runner := &stubRunner{running: true, startedAt: startedAt}
	app := crawlApp(runner)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Status         string `json:"status"`
		CrawlingNow    bool   `json:"crawling_now"`
		CrawlStartedAt string `json:"crawl_started_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.CrawlingNow {
		t.Error("crawling_now = false, want true")
	}
	if body.Status != "Crawling server is running" {
		t.Errorf("status = %q", body.Status)
	}
	if body.CrawlStartedAt != "2025-06-01T13:00:00Z" {
		t.Errorf("crawl_started_at = %q", body.CrawlStartedAt)
	}
}

func TestStatusOmitsStartTimeWhenIdle(t *testing.T) {
	app := crawlApp(&stubRunner{})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if _, ok := body["crawl_started_at"]; ok {
		t.Error("crawl_started_at present while idle")
	}
	if body["crawling_now"] != false {
		t.Errorf("crawling_now = %v, want false", body["crawling_now"])
	}
}
