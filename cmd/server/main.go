package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/config"
	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/crawler"
	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/db"
	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/handler"
	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/metrics"
	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/middleware"
	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/nlp"
	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/scheduler"
	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "ascentube-crawler")

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	metrics.Init(pool)

	cache := service.NewCache(cfg.RedisURL)
	classifier := nlp.NewClassifier(cfg.SentimentModelURL, cfg.SpeechActModelURL)
	driver := crawler.NewDriver(pool, cfg, cache, classifier)

	cronRunner, err := scheduler.Start(cfg.CrawlSchedule, cfg.Timezone, driver)
	if err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer cronRunner.Stop()

	app := fiber.New(fiber.Config{
		AppName:      "AscenTube Crawler",
		ServerHeader: "AscenTube",
	})

	handler.Setup(app, &handler.Handlers{
		Crawl:  handler.NewCrawlHandler(driver),
		Health: handler.NewHealthHandler(pool, cache.Client()),
	}, cfg.CORSOrigins)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		zlog.Info().Msg("shutting down")
		_ = app.Shutdown()
	}()

	zlog.Info().
		Str("port", cfg.Port).
		Str("env", cfg.Environment).
		Msg("crawl server starting")

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
