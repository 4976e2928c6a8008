package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Metrics holds all Prometheus collectors for the crawl server.
var Metrics = struct {
	CrawlRuns          *prometheus.CounterVec
	CrawlDuration      prometheus.Histogram
	TargetFailures     *prometheus.CounterVec
	VideosProcessed    prometheus.Counter
	VideoFailures      prometheus.Counter
	CommentsCollected  prometheus.Counter
	CommentsClassified prometheus.Counter
	PredictionCacheHit prometheus.Counter
	RequestDuration    *prometheus.HistogramVec
	RequestsInFlight   prometheus.Gauge
	DBPoolActive       prometheus.GaugeFunc
	DBPoolIdle         prometheus.GaugeFunc
}{}

// Init registers all Prometheus metrics. Call once at startup.
func Init(pool *pgxpool.Pool) {
	Metrics.CrawlRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ascentube_crawl_runs_total",
			Help: "Total crawl runs, by result (completed, failed, rejected).",
		},
		[]string{"result"},
	)

	Metrics.CrawlDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ascentube_crawl_duration_seconds",
			Help:    "Wall-clock duration of full crawl runs.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	Metrics.TargetFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ascentube_target_failures_total",
			Help: "Targets (channels/categories) abandoned after an error.",
		},
		[]string{"phase"},
	)

	Metrics.VideosProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ascentube_videos_processed_total",
			Help: "Videos fully ingested and committed.",
		},
	)

	Metrics.VideoFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ascentube_video_failures_total",
			Help: "Videos abandoned after an error.",
		},
	)

	Metrics.CommentsCollected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ascentube_comments_collected_total",
			Help: "Comments fetched from the source API.",
		},
	)

	Metrics.CommentsClassified = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ascentube_comments_classified_total",
			Help: "Comments run through the sentiment/speech-act models.",
		},
	)

	Metrics.PredictionCacheHit = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ascentube_prediction_cache_hits_total",
			Help: "Classifier calls skipped thanks to the Redis prediction cache.",
		},
	)

	Metrics.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ascentube_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	Metrics.RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ascentube_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	// DB pool gauges — read live stats from pgxpool
	if pool != nil {
		Metrics.DBPoolActive = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "ascentube_db_connection_pool_active",
				Help: "Number of active database connections.",
			},
			func() float64 {
				return float64(pool.Stat().AcquiredConns())
			},
		)

		Metrics.DBPoolIdle = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "ascentube_db_connection_pool_idle",
				Help: "Number of idle database connections.",
			},
			func() float64 {
				return float64(pool.Stat().IdleConns())
			},
		)

		prometheus.MustRegister(Metrics.DBPoolActive)
		prometheus.MustRegister(Metrics.DBPoolIdle)
	}

	prometheus.MustRegister(
		Metrics.CrawlRuns,
		Metrics.CrawlDuration,
		Metrics.TargetFailures,
		Metrics.VideosProcessed,
		Metrics.VideoFailures,
		Metrics.CommentsCollected,
		Metrics.CommentsClassified,
		Metrics.PredictionCacheHit,
		Metrics.RequestDuration,
		Metrics.RequestsInFlight,
	)
}

// Middleware records request duration and in-flight count for Prometheus.
func Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		// Don't instrument the /metrics endpoint itself
		if c.Path() == "/metrics" {
			return c.Next()
		}

		// Copy path and method into owned strings BEFORE c.Next() — Fiber
		// returns slices backed by the fasthttp buffer which can be reused
		// or overwritten by handlers (especially fasthttpadaptor).
		path := string([]byte(c.Path()))
		method := string([]byte(c.Method()))

		Metrics.RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())

		Metrics.RequestDuration.WithLabelValues(path, method, status).Observe(duration)
		Metrics.RequestsInFlight.Dec()

		return err
	}
}

// Handler serves the Prometheus /metrics endpoint via Fiber.
func Handler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.RequestCtx())
		return nil
	}
}
