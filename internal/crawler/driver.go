package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/config"
	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/metrics"
	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/repository"
	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/service"
	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/youtube"
)

// ErrAlreadyRunning is returned by Start while a crawl run is active.
// Concurrent trigger attempts are refused, never queued.
var ErrAlreadyRunning = errors.New("crawler: run already in progress")

// trendingCategories are the category codes crawled in phase 2.
var trendingCategories = []string{"1", "2", "10", "15", "17", "20", "22", "23", "24", "26", "28"}

// DB is the database surface the driver needs: direct queries for the
// favorite-channel read plus transaction control for per-target units of
// work. *pgxpool.Pool satisfies it.
type DB interface {
	repository.Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Driver runs the two-phase crawl pipeline: favorite channels, then
// trending categories. Each channel or category is one fault-isolated unit
// of work with its own transaction; a failed target is rolled back and
// logged while the run continues.
type Driver struct {
	db        DB
	cfg       *config.Config
	cache     *service.Cache
	predictor Predictor
	state     *RunState
	log       zerolog.Logger

	// Seams for tests; production defaults build the real client and store.
	newSource func(ctx context.Context) (Source, error)
	newStore  func(q repository.Querier) Store
}

func NewDriver(db DB, cfg *config.Config, cache *service.Cache, predictor Predictor) *Driver {
	return &Driver{
		db:        db,
		cfg:       cfg,
		cache:     cache,
		predictor: predictor,
		state:     &RunState{},
		log:       log.With().Str("component", "crawler").Logger(),
		newSource: func(ctx context.Context) (Source, error) {
			return youtube.NewClient(ctx, cfg.YouTubeAPIKey)
		},
		newStore: func(q repository.Querier) Store {
			return repository.NewStore(q)
		},
	}
}

// Running reports whether a crawl run is currently active.
func (d *Driver) Running() bool {
	return d.state.Running()
}

// StartedAt returns when the active run began; the zero time when idle.
func (d *Driver) StartedAt() time.Time {
	return d.state.StartedAt()
}

// Start launches a detached crawl run. The single-flight flag is taken
// synchronously so callers can refuse concurrent triggers before returning;
// the run itself proceeds in the background and reports through logs and
// metrics only.
func (d *Driver) Start() error {
	if !d.state.TryStart() {
		metrics.Metrics.CrawlRuns.WithLabelValues("rejected").Inc()
		return ErrAlreadyRunning
	}

	go func() {
		defer d.state.Finish()
		if err := d.run(context.Background()); err != nil {
			metrics.Metrics.CrawlRuns.WithLabelValues("failed").Inc()
			d.log.Error().Err(err).Msg("crawl run aborted")
			return
		}
		metrics.Metrics.CrawlRuns.WithLabelValues("completed").Inc()
	}()
	return nil
}

// run executes one full crawl. Only setup failures (no source client, no
// favorite-channel read) abort it; target-level failures are contained in
// runTarget.
func (d *Driver) run(ctx context.Context) error {
	start := time.Now()
	d.log.Info().Msg("daily crawl starting")

	source, err := d.newSource(ctx)
	if err != nil {
		return fmt.Errorf("build video source: %w", err)
	}

	orch := NewOrchestrator(source, d.predictor, d.cache)

	channelIDs, err := d.newStore(d.db).FavoriteChannelIDs(ctx)
	if err != nil {
		return fmt.Errorf("load favorite channels: %w", err)
	}

	d.log.Info().Int("channels", len(channelIDs)).Msg("phase 1: favorite channels")
	for _, channelID := range channelIDs {
		err := d.runTarget(ctx, orch, "", func(ctx context.Context) ([]string, error) {
			return source.RecentVideoKeys(ctx, channelID, d.cfg.MaxResultsPerTarget)
		})
		if err != nil {
			metrics.Metrics.TargetFailures.WithLabelValues("channel").Inc()
			d.log.Error().Err(err).Str("channel", channelID).Msg("channel abandoned, continuing")
		}
		d.pace()
	}

	d.log.Info().Int("categories", len(trendingCategories)).Msg("phase 2: trending categories")
	for _, categoryID := range trendingCategories {
		hint := categoryID
		err := d.runTarget(ctx, orch, hint, func(ctx context.Context) ([]string, error) {
			return source.PopularVideoKeys(ctx, hint, d.cfg.Region, d.cfg.MaxResultsPerTarget)
		})
		if err != nil {
			metrics.Metrics.TargetFailures.WithLabelValues("category").Inc()
			d.log.Error().Err(err).Str("category", hint).Msg("category abandoned, continuing")
		}
		d.pace()
	}

	elapsed := time.Since(start)
	metrics.Metrics.CrawlDuration.Observe(elapsed.Seconds())
	d.log.Info().Dur("elapsed", elapsed).Msg("daily crawl finished")
	return nil
}

// runTarget processes one channel or category inside its own transaction.
// Listing or commit failures roll the whole target back; a failed video only
// loses its own savepoint.
func (d *Driver) runTarget(ctx context.Context, orch *Orchestrator, categoryHint string, list func(context.Context) ([]string, error)) error {
	tx, err := d.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin target transaction: %w", err)
	}

	keys, err := list(ctx)
	if err != nil {
		tx.Rollback(ctx)
		return fmt.Errorf("list videos: %w", err)
	}

	for _, key := range keys {
		if err := d.processInSavepoint(ctx, tx, orch, key, categoryHint); err != nil {
			metrics.Metrics.VideoFailures.Inc()
			d.log.Error().Err(err).Str("video", key).Msg("video abandoned, continuing")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		tx.Rollback(ctx)
		return fmt.Errorf("commit target transaction: %w", err)
	}
	return nil
}

// processInSavepoint wraps one video in a nested transaction. Postgres
// aborts a transaction after any failed statement, so without the savepoint
// one bad video would poison the rest of its target.
func (d *Driver) processInSavepoint(ctx context.Context, tx pgx.Tx, orch *Orchestrator, videoKey, categoryHint string) error {
	sub, err := tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin video savepoint: %w", err)
	}

	if err := orch.ProcessVideo(ctx, d.newStore(sub), videoKey, categoryHint); err != nil {
		sub.Rollback(ctx)
		return err
	}
	return sub.Commit(ctx)
}

// pace sleeps the fixed delay between targets to stay friendly with the
// source API's rate limits.
func (d *Driver) pace() {
	if d.cfg.TargetPacing > 0 {
		time.Sleep(d.cfg.TargetPacing)
	}
}
