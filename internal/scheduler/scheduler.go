package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/crawler"
)

// Runner matches the crawl driver's trigger surface.
type Runner interface {
	Start() error
}

// Start schedules the daily crawl at the given cron spec in the given
// timezone and returns the running cron instance for shutdown.
func Start(spec, timezone string, runner Runner) (*cron.Cron, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(spec, func() {
		if err := runner.Start(); err != nil {
			if errors.Is(err, crawler.ErrAlreadyRunning) {
				log.Warn().Msg("scheduler: crawl already running, skipping this schedule")
				return
			}
			log.Error().Err(err).Msg("scheduler: failed to start crawl")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("register crawl schedule %q: %w", spec, err)
	}

	c.Start()
	log.Info().Str("schedule", spec).Str("timezone", timezone).Msg("daily crawl scheduled")
	return c, nil
}
