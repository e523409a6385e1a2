package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/i474232898/weather-board/internal/dashboard"
)

// Refresher is the part of the dashboard the scheduler drives.
type Refresher interface {
	RunBatch(ctx context.Context) dashboard.BatchResult
	RefreshWeekly(ctx context.Context)
}

// Scheduler periodically re-enriches the board so cached summaries do not
// go stale while nobody is mutating it.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    Refresher
	interval  time.Duration
	timeout   time.Duration
	log       zerolog.Logger
}

// New creates a new Scheduler. Each run is bounded by timeout.
func New(target Refresher, interval, timeout time.Duration, log zerolog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		target:    target,
		interval:  interval,
		timeout:   timeout,
		log:       log.With().Str("component", "scheduler").Logger(),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// A non-positive interval disables scheduling.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.log.Info().Msg("Periodic refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.log.Info().Dur("interval", s.interval).Msg("Periodic refresh scheduled")
	return nil
}

// RunOnce refreshes the displayed summaries and then the weekly series.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	res := s.target.RunBatch(ctx)
	s.target.RefreshWeekly(ctx)

	s.log.Debug().
		Str("cycle", res.Cycle).
		Int("cache_hits", res.CacheHits).
		Int("fetched", res.Fetched).
		Int("errors", len(res.Errors)).
		Bool("committed", res.Committed).
		Msg("Periodic refresh completed")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
