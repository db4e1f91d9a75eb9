package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Job is a named unit of periodic work.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Scheduler runs a fixed set of jobs on a shared interval. It is deliberately
// simple: every tick runs every job in order, and a failing job never stops
// the others.
type Scheduler struct {
	jobs     []Job
	interval time.Duration
	logger   zerolog.Logger
}

// NewScheduler creates a scheduler running the given jobs at the interval.
func NewScheduler(jobs []Job, interval time.Duration, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		jobs:     jobs,
		interval: interval,
		logger:   logger.With().Str("component", "scheduler").Logger(),
	}
}

// Start runs the jobs once immediately and then on every tick until the
// context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info().
		Int("jobs", len(s.jobs)).
		Dur("interval", s.interval).
		Msg("scheduler started")

	s.runAll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("scheduler stopped")
			return
		case <-ticker.C:
			s.runAll(ctx)
		}
	}
}

func (s *Scheduler) runAll(ctx context.Context) {
	for _, job := range s.jobs {
		start := time.Now()
		if err := s.runOne(ctx, job); err != nil {
			s.logger.Error().
				Err(err).
				Str("job", job.Name).
				Msg("job failed")
			continue
		}
		s.logger.Info().
			Str("job", job.Name).
			Dur("duration", time.Since(start)).
			Msg("job completed")
	}
}

func (s *Scheduler) runOne(ctx context.Context, job Job) error {
	// Bound each run so one stuck job cannot block the schedule forever.
	runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()
	return job.Run(runCtx)
}
