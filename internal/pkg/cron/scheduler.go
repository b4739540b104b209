package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps robfig/cron with slog-aware job execution. Jobs receive a
// context and the trigger time, so their logic stays testable with a fixed
// clock.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// JobFunc is one scheduled unit of work. now is the wall-clock trigger time.
type JobFunc func(ctx context.Context, now time.Time) error

func NewScheduler(logger *slog.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:   c,
		logger: logger,
	}
}

// AddJob registers fn under the given cron spec ("0 8 * * *", "@every 30m").
func (s *Scheduler) AddJob(name, spec string, fn JobFunc) error {
	_, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		s.logger.Debug("cron job starting", "name", name)

		if err := fn(context.Background(), start); err != nil {
			s.logger.Error("cron job failed", "name", name, "error", err, "duration", time.Since(start))
			return
		}
		s.logger.Debug("cron job completed", "name", name, "duration", time.Since(start))
	})
	if err != nil {
		return err
	}

	s.logger.Info("cron job registered", "name", name, "schedule", spec)
	return nil
}

// Start begins running all scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("cron scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping cron scheduler...")
	<-s.cron.Stop().Done()
	s.logger.Info("cron scheduler stopped")
}
