package cron

import (
	"context"
	"time"

	"github.com/duetap/duetap-backend-go/internal/config"
)

// CycleAdvancer rolls due subscriptions into their next billing cycle.
type CycleAdvancer interface {
	AdvanceDueCycles(ctx context.Context, now time.Time) error
}

// ReminderSweeper dispatches the day's due reminder tasks.
type ReminderSweeper interface {
	RunDailySweep(ctx context.Context, now time.Time) error
}

// OverdueMarker flips past-due pending payments to overdue.
type OverdueMarker interface {
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

// BillingJobs bundles the periodic billing engine triggers.
type BillingJobs struct {
	advancer CycleAdvancer
	sweeper  ReminderSweeper
	overdue  OverdueMarker
	cfg      config.CronConfig
}

func NewBillingJobs(advancer CycleAdvancer, sweeper ReminderSweeper, overdue OverdueMarker, cfg config.CronConfig) *BillingJobs {
	return &BillingJobs{
		advancer: advancer,
		sweeper:  sweeper,
		overdue:  overdue,
		cfg:      cfg,
	}
}

func (j *BillingJobs) RegisterJobs(scheduler *Scheduler) error {
	if err := scheduler.AddJob("daily_reminder_sweep", j.cfg.DailySweepSchedule, j.runDailySweep); err != nil {
		return err
	}
	if err := scheduler.AddJob("recurring_cycle_advancer", j.cfg.AdvancerSchedule, j.runCycleAdvancer); err != nil {
		return err
	}
	return scheduler.AddJob("mark_overdue_payments", j.cfg.OverdueSchedule, j.runMarkOverdue)
}

func (j *BillingJobs) runDailySweep(ctx context.Context, now time.Time) error {
	return j.sweeper.RunDailySweep(ctx, now)
}

func (j *BillingJobs) runCycleAdvancer(ctx context.Context, now time.Time) error {
	return j.advancer.AdvanceDueCycles(ctx, now)
}

func (j *BillingJobs) runMarkOverdue(ctx context.Context, now time.Time) error {
	_, err := j.overdue.MarkOverdue(ctx, now)
	return err
}
