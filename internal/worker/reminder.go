// Package worker runs the scheduled reminder job.
package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"billkeep/internal/core"
	"billkeep/internal/log"
	"billkeep/internal/services"
)

// Reminder fires the upcoming-bill notification path on a cron schedule,
// targeting the current month at each run.
type Reminder struct {
	cron     *cron.Cron
	notifier *services.Notifier
	logger   *log.Logger
}

func NewReminder(spec string, notifier *services.Notifier, logger *log.Logger) (*Reminder, error) {
	r := &Reminder{
		cron:     cron.New(),
		notifier: notifier,
		logger:   logger,
	}
	if _, err := r.cron.AddFunc(spec, r.runOnce); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reminder) runOnce() {
	now := time.Now()
	monthKey := core.MonthKey(now)
	result, err := r.notifier.SendUpcoming(context.Background(), monthKey, now)
	if err != nil {
		r.logger.Error("Reminder send failed", "month", monthKey, "error", err)
		return
	}
	if result.Reason != "" {
		r.logger.Info("Reminder skipped", "month", monthKey, "reason", result.Reason)
		return
	}
	r.logger.Info("Reminder sent", "month", monthKey, "sent", result.Sent)
}

// Run starts the schedule and blocks until ctx is cancelled, then waits for
// any in-flight job to finish.
func (r *Reminder) Run(ctx context.Context) error {
	r.cron.Start()
	r.logger.Info("Reminder scheduler started")
	<-ctx.Done()
	stopped := r.cron.Stop()
	<-stopped.Done()
	r.logger.Info("Reminder scheduler stopped")
	return nil
}
