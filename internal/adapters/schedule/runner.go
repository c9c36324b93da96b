package schedule

import (
	"context"
	"time"

	"analyseman/internal/ports"

	"github.com/robfig/cron/v3"
)

// Runner wraps a cron scheduler. Jobs receive the base context so a
// process-wide shutdown cancels in-flight scheduled work.
type Runner struct {
	cron    *cron.Cron
	logger  ports.Logger
	baseCtx context.Context
}

// New creates a runner evaluating cron expressions in the given location.
func New(logger ports.Logger, baseCtx context.Context, loc *time.Location) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Runner{
		cron:    cron.New(cron.WithLocation(loc)),
		logger:  logger,
		baseCtx: baseCtx,
	}
}

// Add schedules a job with a standard 5-field cron expression.
func (r *Runner) Add(spec string, job func(context.Context)) (cron.EntryID, error) {
	return r.cron.AddFunc(spec, func() {
		job(r.baseCtx)
	})
}

// Start begins running scheduled jobs in their own goroutine.
func (r *Runner) Start() {
	r.logger.Info(r.baseCtx, "Scheduler started")
	r.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info(r.baseCtx, "Scheduler stopped")
}
