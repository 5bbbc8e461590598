// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job represents a scheduled job
type Job interface {
	Run(ctx context.Context) error
	Name() string
}

// Scheduler manages background jobs
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
}

// New creates a new scheduler. Schedules use the standard five-field cron
// format plus descriptors such as @daily and @every 1h.
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(),
		ctx:    ctx,
		cancel: cancel,
		logger: logger.With(zap.String("component", "scheduler")),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("op", "scheduler.Start"))
}

// Stop stops the scheduler, cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped", zap.String("op", "scheduler.Stop"))
}

// AddJob registers a new job with cron schedule
// Schedule examples:
//   - "*/5 * * * *"   - Every 5 minutes
//   - "@hourly"       - Every hour
//   - "0 9 * * 1-5"   - 9 AM weekdays
//   - "@every 30s"    - Every 30 seconds
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.execute(job)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", schedule, job.Name(), err)
	}

	s.logger.Info("job registered",
		zap.String("op", "scheduler.AddJob"),
		zap.String("schedule", schedule),
		zap.String("job", job.Name()),
	)
	return nil
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(job Job) error {
	s.logger.Info("running job immediately",
		zap.String("op", "scheduler.RunNow"),
		zap.String("job", job.Name()),
	)
	return job.Run(s.ctx)
}

func (s *Scheduler) execute(job Job) {
	s.logger.Debug("running job", zap.String("op", "scheduler.execute"), zap.String("job", job.Name()))

	if err := job.Run(s.ctx); err != nil {
		s.logger.Error("job failed",
			zap.String("op", "scheduler.execute"),
			zap.String("job", job.Name()),
			zap.Error(err),
		)
		return
	}
	s.logger.Debug("job completed", zap.String("op", "scheduler.execute"), zap.String("job", job.Name()))
}
