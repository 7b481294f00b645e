package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work. It returns how many items it handled.
type Job func(ctx context.Context) (int, error)

// RunRecorder receives one call per job run.
type RunRecorder interface {
	RecordScheduledRun(job string, success bool)
}

// Scheduler runs named jobs on cron specs. A run still in progress makes the
// next tick of the same job a no-op.
type Scheduler struct {
	logger   *slog.Logger
	recorder RunRecorder
	cron     *cron.Cron
	timeout  time.Duration
}

func New(logger *slog.Logger, recorder RunRecorder, location *time.Location, jobTimeout time.Duration) *Scheduler {
	if location == nil {
		location = time.UTC
	}
	if jobTimeout <= 0 {
		jobTimeout = time.Minute
	}
	c := cron.New(
		cron.WithLocation(location),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	return &Scheduler{logger: logger, recorder: recorder, cron: c, timeout: jobTimeout}
}

// Add registers job under spec, a standard five-field cron expression or a
// descriptor such as "@every 1m".
func (s *Scheduler) Add(ctx context.Context, name, spec string, job Job) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}
	_, err := s.cron.AddFunc(spec, func() { s.runJob(ctx, name, job) })
	return err
}

// Run starts the scheduler and blocks until ctx is cancelled, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return ctx.Err()
}

func (s *Scheduler) runJob(parent context.Context, name string, job Job) {
	if parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	started := time.Now()
	n, err := job(ctx)
	if s.recorder != nil {
		s.recorder.RecordScheduledRun(name, err == nil)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "scheduled job failed",
			"module", "scheduler",
			"layer", "adapter",
			"operation", name,
			"outcome", "failure",
			"error", err,
		)
		return
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "scheduled job completed",
			"module", "scheduler",
			"layer", "adapter",
			"operation", name,
			"outcome", "success",
			"items", n,
			"duration_ms", time.Since(started).Milliseconds(),
		)
	}
}
