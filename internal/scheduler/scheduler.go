// Package scheduler triggers pipeline runs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSpec runs once a day at 09:00 local time.
const DefaultSpec = "0 9 * * *"

// parser accepts standard five-field specs, an optional leading seconds field,
// and descriptors such as "@hourly" or "@every 6h".
var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler wraps robfig/cron and owns the run loop.
type Scheduler struct {
	spec   string
	job    Job
	logger *slog.Logger
}

// New creates a scheduler that runs job on spec.
func New(spec string, job Job, logger *slog.Logger) *Scheduler {
	return &Scheduler{spec: spec, job: job, logger: logger}
}

// Validate reports whether spec can be parsed.
func Validate(spec string) error {
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Run executes one immediate cycle, then runs the job on every tick of the
// schedule. A tick that fires while the previous run is still going is
// skipped. It returns nil when ctx is cancelled, after any in-flight run has
// finished.
func (s *Scheduler) Run(ctx context.Context) error {
	schedule, err := parser.Parse(s.spec)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}

	logger := cronLogger{s.logger}
	c := cron.New(cron.WithParser(parser), cron.WithLogger(logger))
	job := s.wrap(ctx, logger)
	c.Schedule(schedule, job)

	s.logger.Info("starting scheduler", "schedule", s.spec)

	job.Run()
	if ctx.Err() == nil {
		c.Start()
		s.logger.Info("next run scheduled", "at", schedule.Next(time.Now()))
	}

	<-ctx.Done()
	s.logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	return nil
}

// wrap turns the job into a cron.Job that recovers panics and never overlaps
// with itself.
func (s *Scheduler) wrap(ctx context.Context, logger cron.Logger) cron.Job {
	return cron.NewChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	).Then(cron.FuncJob(func() {
		if ctx.Err() != nil {
			return
		}
		if err := s.job(ctx); err != nil {
			s.logger.Error("scheduled run failed", "error", err)
		}
	}))
}
