// Package schedule runs publish jobs periodically.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/docpublish/internal/logfields"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler wraps a gocron scheduler. Jobs run in singleton mode: a run that
// comes due while the previous one is still going is rescheduled, so two
// builds never write the same output directory at once.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// New creates a scheduler.
func New(opts ...gocron.SchedulerOption) (*Scheduler, error) {
	s, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// AddCron schedules job on a cron expression. withSeconds accepts a leading
// seconds field.
func (s *Scheduler) AddCron(name, expr string, withSeconds bool, job Job) (string, error) {
	return s.add(name, gocron.CronJob(expr, withSeconds), job)
}

// AddInterval schedules job every interval.
func (s *Scheduler) AddInterval(name string, interval time.Duration, job Job) (string, error) {
	if interval <= 0 {
		return "", fmt.Errorf("interval must be positive, got %s", interval)
	}
	return s.add(name, gocron.DurationJob(interval), job)
}

func (s *Scheduler) add(name string, def gocron.JobDefinition, job Job) (string, error) {
	j, err := s.scheduler.NewJob(
		def,
		gocron.NewTask(func(ctx context.Context) { run(ctx, name, job) }),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create job %s: %w", name, err)
	}
	return j.ID().String(), nil
}

func run(ctx context.Context, name string, job Job) {
	start := time.Now()
	slog.Info("Executing scheduled job", logfields.Job(name))
	if err := job(ctx); err != nil {
		slog.Error("Scheduled job failed", logfields.Job(name), logfields.Error(err))
		return
	}
	slog.Info("Scheduled job finished",
		logfields.Job(name),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
}

// NextRuns reports the next run time per job name.
func (s *Scheduler) NextRuns() map[string]time.Time {
	out := make(map[string]time.Time)
	for _, j := range s.scheduler.Jobs() {
		if next, err := j.NextRun(); err == nil {
			out[j.Name()] = next
		}
	}
	return out
}

// Run starts the scheduler and blocks until ctx is done, then shuts down
// waiting for running jobs.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("Starting scheduler", "jobs", len(s.scheduler.Jobs()))
	s.scheduler.Start()
	<-ctx.Done()
	slog.Info("Stopping scheduler")
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("scheduler shutdown: %w", err)
	}
	return nil
}
