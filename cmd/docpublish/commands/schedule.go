package commands

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docpublish/internal/foundation/errors"
	"git.home.luguber.info/inful/docpublish/internal/logfields"
	"git.home.luguber.info/inful/docpublish/internal/schedule"
)

// ScheduleCmd implements the 'schedule' command.
type ScheduleCmd struct {
	Cron        string        `name:"cron" help:"Cron expression (e.g. '0 */6 * * *')" xor:"when"`
	Every       time.Duration `name:"every" help:"Fixed interval between runs (e.g. 30m)" xor:"when"`
	WithSeconds bool          `name:"with-seconds" help:"The cron expression has a leading seconds field"`
	Package     string        `arg:"" optional:"" help:"Package to build and publish (default: --default-package)"`
}

func (c *ScheduleCmd) Run(g *Global, root *CLI) error {
	if c.Cron == "" && c.Every <= 0 {
		return errors.ValidationError("one of --cron or --every is required").Build()
	}
	return root.withSession(g, func(s *session) error {
		sched, err := schedule.New()
		if err != nil {
			return errors.RuntimeError("failed to create scheduler").WithCause(err).Build()
		}
		job := func(ctx context.Context) error {
			res, err := s.pub.BuildAndPublish(ctx, c.Package)
			if ferr := s.Flush(); ferr != nil {
				g.Logger.Warn("Metrics not written", logfields.Error(ferr))
			}
			if err != nil {
				return err
			}
			return publishError(res)
		}

		name := "build-and-publish " + s.cfg.DefaultPackage
		if c.Package != "" {
			name = "build-and-publish " + c.Package
		}
		if c.Cron != "" {
			_, err = sched.AddCron(name, c.Cron, c.WithSeconds, job)
		} else {
			_, err = sched.AddInterval(name, c.Every, job)
		}
		if err != nil {
			return errors.ValidationError("invalid schedule").WithCause(err).Build()
		}
		for jobName, next := range sched.NextRuns() {
			g.Logger.Info("Next run", logfields.Job(jobName), "at", next.Format(time.RFC3339))
		}
		return sched.Run(g.Context)
	})
}
