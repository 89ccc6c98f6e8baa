package commands

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docpublish/internal/foundation/errors"
	"git.home.luguber.info/inful/docpublish/internal/logfields"
	"git.home.luguber.info/inful/docpublish/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Source   string        `name:"source" short:"s" help:"Documentation source directory to watch" default:"docs"`
	Debounce time.Duration `name:"debounce" help:"Quiet period before a rebuild" default:"2s"`
	Initial  bool          `name:"initial" help:"Build and publish once before waiting for changes"`
	Package  string        `arg:"" optional:"" help:"Package to build and publish (default: --default-package)"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	return root.withSession(g, func(s *session) error {
		watcher, err := watch.New(w.Source, w.Debounce, s.cfg.OutputRootDir())
		if err != nil {
			return errors.RuntimeError("failed to watch sources").
				WithContext("source", w.Source).
				WithCause(err).
				Build()
		}

		publishOnce := func(ctx context.Context) {
			res, err := s.pub.BuildAndPublish(ctx, w.Package)
			if err == nil {
				err = publishError(res)
			}
			if err != nil {
				g.Logger.Error("Publish after change failed", logfields.Package(w.Package), logfields.Error(err))
			}
			if ferr := s.Flush(); ferr != nil {
				g.Logger.Warn("Metrics not written", logfields.Error(ferr))
			}
		}
		if w.Initial {
			publishOnce(g.Context)
		}
		return watcher.Run(g.Context, publishOnce)
	})
}
