package commands

import (
	stderrors "errors"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docpublish/internal/config"
	"git.home.luguber.info/inful/docpublish/internal/docbuild"
	"git.home.luguber.info/inful/docpublish/internal/foundation/errors"
	"git.home.luguber.info/inful/docpublish/internal/metrics"
	"git.home.luguber.info/inful/docpublish/internal/notify"
	"git.home.luguber.info/inful/docpublish/internal/publish"
	"git.home.luguber.info/inful/docpublish/internal/transport"
)

// session owns the publisher and the resources that outlive a single
// operation: the metrics registry and the NATS connection.
type session struct {
	cfg      config.Config
	pub      *publish.Publisher
	registry *prom.Registry
	textfile string
	nats     *notify.NATSNotifier
}

// openSession wires the publisher for the parsed flags. skipBuild swaps the
// generator for a builder that only reports the existing output directory.
func (c *CLI) openSession(g *Global, skipBuild bool) (*session, error) {
	cfg, err := c.Config()
	if err != nil {
		return nil, err
	}
	argv, err := cfg.GeneratorArgv()
	if err != nil {
		return nil, errors.ConfigError("invalid generator command").WithCause(err).Build()
	}

	var builder docbuild.Builder = docbuild.NewGeneratorBuilder(argv, cfg.OutputRoot).
		WithRunner(g.Runner).
		WithDir(cfg.GeneratorDir).
		WithOutput(g.Stdout, g.Stderr)
	if skipBuild {
		builder = docbuild.NoopBuilder{OutputRoot: cfg.OutputRootDir()}
	}
	rsync := transport.NewRsync().
		WithBinary(cfg.RsyncBinary).
		WithRunner(g.Runner).
		WithOutput(g.Stdout, g.Stderr).
		WithDryRun(cfg.DryRun)

	s := &session{cfg: cfg, textfile: c.MetricsTextfile}
	opts := []publish.Option{publish.WithOutput(g.Stdout)}

	if s.textfile != "" {
		s.registry = prom.NewRegistry()
		opts = append(opts, publish.WithRecorder(metrics.NewPrometheusRecorder(s.registry)))
	}
	if c.NATSURL != "" {
		n, err := notify.NewNATSNotifier(c.NATSURL, c.NATSSubject)
		if err != nil {
			// Deploys must not depend on the event bus being up.
			slog.Warn("Deploy notifications disabled", "error", err)
		} else {
			s.nats = n
			opts = append(opts, publish.WithNotifier(n))
		}
	}

	s.pub = publish.New(cfg, builder, rsync, opts...)
	return s, nil
}

// Flush writes the metrics textfile, if one was requested.
func (s *session) Flush() error {
	if s.registry == nil {
		return nil
	}
	if err := metrics.WriteTextfile(s.textfile, s.registry); err != nil {
		return errors.RuntimeError("failed to write metrics").
			WithContext("path", s.textfile).
			WithCause(err).
			Build()
	}
	return nil
}

// Close flushes metrics and releases the NATS connection.
func (s *session) Close() error {
	if s.nats != nil {
		s.nats.Close()
	}
	return s.Flush()
}

// withSession runs fn with an open session and closes it afterwards. A close
// failure is only reported when fn itself succeeded.
func (c *CLI) withSession(g *Global, fn func(*session) error) error {
	return c.runSession(g, false, fn)
}

// runSession is withSession with control over the generator.
func (c *CLI) runSession(g *Global, skipBuild bool, fn func(*session) error) (err error) {
	s, err := c.openSession(g, skipBuild)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

// publishError turns a publish result into the CLI's exit status: a failed
// transfer first, then a failed build.
func publishError(res publish.PublishResult) error {
	if res.Transfer != nil {
		if err := transferError(*res.Transfer); err != nil {
			return err
		}
	}
	if !res.Build.OK {
		return buildFailed(res.Build)
	}
	return nil
}

// transferError reports a failed transfer after the fact. The diagnostic has
// already been written to stderr by the transport.
func transferError(res transport.TransferResult) error {
	if res.OK {
		return nil
	}
	return errors.TransferError("documentation sync failed").
		WithContext("destination", res.Destination).
		WithCause(stderrors.New(res.Diagnostic)).
		Build()
}

func buildFailed(res docbuild.BuildResult) error {
	return errors.BuildError("documentation build failed").
		WithContext("package", res.Package).
		WithCause(stderrors.New(res.Diagnostic)).
		Build()
}
