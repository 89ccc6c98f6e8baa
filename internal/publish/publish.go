// Package publish sequences a documentation build and the rsync deploy of its
// output.
//
// The four operations are stateless compositions over a docbuild.Builder and
// a transport.Transport:
//
//   - Build runs the generator only.
//   - Deploy synchronizes a directory without building.
//   - Publish builds, then deploys or skips according to the gating mode.
//   - BuildAndPublish is Publish with every default derived from the package.
//
// Defaults are evaluated on every call, never captured at construction, so
// BuildAndPublish("widgets") always targets the widgets directory.
package publish

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docpublish/internal/config"
	"git.home.luguber.info/inful/docpublish/internal/docbuild"
	"git.home.luguber.info/inful/docpublish/internal/logfields"
	"git.home.luguber.info/inful/docpublish/internal/metrics"
	"git.home.luguber.info/inful/docpublish/internal/notify"
	"git.home.luguber.info/inful/docpublish/internal/sitepath"
	"git.home.luguber.info/inful/docpublish/internal/transport"
)

// Publisher runs build and deploy operations for one configuration.
type Publisher struct {
	cfg       config.Config
	builder   docbuild.Builder
	transport transport.Transport
	resolver  sitepath.Resolver

	out      io.Writer
	recorder metrics.Recorder
	notifier notify.Notifier
	newRunID func() string
	now      func() time.Time
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithOutput sets the stream human-readable progress lines are printed to.
func WithOutput(w io.Writer) Option {
	return func(p *Publisher) {
		if w != nil {
			p.out = w
		}
	}
}

// WithRecorder installs a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Publisher) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithNotifier installs a deploy notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(p *Publisher) {
		if n != nil {
			p.notifier = n
		}
	}
}

// WithRunIDs overrides run ID generation.
func WithRunIDs(f func() string) Option {
	return func(p *Publisher) {
		if f != nil {
			p.newRunID = f
		}
	}
}

// WithClock overrides the time source used for events.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

// New returns a Publisher. Zero-valued configuration fields take their defaults.
func New(cfg config.Config, builder docbuild.Builder, t transport.Transport, opts ...Option) *Publisher {
	cfg.ApplyDefaults()
	p := &Publisher{
		cfg:       cfg,
		builder:   builder,
		transport: t,
		resolver:  cfg.Resolver(),
		out:       os.Stdout,
		recorder:  metrics.NoopRecorder{},
		notifier:  notify.NoopNotifier{},
		newRunID:  func() string { return uuid.NewString() },
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the effective configuration.
func (p *Publisher) Config() config.Config {
	return p.cfg
}

func (p *Publisher) packageOrDefault(pkg string) string {
	if pkg == "" {
		return p.cfg.DefaultPackage
	}
	return pkg
}

// Path returns the remote path for pkg below the configured remote root. An
// empty pkg selects the default package.
func (p *Publisher) Path(pkg string) (string, error) {
	return p.resolver.Resolve(p.packageOrDefault(pkg), p.cfg.RemoteRoot)
}

// Site returns the full rsync destination ("host:path") for pkg.
func (p *Publisher) Site(pkg string) (string, error) {
	path, err := p.Path(pkg)
	if err != nil {
		return "", err
	}
	return sitepath.Destination(p.cfg.RemoteHost, path), nil
}

// Build runs the documentation generator for pkg (default package when
// empty). Generator start failures are returned unchanged.
func (p *Publisher) Build(ctx context.Context, pkg string) (docbuild.BuildResult, error) {
	res, err := p.builder.Build(ctx, p.packageOrDefault(pkg))
	if err == nil {
		p.recorder.ObserveBuild(res.Package, res.Duration, res.OK)
	}
	return res, err
}

// Sync copies path to site. Failures are reported in the result only.
func (p *Publisher) Sync(ctx context.Context, path, site string) transport.TransferResult {
	res := p.transport.Sync(ctx, path, site)
	p.recorder.ObserveSync(res.Duration, res.OK)
	return res
}

// DeployRequest overrides Deploy's defaults; empty fields are defaulted.
type DeployRequest struct {
	Source      string
	Destination string
}

// Deploy synchronizes Source (default: the default package's output
// directory) to Destination (default: remote host and root). No build runs.
func (p *Publisher) Deploy(ctx context.Context, req DeployRequest) transport.TransferResult {
	source := req.Source
	if source == "" {
		source = p.cfg.LocalPathFor(p.cfg.DefaultPackage)
	}
	destination := req.Destination
	if destination == "" {
		destination = p.cfg.DefaultDestination()
	}
	return p.Sync(ctx, source, destination)
}

// PublishRequest overrides Publish's defaults; empty fields are derived from
// Package at call time.
type PublishRequest struct {
	Path    string
	Site    string
	Package string
}

// PublishResult describes one Publish call.
type PublishResult struct {
	RunID       string
	Package     string
	Source      string
	Destination string
	Gating      config.GatingMode
	Build       docbuild.BuildResult
	Transfer    *transport.TransferResult
}

// Deployed reports whether a transfer was attempted.
func (r PublishResult) Deployed() bool {
	return r.Transfer != nil
}

// Publish builds req.Package and, if the gating mode allows it for the build
// outcome, deploys Path to Site.
func (p *Publisher) Publish(ctx context.Context, req PublishRequest) (PublishResult, error) {
	res := PublishResult{RunID: p.newRunID(), Gating: p.cfg.Gating}
	log := slog.With(logfields.RunID(res.RunID))

	name, err := sitepath.NormalizePackage(p.packageOrDefault(req.Package))
	if err != nil {
		p.recorder.IncPublishOutcome(metrics.OutcomeInvalidArgs)
		return res, err
	}
	res.Package = name

	res.Source = req.Path
	if res.Source == "" {
		res.Source = p.cfg.LocalPathFor(name)
	}
	res.Destination = req.Site
	if res.Destination == "" {
		if res.Destination, err = p.Site(name); err != nil {
			p.recorder.IncPublishOutcome(metrics.OutcomeInvalidArgs)
			return res, err
		}
	}

	p.printf("Building documentation for %s\n", name)
	res.Build, err = p.Build(ctx, name)
	if err != nil {
		p.recorder.IncPublishOutcome(metrics.OutcomeBuildError)
		log.Error("Documentation build could not run", logfields.Package(name), logfields.Error(err))
		return res, err
	}

	if !res.Gating.ShouldDeploy(res.Build.OK) {
		p.recorder.IncPublishOutcome(metrics.OutcomeSkipped)
		log.Info("Deploy skipped",
			logfields.Package(name),
			logfields.Gating(string(res.Gating)),
			slog.Bool("build_ok", res.Build.OK))
		return res, nil
	}

	p.printf("Deploying %s to %s\n", res.Source, res.Destination)
	transfer := p.Sync(ctx, res.Source, res.Destination)
	res.Transfer = &transfer
	if !transfer.OK {
		p.recorder.IncPublishOutcome(metrics.OutcomeSyncFailed)
		return res, nil
	}

	p.recorder.IncPublishOutcome(metrics.OutcomeDeployed)
	p.recorder.SetLastSuccess(name, p.now())
	p.announce(ctx, log, res)
	return res, nil
}

// BuildAndPublish publishes pkg with source and destination derived from it.
func (p *Publisher) BuildAndPublish(ctx context.Context, pkg string) (PublishResult, error) {
	return p.Publish(ctx, PublishRequest{Package: pkg})
}

func (p *Publisher) announce(ctx context.Context, log *slog.Logger, res PublishResult) {
	ev := notify.Event{
		RunID:       res.RunID,
		Package:     res.Package,
		Source:      res.Source,
		Destination: res.Destination,
		DryRun:      p.cfg.DryRun,
		PublishedAt: p.now().UTC(),
	}
	if err := p.notifier.Notify(ctx, ev); err != nil {
		log.Warn("Deploy notification failed", logfields.Package(res.Package), logfields.Error(err))
	}
}

func (p *Publisher) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}
