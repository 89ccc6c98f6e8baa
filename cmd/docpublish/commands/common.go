package commands

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docpublish/internal/config"
	"git.home.luguber.info/inful/docpublish/internal/docbuild"
	"git.home.luguber.info/inful/docpublish/internal/foundation/errors"
	"git.home.luguber.info/inful/docpublish/internal/notify"
	"git.home.luguber.info/inful/docpublish/internal/process"
	"git.home.luguber.info/inful/docpublish/internal/sitepath"
	"git.home.luguber.info/inful/docpublish/internal/transport"
	"git.home.luguber.info/inful/docpublish/internal/version"
)

// Global carries process-wide collaborators into every command.
type Global struct {
	Context context.Context
	Logger  *slog.Logger
	Stdout  io.Writer
	Stderr  io.Writer
	// Runner executes the generator and rsync; nil means os/exec.
	Runner process.Runner
}

// CLI definition & global flags. Every configuration field can also be set
// through its DOCPUBLISH_* environment variable.
type CLI struct {
	Verbose   bool             `short:"v" help:"Enable verbose logging" env:"DOCPUBLISH_VERBOSE"`
	LogLevel  string           `name:"log-level" help:"Log level (debug|info|warn|error)" default:"info" env:"DOCPUBLISH_LOG_LEVEL"`
	LogFormat string           `name:"log-format" help:"Log format (text|json)" default:"text" env:"DOCPUBLISH_LOG_FORMAT"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	RemoteHost     string `name:"remote-host" help:"rsync host; empty for a local destination" default:"${remote_host}" env:"DOCPUBLISH_REMOTE_HOST"`
	RemoteRoot     string `name:"remote-root" help:"Remote directory holding all package documentation" default:"${remote_root}" env:"DOCPUBLISH_REMOTE_ROOT"`
	RootPackage    string `name:"root-package" help:"Package published directly under the remote root" default:"${root_package}" env:"DOCPUBLISH_ROOT_PACKAGE"`
	DefaultPackage string `name:"default-package" help:"Package used when none is given" default:"${root_package}" env:"DOCPUBLISH_DEFAULT_PACKAGE"`
	OutputRoot     string `name:"output-root" help:"Generator output root; packages land in <root>/<package>/html/" default:"${output_root}" env:"DOCPUBLISH_OUTPUT_ROOT"`
	LocalPath      string `name:"local-path" help:"Synchronize this directory instead of the package output directory" env:"DOCPUBLISH_LOCAL_PATH"`
	Gating         string `name:"gating" help:"Which build outcome lets publish deploy (${gating_modes})" default:"${gating}" env:"DOCPUBLISH_GATING"`
	Generator      string `name:"generator" help:"Generator command; {package} and {output} are substituted" default:"${generator}" env:"DOCPUBLISH_GENERATOR"`
	GeneratorDir   string `name:"generator-dir" help:"Working directory for the generator" env:"DOCPUBLISH_GENERATOR_DIR"`
	Rsync          string `name:"rsync" help:"rsync executable" default:"${rsync}" env:"DOCPUBLISH_RSYNC"`
	DryRun         bool   `name:"dry-run" help:"Pass --dry-run to rsync" env:"DOCPUBLISH_DRY_RUN"`

	MetricsTextfile string `name:"metrics-textfile" help:"Write Prometheus metrics to this file after the command" env:"DOCPUBLISH_METRICS_TEXTFILE"`
	NATSURL         string `name:"nats-url" help:"Announce successful deploys on this NATS server" env:"DOCPUBLISH_NATS_URL"`
	NATSSubject     string `name:"nats-subject" help:"NATS subject for deploy events" default:"${nats_subject}" env:"DOCPUBLISH_NATS_SUBJECT"`

	Build           BuildCmd           `cmd:"" help:"Generate documentation for a package"`
	Deploy          DeployCmd          `cmd:"" help:"Synchronize generated documentation without building"`
	Path            PathCmd            `cmd:"" help:"Print the remote path for a package"`
	Sync            SyncCmd            `cmd:"" help:"rsync a local directory to a destination"`
	Publish         PublishCmd         `cmd:"" help:"Build a package, then deploy according to the gating mode"`
	BuildAndPublish BuildAndPublishCmd `cmd:"" name:"build-and-publish" help:"Publish a package with all paths derived from its name"`
	Schedule        ScheduleCmd        `cmd:"" help:"Build and publish periodically"`
	Watch           WatchCmd           `cmd:"" help:"Build and publish whenever sources change"`
	VersionInfo     VersionCmd         `cmd:"" name:"version" help:"Show version information"`
}

// Vars supplies flag defaults from the config package.
func Vars() kong.Vars {
	d := config.Defaults()
	return kong.Vars{
		"version":      version.String(),
		"remote_host":  d.RemoteHost,
		"remote_root":  d.RemoteRoot,
		"root_package": sitepath.DefaultRootPackage,
		"output_root":  docbuild.DefaultOutputRoot,
		"generator":    docbuild.DefaultGenerator,
		"rsync":        transport.DefaultBinary,
		"nats_subject": notify.DefaultSubject,
		"gating":       string(d.Gating),
		"gating_modes": strings.Join(config.GatingModes(), "|"),
	}
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply(g *Global) error {
	logging := c.logging()
	g.Logger = logging.NewLogger(g.Stderr)
	slog.SetDefault(g.Logger)
	return nil
}

func (c *CLI) logging() config.LoggingConfig {
	level := config.NormalizeLogLevel(c.LogLevel)
	if c.Verbose {
		level = config.LogLevelDebug
	}
	return config.LoggingConfig{Level: level, Format: config.NormalizeLogFormat(c.LogFormat)}
}

// Config assembles and validates the publisher configuration from flags.
func (c *CLI) Config() (config.Config, error) {
	gating, err := config.NormalizeGating(c.Gating)
	if err != nil {
		return config.Config{}, errors.ConfigError("invalid --gating").WithCause(err).Build()
	}
	cfg := config.Config{
		LocalPath:      c.LocalPath,
		OutputRoot:     c.OutputRoot,
		RemoteHost:     c.RemoteHost,
		RemoteRoot:     c.RemoteRoot,
		RootPackage:    c.RootPackage,
		DefaultPackage: c.DefaultPackage,
		Gating:         gating,
		Generator:      c.Generator,
		GeneratorDir:   c.GeneratorDir,
		RsyncBinary:    c.Rsync,
		DryRun:         c.DryRun,
		Logging:        c.logging(),
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
