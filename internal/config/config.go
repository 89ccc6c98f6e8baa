// Package config holds the explicit docpublish configuration. A Config value
// is built once per process (flags, DOCPUBLISH_* environment variables,
// defaults) and passed to the publisher; nothing here is process-global.
package config

import (
	"git.home.luguber.info/inful/docpublish/internal/docbuild"
	"git.home.luguber.info/inful/docpublish/internal/foundation/errors"
	"git.home.luguber.info/inful/docpublish/internal/sitepath"
	"git.home.luguber.info/inful/docpublish/internal/transport"
)

const (
	DefaultRemoteHost = "docs.example.org"
	DefaultRemoteRoot = "/srv/www/codex/"
)

// Config is the complete publisher configuration.
type Config struct {
	// LocalPath overrides the synchronized source directory. Empty means the
	// generator output directory of the package being published.
	LocalPath  string
	OutputRoot string

	RemoteHost string
	RemoteRoot string

	RootPackage    string
	DefaultPackage string

	Gating GatingMode

	Generator    string // shell-quoted argv template with {package} and {output}
	GeneratorDir string
	RsyncBinary  string
	DryRun       bool

	Logging LoggingConfig
}

// LoggingConfig selects slog level and handler format.
type LoggingConfig struct {
	Level  LogLevel
	Format LogFormat
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		OutputRoot:     docbuild.DefaultOutputRoot,
		RemoteHost:     DefaultRemoteHost,
		RemoteRoot:     DefaultRemoteRoot,
		RootPackage:    sitepath.DefaultRootPackage,
		DefaultPackage: sitepath.DefaultRootPackage,
		Gating:         GatingAsObserved,
		Generator:      docbuild.DefaultGenerator,
		RsyncBinary:    transport.DefaultBinary,
		Logging:        LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
	}
}

// ApplyDefaults fills zero-valued fields from Defaults. RemoteHost is left
// alone: an empty host means a local rsync destination.
func (c *Config) ApplyDefaults() {
	d := Defaults()
	if c.OutputRoot == "" {
		c.OutputRoot = d.OutputRoot
	}
	if c.RemoteRoot == "" {
		c.RemoteRoot = d.RemoteRoot
	}
	if c.RootPackage == "" {
		c.RootPackage = d.RootPackage
	}
	if c.DefaultPackage == "" {
		c.DefaultPackage = d.DefaultPackage
	}
	if c.Gating == "" {
		c.Gating = d.Gating
	}
	if c.Generator == "" {
		c.Generator = d.Generator
	}
	if c.RsyncBinary == "" {
		c.RsyncBinary = d.RsyncBinary
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}
}

// Validate checks the fields the publisher cannot work without.
func (c Config) Validate() error {
	if c.RemoteRoot == "" {
		return errors.ConfigError("remote root is empty").Build()
	}
	if _, err := sitepath.NormalizePackage(c.DefaultPackage); err != nil {
		return errors.ConfigError("default package is empty").WithCause(err).Build()
	}
	if _, err := NormalizeGating(string(c.Gating)); err != nil {
		return errors.ConfigError("invalid gating mode").WithCause(err).Build()
	}
	if _, err := c.GeneratorArgv(); err != nil {
		return errors.ConfigError("invalid generator command").
			WithCause(err).
			WithContext("generator", c.Generator).
			Build()
	}
	return nil
}

// GeneratorArgv parses the generator command template.
func (c Config) GeneratorArgv() ([]string, error) {
	return docbuild.ParseGenerator(c.Generator)
}

// Resolver returns the path resolver for the configured root package.
func (c Config) Resolver() sitepath.Resolver {
	return sitepath.NewResolver(c.RootPackage)
}

// LocalPathFor returns the directory synchronized when publishing pkg.
func (c Config) LocalPathFor(pkg string) string {
	if c.LocalPath != "" {
		return c.LocalPath
	}
	return docbuild.OutputDir(c.OutputRootDir(), pkg)
}

// OutputRootDir is the output root as the generator sees it: relative roots
// live below GeneratorDir.
func (c Config) OutputRootDir() string {
	return docbuild.ResolveOutputRoot(c.GeneratorDir, c.OutputRoot)
}

// DefaultDestination is the remote root on the remote host.
func (c Config) DefaultDestination() string {
	return sitepath.Destination(c.RemoteHost, c.RemoteRoot)
}
