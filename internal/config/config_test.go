package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpublish/internal/foundation/errors"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "docs.example.org:/srv/www/codex/", cfg.DefaultDestination())
	require.Equal(t, GatingAsObserved, cfg.Gating)
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{RemoteHost: "", DefaultPackage: "widgets"}
	cfg.ApplyDefaults()

	require.Equal(t, "widgets", cfg.DefaultPackage)
	require.Equal(t, DefaultRemoteRoot, cfg.RemoteRoot)
	require.Equal(t, "", cfg.RemoteHost, "empty host stays local")
	require.Equal(t, "/srv/www/codex/", cfg.DefaultDestination())
	require.Equal(t, LogLevelInfo, cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty remote root", func(c *Config) { c.RemoteRoot = "" }},
		{"blank default package", func(c *Config) { c.DefaultPackage = "   " }},
		{"bad gating", func(c *Config) { c.Gating = "sometimes" }},
		{"blank generator", func(c *Config) { c.Generator = " " }},
		{"unterminated generator quote", func(c *Config) { c.Generator = `hugo "--source` }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.True(t, errors.HasCategory(err, errors.CategoryConfig))
		})
	}
}

func TestLocalPathFor(t *testing.T) {
	cfg := Defaults()
	require.Equal(t, filepath.Join("docs", "build", "widgets", "html")+string(filepath.Separator), cfg.LocalPathFor("widgets"))

	cfg.GeneratorDir = "/srv/site"
	require.Equal(t, filepath.Join("/srv/site", "docs", "build", "widgets", "html")+string(filepath.Separator), cfg.LocalPathFor("widgets"))

	cfg.OutputRoot = "/var/out"
	require.Equal(t, "/var/out", cfg.OutputRootDir(), "absolute roots ignore the generator directory")

	cfg.LocalPath = "/var/cache/site/"
	require.Equal(t, "/var/cache/site/", cfg.LocalPathFor("widgets"))
}

func TestGating(t *testing.T) {
	mode, err := NormalizeGating("On-Success")
	require.NoError(t, err)
	require.Equal(t, GatingOnSuccess, mode)
	require.True(t, mode.ShouldDeploy(true))
	require.False(t, mode.ShouldDeploy(false))

	mode, err = NormalizeGating("")
	require.NoError(t, err)
	require.Equal(t, GatingAsObserved, mode)
	require.False(t, mode.ShouldDeploy(true))
	require.True(t, mode.ShouldDeploy(false))

	_, err = NormalizeGating("always")
	require.Error(t, err)
	require.Contains(t, GatingModes(), "legacy")
}

func TestResolverUsesRootPackage(t *testing.T) {
	cfg := Defaults()
	cfg.RootPackage = "handbook"
	got, err := cfg.Resolver().Resolve("Handbook", cfg.RemoteRoot)
	require.NoError(t, err)
	require.Equal(t, cfg.RemoteRoot, got)
}

func TestLogging(t *testing.T) {
	require.Equal(t, LogLevelWarn, NormalizeLogLevel("WARNING"))
	require.Equal(t, LogLevelInfo, NormalizeLogLevel("chatty"))
	require.Equal(t, LogFormatJSON, NormalizeLogFormat(" JSON "))
	require.Equal(t, slog.LevelDebug, LogLevelDebug.SlogLevel())

	var buf bytes.Buffer
	logger := LoggingConfig{Level: LogLevelInfo, Format: LogFormatJSON}.NewLogger(&buf)
	logger.Debug("hidden")
	logger.Info("shown", "package", "widgets")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "shown", entry["msg"])
	require.Equal(t, "widgets", entry["package"])
}
