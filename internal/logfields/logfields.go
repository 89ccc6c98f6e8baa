package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID       = "run_id"
	KeyPackage     = "package"
	KeySource      = "source"
	KeyDestination = "destination"
	KeyStage       = "stage"
	KeyCommand     = "command"
	KeyDurationMS  = "duration_ms"
	KeyGating      = "gating"
	KeyOutput      = "output"
	KeyPath        = "path"
	KeyJob         = "job"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr          { return slog.String(KeyRunID, id) }
func Package(p string) slog.Attr         { return slog.String(KeyPackage, p) }
func Source(s string) slog.Attr          { return slog.String(KeySource, s) }
func Destination(d string) slog.Attr     { return slog.String(KeyDestination, d) }
func Stage(name string) slog.Attr        { return slog.String(KeyStage, name) }
func Command(c string) slog.Attr         { return slog.String(KeyCommand, c) }
func DurationMS(ms float64) slog.Attr    { return slog.Float64(KeyDurationMS, ms) }
func Gating(mode string) slog.Attr       { return slog.String(KeyGating, mode) }
func Output(o string) slog.Attr          { return slog.String(KeyOutput, o) }
func Path(p string) slog.Attr            { return slog.String(KeyPath, p) }
func Job(name string) slog.Attr          { return slog.String(KeyJob, name) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
