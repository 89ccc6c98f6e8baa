// Package transport synchronizes a generated documentation directory to a
// remote host with rsync.
//
// Transport is the one boundary in docpublish that swallows failures: a
// failed transfer is reported on the diagnostic stream and as a failed
// TransferResult, never as a returned error.
package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/docpublish/internal/logfields"
	"git.home.luguber.info/inful/docpublish/internal/process"
)

// DefaultBinary is the rsync executable looked up on PATH.
const DefaultBinary = "rsync"

// archiveArgs mirror `rsync --progress -a -u -v -z`: archive mode, skip files
// newer on the receiver, compress in transit, report progress.
var archiveArgs = []string{"--progress", "-a", "-u", "-v", "-z"}

// TransferResult is the outcome of one Sync call.
type TransferResult struct {
	Source      string
	Destination string
	OK          bool
	Diagnostic  string
	Duration    time.Duration
}

// Transport copies localPath to remote.
type Transport interface {
	Sync(ctx context.Context, localPath, remote string) TransferResult
}

// Rsync implements Transport by running the rsync binary.
type Rsync struct {
	binary string
	runner process.Runner
	stdout io.Writer
	stderr io.Writer
	dryRun bool
}

// NewRsync returns an Rsync transport writing progress to stdout and
// diagnostics to stderr.
func NewRsync() *Rsync {
	return &Rsync{
		binary: DefaultBinary,
		runner: process.ExecRunner{},
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// WithBinary overrides the rsync executable.
func (r *Rsync) WithBinary(binary string) *Rsync {
	if binary != "" {
		r.binary = binary
	}
	return r
}

// WithRunner injects the process runner (fakes in tests).
func (r *Rsync) WithRunner(runner process.Runner) *Rsync {
	if runner != nil {
		r.runner = runner
	}
	return r
}

// WithOutput redirects rsync progress and diagnostic streams.
func (r *Rsync) WithOutput(stdout, stderr io.Writer) *Rsync {
	if stdout != nil {
		r.stdout = stdout
	}
	if stderr != nil {
		r.stderr = stderr
	}
	return r
}

// WithDryRun makes rsync report what it would transfer without copying.
func (r *Rsync) WithDryRun(dryRun bool) *Rsync {
	r.dryRun = dryRun
	return r
}

// Args returns the rsync argument vector for a transfer.
func (r *Rsync) Args(localPath, remote string) []string {
	args := make([]string, 0, len(archiveArgs)+3)
	args = append(args, archiveArgs...)
	if r.dryRun {
		args = append(args, "--dry-run")
	}
	return append(args, localPath, remote)
}

// Sync runs rsync. Neither localPath nor remote is validated; rsync reports
// anything wrong with them.
func (r *Rsync) Sync(ctx context.Context, localPath, remote string) TransferResult {
	cmd := process.Command{
		Name:   r.binary,
		Args:   r.Args(localPath, remote),
		Stdout: r.stdout,
		Stderr: r.stderr,
	}
	res := TransferResult{Source: localPath, Destination: remote}

	slog.Info("Synchronizing documentation",
		logfields.Source(localPath),
		logfields.Destination(remote),
		logfields.Command(cmd.String()))

	start := time.Now()
	err := r.runner.Run(ctx, cmd)
	res.Duration = time.Since(start)
	if err != nil {
		res.Diagnostic = fmt.Sprintf("rsync %s -> %s failed: %v", localPath, remote, err)
		_, _ = fmt.Fprintln(r.stderr, res.Diagnostic)
		slog.Error("Documentation sync failed",
			logfields.Source(localPath),
			logfields.Destination(remote),
			logfields.Error(err))
		return res
	}

	res.OK = true
	slog.Info("Documentation synchronized",
		logfields.Destination(remote),
		logfields.DurationMS(float64(res.Duration.Milliseconds())))
	return res
}
