package transport

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpublish/internal/process"
)

// fakeRunner records commands and returns a canned error.
type fakeRunner struct {
	calls []process.Command
	err   error
}

func (f *fakeRunner) Run(_ context.Context, cmd process.Command) error {
	f.calls = append(f.calls, cmd)
	if cmd.Stdout != nil {
		_, _ = fmt.Fprintln(cmd.Stdout, "sending incremental file list")
	}
	return f.err
}

func TestRsync_Args(t *testing.T) {
	r := NewRsync()
	require.Equal(t,
		[]string{"--progress", "-a", "-u", "-v", "-z", "docs/build/widgets/html/", "host:/srv/www/codex/widgets/"},
		r.Args("docs/build/widgets/html/", "host:/srv/www/codex/widgets/"))

	r.WithDryRun(true)
	require.Equal(t,
		[]string{"--progress", "-a", "-u", "-v", "-z", "--dry-run", "src/", "dst/"},
		r.Args("src/", "dst/"))
}

func TestRsync_SyncSuccess(t *testing.T) {
	runner := &fakeRunner{}
	var stdout, stderr bytes.Buffer
	r := NewRsync().WithRunner(runner).WithOutput(&stdout, &stderr).WithBinary("/usr/local/bin/rsync")

	res := r.Sync(context.Background(), "docs/build/mcodex/html/", "host:/srv/www/codex/")

	require.True(t, res.OK)
	require.Empty(t, res.Diagnostic)
	require.Equal(t, "docs/build/mcodex/html/", res.Source)
	require.Equal(t, "host:/srv/www/codex/", res.Destination)
	require.Len(t, runner.calls, 1)
	require.Equal(t, "/usr/local/bin/rsync", runner.calls[0].Name)
	require.Contains(t, stdout.String(), "sending incremental file list")
	require.Empty(t, stderr.String())
}

func TestRsync_SyncFailureIsSwallowed(t *testing.T) {
	runner := &fakeRunner{err: &process.ExitError{Command: "rsync", Code: 23}}
	var stdout, stderr bytes.Buffer
	r := NewRsync().WithRunner(runner).WithOutput(&stdout, &stderr)

	res := r.Sync(context.Background(), "missing/", "host:/srv/")

	require.False(t, res.OK)
	require.Contains(t, res.Diagnostic, "exit status 23")
	require.Contains(t, stderr.String(), "rsync missing/ -> host:/srv/ failed")
}

func TestRsync_SyncMissingBinaryIsSwallowed(t *testing.T) {
	var stderr bytes.Buffer
	r := NewRsync().WithBinary("docpublish-missing-rsync").WithOutput(&bytes.Buffer{}, &stderr)

	res := r.Sync(context.Background(), "src/", "dst/")

	require.False(t, res.OK)
	require.Contains(t, stderr.String(), "executable not found")
}
