package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpublish/internal/process"
)

// scriptedRunner fakes the generator and rsync by binary name.
type scriptedRunner struct {
	buildExit int
	buildErr  error
	syncExit  int
	calls     []process.Command
}

func (r *scriptedRunner) Run(_ context.Context, c process.Command) error {
	r.calls = append(r.calls, c)
	switch c.Name {
	case "rsync":
		if r.syncExit != 0 {
			return &process.ExitError{Command: c.String(), Code: r.syncExit}
		}
	default:
		if r.buildErr != nil {
			return r.buildErr
		}
		if r.buildExit != 0 {
			return &process.ExitError{Command: c.String(), Code: r.buildExit}
		}
	}
	return nil
}

func (r *scriptedRunner) named(name string) []process.Command {
	var out []process.Command
	for _, c := range r.calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, runner process.Runner, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), args, &stdout, &stderr, runner)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestPathCommand(t *testing.T) {
	r := run(t, &scriptedRunner{}, "path", "Widgets")
	require.Equal(t, 0, r.code, r.stderr)
	require.Equal(t, "/srv/www/codex/widgets/\n", r.stdout)

	r = run(t, &scriptedRunner{}, "path")
	require.Equal(t, 0, r.code, r.stderr)
	require.Equal(t, "/srv/www/codex/\n", r.stdout)

	r = run(t, &scriptedRunner{}, "path", "--site", "widgets")
	require.Equal(t, 0, r.code, r.stderr)
	require.Equal(t, "docs.example.org:/srv/www/codex/widgets/\n", r.stdout)
}

func TestPathCommand_EmptyPackage(t *testing.T) {
	r := run(t, &scriptedRunner{}, "path", "  ")
	require.Equal(t, 2, r.code)
	require.Contains(t, r.stderr, "package identifier is empty")
}

func TestBuildAndPublish_OnSuccessDeploys(t *testing.T) {
	runner := &scriptedRunner{}
	out := t.TempDir()
	r := run(t, runner, "--gating=on-success", "--output-root", out, "build-and-publish", "widgets")
	require.Equal(t, 0, r.code, r.stderr)

	builds := runner.named("hugo")
	require.Len(t, builds, 1)
	require.Contains(t, builds[0].Args, "docs/widgets")

	syncs := runner.named("rsync")
	require.Len(t, syncs, 1)
	require.Equal(t, []string{
		"--progress", "-a", "-u", "-v", "-z",
		filepath.Join(out, "widgets", "html") + string(filepath.Separator),
		"docs.example.org:/srv/www/codex/widgets/",
	}, syncs[0].Args)
	require.Contains(t, r.stdout, "Building documentation for widgets\n")
	require.Contains(t, r.stdout, "Deploying ")
}

func TestBuildAndPublish_AsObservedSkipsAfterSuccessfulBuild(t *testing.T) {
	runner := &scriptedRunner{}
	r := run(t, runner, "build-and-publish", "widgets")
	require.Equal(t, 0, r.code, r.stderr)
	require.Len(t, runner.named("hugo"), 1)
	require.Empty(t, runner.named("rsync"))
	require.NotContains(t, r.stdout, "Deploying")
}

func TestBuildAndPublish_AsObservedDeploysAfterFailedBuild(t *testing.T) {
	runner := &scriptedRunner{buildExit: 1}
	r := run(t, runner, "build-and-publish", "widgets")
	require.Len(t, runner.named("rsync"), 1)
	require.Equal(t, 11, r.code)
	require.Contains(t, r.stderr, "documentation build failed")
}

func TestPublish_SkipBuild(t *testing.T) {
	runner := &scriptedRunner{buildExit: 1}
	r := run(t, runner, "--gating=on-success", "publish", "--skip-build", "--package", "widgets")
	require.Equal(t, 0, r.code, r.stderr)
	require.Empty(t, runner.named("hugo"))
	syncs := runner.named("rsync")
	require.Len(t, syncs, 1)
	args := syncs[0].Args
	require.Equal(t, filepath.Join("docs", "build", "widgets", "html")+string(filepath.Separator), args[len(args)-2])

	runner = &scriptedRunner{}
	r = run(t, runner, "--generator-dir", "/srv/site", "--gating=on-success", "build-and-publish", "--skip-build", "widgets")
	require.Equal(t, 0, r.code, r.stderr)
	require.Empty(t, runner.named("hugo"))
	args = runner.named("rsync")[0].Args
	require.Equal(t, filepath.Join("/srv/site", "docs", "build", "widgets", "html")+string(filepath.Separator), args[len(args)-2])
}

func TestPublish_SyncFailure(t *testing.T) {
	runner := &scriptedRunner{syncExit: 23}
	r := run(t, runner, "--gating=on-success", "publish", "--package", "widgets", "--site", "mirror:/tmp/widgets/")
	require.Equal(t, 8, r.code)
	require.Contains(t, r.stderr, "rsync")
	require.Contains(t, r.stderr, "mirror:/tmp/widgets/")
}

func TestBuild_GeneratorMissing(t *testing.T) {
	runner := &scriptedRunner{buildErr: fmt.Errorf("%w: hugo", process.ErrNotFound)}
	r := run(t, runner, "--gating=on-success", "build-and-publish", "widgets")
	require.Equal(t, 11, r.code)
	require.Empty(t, runner.named("rsync"))
	require.Contains(t, r.stderr, "documentation generator could not run")
}

func TestBuild_Command(t *testing.T) {
	runner := &scriptedRunner{}
	r := run(t, runner, "--generator", "mkdocs build -f {package}.yml -d {output}", "build", "widgets")
	require.Equal(t, 0, r.code, r.stderr)
	builds := runner.named("mkdocs")
	require.Len(t, builds, 1)
	require.Equal(t, "widgets.yml", builds[0].Args[2])
	require.Contains(t, r.stdout, "Built widgets into ")

	runner = &scriptedRunner{buildExit: 2}
	r = run(t, runner, "build", "widgets")
	require.Equal(t, 11, r.code)
}

func TestSyncAndDeployCommands(t *testing.T) {
	runner := &scriptedRunner{}
	r := run(t, runner, "sync", "site/", "host:/var/www/")
	require.Equal(t, 0, r.code, r.stderr)
	require.Equal(t, []string{"--progress", "-a", "-u", "-v", "-z", "site/", "host:/var/www/"}, runner.named("rsync")[0].Args)

	runner = &scriptedRunner{}
	r = run(t, runner, "--dry-run", "deploy")
	require.Equal(t, 0, r.code, r.stderr)
	args := runner.named("rsync")[0].Args
	require.Contains(t, args, "--dry-run")
	require.Equal(t, "docs.example.org:/srv/www/codex/", args[len(args)-1])
	require.Empty(t, runner.named("hugo"))
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("DOCPUBLISH_REMOTE_HOST", "mirror.example.org")
	t.Setenv("DOCPUBLISH_REMOTE_ROOT", "/var/docs/")
	r := run(t, &scriptedRunner{}, "path", "--site", "widgets")
	require.Equal(t, 0, r.code, r.stderr)
	require.Equal(t, "mirror.example.org:/var/docs/widgets/\n", r.stdout)
}

func TestEmptyRemoteHostIsLocal(t *testing.T) {
	runner := &scriptedRunner{}
	r := run(t, runner, "--remote-host=", "--remote-root", "/tmp/www/", "--gating=on-success", "build-and-publish", "widgets")
	require.Equal(t, 0, r.code, r.stderr)
	args := runner.named("rsync")[0].Args
	require.Equal(t, "/tmp/www/widgets/", args[len(args)-1])
}

func TestMetricsTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docpublish.prom")
	r := run(t, &scriptedRunner{}, "--metrics-textfile", path, "--gating=on-success", "build-and-publish", "widgets")
	require.Equal(t, 0, r.code, r.stderr)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `docpublish_publish_outcomes_total{outcome="deployed"} 1`)
	require.Contains(t, string(data), "docpublish_last_deploy_timestamp_seconds")
}

func TestInvalidGating(t *testing.T) {
	r := run(t, &scriptedRunner{}, "--gating", "sometimes", "build", "widgets")
	require.Equal(t, 7, r.code)
	require.Contains(t, r.stderr, "invalid --gating")
}

func TestScheduleRequiresTrigger(t *testing.T) {
	r := run(t, &scriptedRunner{}, "schedule", "widgets")
	require.Equal(t, 2, r.code)
}

func TestScheduleInvalidCron(t *testing.T) {
	r := run(t, &scriptedRunner{}, "schedule", "--cron", "not a cron", "widgets")
	require.Equal(t, 2, r.code)
	require.Contains(t, r.stderr, "invalid schedule")
}

func TestVersionFlag(t *testing.T) {
	r := run(t, nil, "--version")
	require.Equal(t, 0, r.code)
	require.Contains(t, r.stdout, "docpublish")
}

func TestVersionCommand(t *testing.T) {
	r := run(t, nil, "version")
	require.Equal(t, 0, r.code, r.stderr)
	require.Contains(t, r.stdout, "docpublish unknown")
}

func TestUnknownCommand(t *testing.T) {
	r := run(t, &scriptedRunner{}, "frobnicate")
	require.Equal(t, 2, r.code)
}

func TestPublishErrorOrdering(t *testing.T) {
	runner := &scriptedRunner{buildExit: 1, syncExit: 12}
	r := run(t, runner, "build-and-publish", "widgets")
	require.Equal(t, 8, r.code)
}
