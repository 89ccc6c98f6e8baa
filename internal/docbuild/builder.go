// Package docbuild runs the external documentation generator for a package.
//
// The generator is a black box: it receives the package identifier and writes
// a directory tree, conventionally <output-root>/<package>/html/. Its exit
// status is passed through as BuildResult.OK. Failing to run the generator at
// all is returned as an error and is never swallowed.
package docbuild

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mvdan.cc/sh/v3/shell"

	"git.home.luguber.info/inful/docpublish/internal/foundation/errors"
	"git.home.luguber.info/inful/docpublish/internal/logfields"
	"git.home.luguber.info/inful/docpublish/internal/process"
	"git.home.luguber.info/inful/docpublish/internal/sitepath"
)

const (
	// DefaultGenerator renders docs/<package> with hugo into the output directory.
	DefaultGenerator = "hugo --source docs/{package} --destination {output}"
	// DefaultOutputRoot is the local directory generated sites are written under.
	DefaultOutputRoot = "docs/build"

	placeholderPackage = "{package}"
	placeholderOutput  = "{output}"

	// diagnosticTail bounds how much generator stderr is kept on a failed build.
	diagnosticTail = 2048
)

// BuildResult is the outcome of one generator run.
type BuildResult struct {
	Package    string
	OutputDir  string
	OK         bool
	Diagnostic string
	Duration   time.Duration
}

// Builder generates documentation for a package.
type Builder interface {
	Build(ctx context.Context, pkg string) (BuildResult, error)
}

// OutputDir is the generator's output directory for pkg below root, with a
// trailing separator so rsync copies the directory contents.
func OutputDir(root, pkg string) string {
	return filepath.Join(root, pkg, "html") + string(filepath.Separator)
}

// ResolveOutputRoot places a relative output root below the generator's
// working directory, so the generator and rsync agree on one directory.
func ResolveOutputRoot(dir, root string) string {
	if root == "" {
		root = DefaultOutputRoot
	}
	if dir == "" || filepath.IsAbs(root) {
		return root
	}
	return filepath.Join(dir, root)
}

// ParseGenerator splits a generator command line with shell quoting rules.
func ParseGenerator(line string) ([]string, error) {
	argv, err := shell.Fields(line, func(string) string { return "" })
	if err != nil {
		return nil, fmt.Errorf("parse generator command %q: %w", line, err)
	}
	if len(argv) == 0 {
		return nil, ErrNoGenerator
	}
	return argv, nil
}

// GeneratorBuilder runs an external generator command. {package} and
// {output} in the argument template are replaced per build.
type GeneratorBuilder struct {
	argv       []string
	outputRoot string
	dir        string
	runner     process.Runner
	stdout     io.Writer
	stderr     io.Writer
}

// NewGeneratorBuilder returns a builder for the given argument template.
func NewGeneratorBuilder(argv []string, outputRoot string) *GeneratorBuilder {
	if outputRoot == "" {
		outputRoot = DefaultOutputRoot
	}
	return &GeneratorBuilder{
		argv:       append([]string(nil), argv...),
		outputRoot: outputRoot,
		runner:     process.ExecRunner{},
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}
}

// WithRunner injects the process runner.
func (g *GeneratorBuilder) WithRunner(r process.Runner) *GeneratorBuilder {
	if r != nil {
		g.runner = r
	}
	return g
}

// WithDir sets the generator's working directory.
func (g *GeneratorBuilder) WithDir(dir string) *GeneratorBuilder {
	g.dir = dir
	return g
}

// WithOutput redirects the generator's output streams.
func (g *GeneratorBuilder) WithOutput(stdout, stderr io.Writer) *GeneratorBuilder {
	if stdout != nil {
		g.stdout = stdout
	}
	if stderr != nil {
		g.stderr = stderr
	}
	return g
}

// Command expands the argument template for pkg.
func (g *GeneratorBuilder) Command(pkg string) (process.Command, error) {
	if len(g.argv) == 0 {
		return process.Command{}, ErrNoGenerator
	}
	output := OutputDir(ResolveOutputRoot(g.dir, g.outputRoot), pkg)
	if !filepath.IsAbs(output) {
		if abs, err := filepath.Abs(output); err == nil {
			output = abs + string(filepath.Separator)
		}
	}
	r := strings.NewReplacer(placeholderPackage, pkg, placeholderOutput, output)
	args := make([]string, 0, len(g.argv)-1)
	for _, a := range g.argv[1:] {
		args = append(args, r.Replace(a))
	}
	return process.Command{
		Name: r.Replace(g.argv[0]),
		Args: args,
		Dir:  g.dir,
		Env:  []string{"DOCPUBLISH_PACKAGE=" + pkg, "DOCPUBLISH_OUTPUT=" + output},
	}, nil
}

// Build runs the generator for pkg.
func (g *GeneratorBuilder) Build(ctx context.Context, pkg string) (BuildResult, error) {
	name, err := sitepath.NormalizePackage(pkg)
	if err != nil {
		return BuildResult{}, err
	}
	res := BuildResult{Package: name, OutputDir: OutputDir(ResolveOutputRoot(g.dir, g.outputRoot), name)}

	cmd, err := g.Command(name)
	if err != nil {
		return res, errors.WrapError(err, errors.CategoryConfig, "invalid generator command").Build()
	}
	var captured bytes.Buffer
	cmd.Stdout = g.stdout
	cmd.Stderr = io.MultiWriter(g.stderr, &captured)

	slog.Info("Building documentation",
		logfields.Package(name),
		logfields.Output(res.OutputDir),
		logfields.Command(cmd.String()))

	start := time.Now()
	err = g.runner.Run(ctx, cmd)
	res.Duration = time.Since(start)

	if err != nil && ctx.Err() != nil {
		return res, errors.RuntimeError("documentation build interrupted").
			WithCause(ctx.Err()).
			WithContext("package", name).
			Build()
	}
	if exitErr, ok := process.AsExitError(err); ok {
		res.Diagnostic = exitErr.Error()
		if tail := lastBytes(captured.String(), diagnosticTail); tail != "" {
			res.Diagnostic += ": " + tail
		}
		slog.Warn("Documentation generator reported failure",
			logfields.Package(name),
			logfields.Error(exitErr))
		return res, nil
	}
	if err != nil {
		sentinel := ErrGeneratorFailed
		if stderrors.Is(err, process.ErrNotFound) {
			sentinel = ErrGeneratorNotFound
		}
		return res, errors.BuildError("documentation generator could not run").
			WithCause(fmt.Errorf("%w: %w", sentinel, err)).
			WithContext("package", name).
			Build()
	}

	res.OK = true
	slog.Info("Documentation built",
		logfields.Package(name),
		logfields.DurationMS(float64(res.Duration.Milliseconds())))
	return res, nil
}

func lastBytes(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// NoopBuilder reports success without running anything. publish --skip-build
// uses it to deploy an output directory built earlier.
type NoopBuilder struct {
	OutputRoot string
}

// Build implements Builder.
func (n NoopBuilder) Build(_ context.Context, pkg string) (BuildResult, error) {
	name, err := sitepath.NormalizePackage(pkg)
	if err != nil {
		return BuildResult{}, err
	}
	root := ResolveOutputRoot("", n.OutputRoot)
	slog.Debug("NoopBuilder skipping generator", logfields.Package(name))
	return BuildResult{Package: name, OutputDir: OutputDir(root, name), OK: true}, nil
}
