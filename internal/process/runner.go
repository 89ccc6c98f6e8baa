// Package process runs external commands behind an injectable Runner so the
// documentation generator and rsync can be replaced by fakes in tests.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

var (
	// ErrNotFound indicates the executable was not found on PATH.
	ErrNotFound = errors.New("executable not found")
	// ErrStart indicates the process could not be started.
	ErrStart = errors.New("process start failed")
)

// Command describes one external process invocation.
type Command struct {
	Name   string
	Args   []string
	Dir    string
	Env    []string // appended to the inherited environment
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the command line for logs and diagnostics.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// ExitError reports a process that ran and exited non-zero.
type ExitError struct {
	Command string
	Code    int
	Err     error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: exit status %d", e.Command, e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// AsExitError reports whether err is a non-zero exit of a process that ran.
func AsExitError(err error) (*ExitError, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr, true
	}
	return nil, false
}

// Runner executes a Command and blocks until it exits.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes cmd. A missing executable wraps ErrNotFound, other start
// failures wrap ErrStart, and a non-zero exit is an *ExitError.
func (ExecRunner) Run(ctx context.Context, c Command) error {
	path, err := exec.LookPath(c.Name)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNotFound, c.Name, err)
	}

	cmd := exec.CommandContext(ctx, path, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(cmd.Environ(), c.Env...)
	}
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	slog.Debug("Running external command", "command", c.String(), "dir", c.Dir)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Command: c.Name, Code: exitErr.ExitCode(), Err: err}
		}
		return fmt.Errorf("%w: %s: %w", ErrStart, c.Name, err)
	}
	return nil
}
