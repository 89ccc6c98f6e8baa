package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docpublish/internal/foundation/errors"
	"git.home.luguber.info/inful/docpublish/internal/process"
)

// exitCode carries kong's requested exit status out of the parser.
type exitCode int

// Execute parses args, runs the selected command and returns the process
// exit code. A nil runner executes real binaries.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer, runner process.Runner) (code int) {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	if runner == nil {
		runner = process.ExecRunner{}
	}

	var cli CLI
	g := &Global{Context: ctx, Stdout: stdout, Stderr: stderr, Runner: runner}

	parser, err := kong.New(&cli,
		kong.Name("docpublish"),
		kong.Description("Build package documentation and publish it with rsync."),
		Vars(),
		kong.Bind(g),
		kong.Writers(stdout, stderr),
		kong.Exit(func(c int) { panic(exitCode(c)) }),
	)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "docpublish: %v\n", err)
		return 10
	}

	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	kctx, err := parser.Parse(args)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "docpublish: error: %v\n", err)
		return 2
	}

	adapter := errors.NewCLIErrorAdapter(cli.Verbose, g.Logger).WithOutput(stderr)
	return adapter.Report(kctx.Run(g, &cli))
}
