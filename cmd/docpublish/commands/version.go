package commands

import (
	"fmt"
	"runtime"

	"git.home.luguber.info/inful/docpublish/internal/version"
)

// VersionCmd implements the 'version' command.
type VersionCmd struct{}

func (v *VersionCmd) Run(g *Global, _ *CLI) error {
	_, _ = fmt.Fprintf(g.Stdout, "%s %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	return nil
}
