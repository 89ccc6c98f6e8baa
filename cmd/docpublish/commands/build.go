package commands

import (
	"fmt"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Package string `arg:"" optional:"" help:"Package to build (default: --default-package)"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	return root.withSession(g, func(s *session) error {
		res, err := s.pub.Build(g.Context, b.Package)
		if err != nil {
			return err
		}
		if !res.OK {
			return buildFailed(res)
		}
		_, _ = fmt.Fprintf(g.Stdout, "Built %s into %s\n", res.Package, res.OutputDir)
		return nil
	})
}
