package commands

import (
	"fmt"
)

// PathCmd implements the 'path' command.
type PathCmd struct {
	Package string `arg:"" optional:"" help:"Package to resolve (default: --default-package)"`
	Site    bool   `name:"site" help:"Print the full rsync destination including the host"`
}

func (p *PathCmd) Run(g *Global, root *CLI) error {
	return root.withSession(g, func(s *session) error {
		resolve := s.pub.Path
		if p.Site {
			resolve = s.pub.Site
		}
		out, err := resolve(p.Package)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(g.Stdout, out)
		return nil
	})
}
