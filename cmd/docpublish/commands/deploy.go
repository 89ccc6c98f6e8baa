package commands

import (
	"git.home.luguber.info/inful/docpublish/internal/publish"
)

// DeployCmd implements the 'deploy' command.
type DeployCmd struct {
	Source      string `name:"source" help:"Local directory to synchronize (default: the default package's output directory)"`
	Destination string `name:"destination" help:"rsync destination (default: <remote-host>:<remote-root>)"`
}

func (d *DeployCmd) Run(g *Global, root *CLI) error {
	return root.withSession(g, func(s *session) error {
		res := s.pub.Deploy(g.Context, publish.DeployRequest{
			Source:      d.Source,
			Destination: d.Destination,
		})
		return transferError(res)
	})
}
