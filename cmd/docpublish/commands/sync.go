package commands

// SyncCmd implements the 'sync' command.
type SyncCmd struct {
	Path string `arg:"" help:"Local directory"`
	Site string `arg:"" help:"rsync destination, host:path or a local path"`
}

func (c *SyncCmd) Run(g *Global, root *CLI) error {
	return root.withSession(g, func(s *session) error {
		return transferError(s.pub.Sync(g.Context, c.Path, c.Site))
	})
}
