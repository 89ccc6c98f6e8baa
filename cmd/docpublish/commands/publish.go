package commands

import (
	"git.home.luguber.info/inful/docpublish/internal/publish"
)

// PublishCmd implements the 'publish' command.
type PublishCmd struct {
	Path    string `name:"path" help:"Local directory to deploy (default: derived from the package)"`
	Site    string `name:"site" help:"rsync destination (default: derived from the package)"`
	Package   string `name:"package" short:"p" help:"Package to build (default: --default-package)"`
	SkipBuild bool   `name:"skip-build" help:"Do not run the generator; treat the existing output as a successful build"`
}

func (p *PublishCmd) Run(g *Global, root *CLI) error {
	return root.runSession(g, p.SkipBuild, func(s *session) error {
		res, err := s.pub.Publish(g.Context, publish.PublishRequest{
			Path:    p.Path,
			Site:    p.Site,
			Package: p.Package,
		})
		if err != nil {
			return err
		}
		return publishError(res)
	})
}

// BuildAndPublishCmd implements the 'build-and-publish' command.
type BuildAndPublishCmd struct {
	Package   string `arg:"" optional:"" help:"Package to build and publish (default: --default-package)"`
	SkipBuild bool   `name:"skip-build" help:"Do not run the generator; treat the existing output as a successful build"`
}

func (b *BuildAndPublishCmd) Run(g *Global, root *CLI) error {
	return root.runSession(g, b.SkipBuild, func(s *session) error {
		res, err := s.pub.BuildAndPublish(g.Context, b.Package)
		if err != nil {
			return err
		}
		return publishError(res)
	})
}
