package config

import "git.home.luguber.info/inful/docpublish/internal/foundation/normalization"

// GatingMode selects which build outcome lets publish deploy.
type GatingMode string

const (
	// GatingAsObserved deploys only when the build reports failure, matching
	// the behaviour of the scripts docpublish replaced.
	GatingAsObserved GatingMode = "as-observed"
	// GatingOnSuccess deploys only when the build reports success.
	GatingOnSuccess GatingMode = "on-success"
)

var gatingNormalizer = normalization.NewNormalizer(map[string]GatingMode{
	"as-observed": GatingAsObserved,
	"legacy":      GatingAsObserved,
	"on-success":  GatingOnSuccess,
	"success":     GatingOnSuccess,
}, GatingAsObserved)

// NormalizeGating parses a gating mode; empty input selects the default.
func NormalizeGating(raw string) (GatingMode, error) {
	return gatingNormalizer.NormalizeWithError(raw)
}

// ShouldDeploy reports whether a build with the given outcome is followed by a deploy.
func (m GatingMode) ShouldDeploy(buildOK bool) bool {
	if m == GatingOnSuccess {
		return buildOK
	}
	return !buildOK
}

// GatingModes lists accepted spellings for help output.
func GatingModes() []string {
	return gatingNormalizer.ValidKeys()
}
