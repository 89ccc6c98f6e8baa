// Package sitepath maps package identifiers onto remote documentation paths.
//
// Every package is published under a shared remote root. The distinguished
// root package is published at the root itself; every other package gets its
// own subdirectory named after the lowercased identifier:
//
//	Resolve("MCodex", "/srv/www/codex/")  -> "/srv/www/codex/"
//	Resolve("Widgets", "/srv/www/codex/") -> "/srv/www/codex/widgets/"
package sitepath

import (
	"git.home.luguber.info/inful/docpublish/internal/foundation/errors"
	"git.home.luguber.info/inful/docpublish/internal/foundation/normalization"
)

// DefaultRootPackage is the package deployed directly under the remote root.
const DefaultRootPackage = "mcodex"

// ErrEmptyPackage is returned when a package identifier normalizes to "".
var ErrEmptyPackage = errors.ValidationError("package identifier is empty").Build()

// Resolver resolves remote paths for a given distinguished root package.
type Resolver struct {
	RootPackage string
}

// NewResolver returns a Resolver; an empty rootPackage selects DefaultRootPackage.
func NewResolver(rootPackage string) Resolver {
	if normalization.Key(rootPackage) == "" {
		rootPackage = DefaultRootPackage
	}
	return Resolver{RootPackage: normalization.Key(rootPackage)}
}

// Resolve returns the remote path for pkg below root.
func (r Resolver) Resolve(pkg, root string) (string, error) {
	name, err := NormalizePackage(pkg)
	if err != nil {
		return "", err
	}
	if name == normalization.Key(r.RootPackage) {
		return root, nil
	}
	return root + name + "/", nil
}

// Resolve resolves pkg with the default root package.
func Resolve(pkg, root string) (string, error) {
	return NewResolver(DefaultRootPackage).Resolve(pkg, root)
}

// NormalizePackage lowercases pkg and trims surrounding whitespace. An empty
// result is an invalid-argument error.
func NormalizePackage(pkg string) (string, error) {
	name := normalization.Key(pkg)
	if name == "" {
		return "", errors.ValidationError("package identifier is empty").
			WithContext("package", pkg).
			Build()
	}
	return name, nil
}

// Destination joins host and path into rsync's "host:path" form. An empty
// host yields the bare path, which rsync treats as a local destination.
func Destination(host, path string) string {
	if host == "" {
		return path
	}
	return host + ":" + path
}
