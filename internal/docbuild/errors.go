package docbuild

import "errors"

var (
	// ErrGeneratorNotFound indicates the generator executable was not found on PATH.
	ErrGeneratorNotFound = errors.New("documentation generator not found")
	// ErrGeneratorFailed indicates the generator could not be run at all.
	ErrGeneratorFailed = errors.New("documentation generator could not run")
	// ErrNoGenerator indicates an empty generator command line.
	ErrNoGenerator = errors.New("no documentation generator configured")
)
