// Package errors provides the classified error primitives used across docpublish.
//
// A ClassifiedError carries a category (validation, build, transfer, ...), a
// severity and structured context. The CLI adapter turns categories into
// process exit codes so wrapper scripts can tell a bad package name from a
// failed transfer.
//
// Example usage:
//
//	err := errors.ValidationError("package identifier is empty").
//		WithContext("package", raw).
//		Build()
package errors
