package convert

import "fmt"

// InvalidReferenceError is returned when a repository reference cannot be
// parsed. It is surfaced before any network or filesystem activity.
type InvalidReferenceError struct {
	Input  string
	Reason string
}

// Error implements the error interface.
func (e InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid repository reference %q: %s", e.Input, e.Reason)
}

// AcquisitionError is returned when a remote listing, fetch or snapshot
// download fails. It aborts the whole conversion; there is no per-file
// skip-and-continue.
type AcquisitionError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e AcquisitionError) Error() string {
	return fmt.Sprintf("acquisition failed: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying transport error.
func (e AcquisitionError) Unwrap() error { return e.Err }

// ReadError is returned when a local filesystem read fails.
type ReadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying filesystem error.
func (e ReadError) Unwrap() error { return e.Err }
