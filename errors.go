package diskalloc

import (
	"github.com/dargueta/diskalloc/errors"
)

// Status is the coarse outcome of an engine operation.
type Status int

const (
	// Success means the operation completed.
	Success Status = iota
	// Reject means the arena doesn't have enough free blocks. This is expected
	// back-pressure, not a bug.
	Reject
	// Fail means a precondition or an internal invariant was violated.
	Fail
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Reject:
		return "reject"
	case Fail:
		return "fail"
	default:
		return "unknown"
	}
}

// StatusOf classifies an error returned by an [Engine]. Callers must make
// control decisions from this (or from [errors.ErrnoOf]), never from the error
// text.
func StatusOf(err error) Status {
	switch errors.ErrnoOf(err) {
	case errors.EOK:
		return Success
	case errors.ENOSPC:
		return Reject
	default:
		return Fail
	}
}
