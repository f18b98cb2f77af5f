// This is the subset of POSIX errno codes the allocators report. The names and
// messages follow the system definitions so that callers familiar with errno
// can read them at a glance.

package errors

import (
	"fmt"
)

type Errno int

const (
	EOK Errno = iota
	ENOENT
	EBUSY
	EEXIST
	EINVAL
	ENOSPC
	EDOM
	ENOBUFS
	EUCLEAN
)

// ErrNotFound is returned when an operation names a file that doesn't exist.
var ErrNotFound = New(ENOENT)

// ErrExists is returned when creating a file whose ID is already in use.
var ErrExists = New(EEXIST)

// ErrDestinationOccupied is returned when relocating a file onto blocks owned
// by another file.
var ErrDestinationOccupied = New(EBUSY)

var ErrInvalidArgument = New(EINVAL)

// ErrNoSpaceOnDevice is the capacity refusal. It's the only error that maps to
// a Reject status; everything else is a Fail.
var ErrNoSpaceOnDevice = New(ENOSPC)

var ErrArgumentOutOfRange = New(EDOM)

// ErrSlotShortfall means fewer free blocks were found than the free-space
// counter promised.
var ErrSlotShortfall = New(ENOBUFS)

// ErrInvariantViolation means the block arena and the directory table disagree.
var ErrInvariantViolation = New(EUCLEAN)

var errorMessagesByCode = map[Errno]string{
	ENOENT:  "No such file or directory",
	EBUSY:   "Device or resource busy",
	EEXIST:  "File exists",
	EINVAL:  "Invalid argument",
	ENOSPC:  "No space left on device",
	EDOM:    "Numerical argument out of domain",
	ENOBUFS: "No buffer space available",
	EUCLEAN: "Structure needs cleaning",
}

func StrError(code Errno) string {
	message, ok := errorMessagesByCode[code]
	if ok {
		return message
	}
	return fmt.Sprintf("error %d not recognized.", int(code))
}
