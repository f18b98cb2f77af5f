package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// DriverError is a wrapper around errno codes, with a customizable error message.
type DriverError interface {
	error
	Errno() Errno
	Unwrap() error
	WithMessage(message string) DriverError
	Wrap(err error) DriverError
}

type driverError struct {
	errno         Errno
	message       string
	originalError error
}

// Error implements the `error` object interface. When called, it returns a string
// describing the error.
func (e driverError) Error() string {
	if e.message != "" {
		return e.message
	}
	return StrError(e.errno)
}

func (e driverError) Errno() Errno {
	return e.errno
}

func (e driverError) Unwrap() error {
	return e.originalError
}

// Is makes [errors.Is] match any two driver errors with the same errno, no
// matter what their messages are.
func (e driverError) Is(target error) bool {
	other, ok := target.(DriverError)
	return ok && other.Errno() == e.errno
}

// WithMessage returns a copy of the error with `message` appended to the text.
func (e driverError) WithMessage(message string) DriverError {
	return driverError{
		errno:         e.errno,
		message:       fmt.Sprintf("%s: %s", e.Error(), message),
		originalError: e.originalError,
	}
}

// Wrap returns a copy of the error that has `err` as one of its causes.
func (e driverError) Wrap(err error) DriverError {
	return driverError{
		errno:         e.errno,
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e.originalError, err),
	}
}

// New creates a new [DriverError] with a default message derived from the
// error code.
func New(errnoCode Errno) DriverError {
	return driverError{
		errno:   errnoCode,
		message: StrError(errnoCode),
	}
}

func NewFromError(errnoCode Errno, originalError error) DriverError {
	return driverError{
		errno:         errnoCode,
		message:       fmt.Sprintf("%s: %s", StrError(errnoCode), originalError.Error()),
		originalError: originalError,
	}
}

// NewWithMessage creates a new DriverError from an error code with a custom
// message.
func NewWithMessage(errnoCode Errno, message string) DriverError {
	return driverError{
		errno:   errnoCode,
		message: fmt.Sprintf("%s: %s", StrError(errnoCode), message),
	}
}

// ErrnoOf returns the errno of the first [DriverError] in `err`'s chain. Nil
// gives [EOK], and an error with no DriverError in its chain gives [EUCLEAN].
func ErrnoOf(err error) Errno {
	if err == nil {
		return EOK
	}

	var driverErr DriverError
	if stderrors.As(err, &driverErr) {
		return driverErr.Errno()
	}
	return EUCLEAN
}
