// Package dvderr defines the error kinds shared by the IFO decoder and the navigation engine.
//
// Concrete failures are returned as *Error values wrapping one of the sentinels below, so
// callers match them with errors.Is and still get the failing operation in the message.
package dvderr

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat reports a bad identifier or a structurally impossible value. The disc is unusable.
	ErrFormat = errors.New("invalid IFO format")

	// ErrTruncatedData reports a table whose declared size runs past the end of its buffer.
	ErrTruncatedData = errors.New("truncated data")

	// ErrIntegerOverflow reports a count or offset that does not fit the address arithmetic.
	ErrIntegerOverflow = errors.New("integer overflow")

	// ErrCellResolution reports a program cell whose position reference has no address cell.
	ErrCellResolution = errors.New("cell resolution failure")

	// ErrOutOfRange reports a lookup outside the valid id range.
	ErrOutOfRange = errors.New("out of range request")

	// ErrEndOfTitle reports that the last cell of the title has been consumed.
	ErrEndOfTitle = errors.New("end of title")

	// ErrNotPositioned reports a navigation call made before a title was opened.
	ErrNotPositioned = errors.New("no title open")
)

// Error carries the operation that failed and the underlying cause.
type Error struct {
	Op     string // operation, e.g. "ifo.DecodeVTS"
	Detail string // optional human readable context
	Err    error  // sentinel or wrapped cause
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err for operation op.
func New(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}

// Newf wraps err for operation op with a formatted detail message.
func Newf(op string, err error, format string, args ...interface{}) *Error {
	return &Error{Op: op, Detail: fmt.Sprintf(format, args...), Err: err}
}

// Op returns the operation of the outermost *Error in the chain, or "" when there is none.
func Op(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}
