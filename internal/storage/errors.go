// Package storage holds the failure kind shared by every persistence backend.
package storage

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks a device, quota, schema-open or driver failure.
var ErrUnavailable = errors.New("storage unavailable")

// Error records which store operation failed.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrUnavailable, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrUnavailable }

// Wrap returns nil for a nil err, otherwise an *Error for op.
// The original error stays reachable through errors.Is / errors.As.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, Err: err}
}
