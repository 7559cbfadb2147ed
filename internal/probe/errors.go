package probe

import (
	"errors"
	"fmt"
)

// ConflictError reports that a process with the server's name was already
// running before the harness launched its own. Booking state is cumulative
// within a server's lifetime, so a stale instance would answer on the port
// with seats the current run never booked.
type ConflictError struct {
	Name string
	PIDs []int32
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("PREFLIGHT_CONFLICT: process %q already running (pids %v)", e.Name, e.PIDs)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// NewConflictError builds a ConflictError for the named process.
func NewConflictError(name string, pids []int32) *ConflictError {
	return &ConflictError{Name: name, PIDs: pids}
}
