package transport

import (
	"errors"
	"fmt"
)

// StatusError reports a response whose status code is not the one the
// protocol requires for the request that was sent.
type StatusError struct {
	// Path is the request path.
	Path string

	// Got is the status the server returned.
	Got int

	// Want is the status a conforming server returns.
	Want int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("UNEXPECTED_STATUS: GET %s returned %d, want %d", e.Path, e.Got, e.Want)
}

// IsStatusError returns true if the error is an unexpected-status error.
// Uses errors.As to handle wrapped errors.
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}
