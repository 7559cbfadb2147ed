package sampler

import (
	"errors"
	"fmt"
)

// ErrEmptyPopulation reports a draw from nothing. It marks a harness usage
// error, not a server defect.
var ErrEmptyPopulation = errors.New("cannot draw from an empty population")

// ErrNoComplement reports that every auditorium seat is available, so no
// already-taken seat exists to build a forbidden booking from. Callers
// force a gap first.
var ErrNoComplement = errors.New("all seats available: no taken seat to target")

// ExhaustedError reports a bounded discovery loop that ran out of attempts
// before finding what it was drawing for.
type ExhaustedError struct {
	// Goal names what was being discovered.
	Goal string

	// Attempts is the number of draws made before giving up.
	Attempts int
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("no %s found after %d attempts", e.Goal, e.Attempts)
}

// IsExhausted returns true if the error is a sampling exhaustion error.
// Uses errors.As to handle wrapped errors.
func IsExhausted(err error) bool {
	var ee *ExhaustedError
	return errors.As(err, &ee)
}
