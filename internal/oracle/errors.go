package oracle

import (
	"errors"
	"fmt"
)

// InvariantError reports a response that is grammatically fine but
// semantically impossible for a conforming server.
type InvariantError struct {
	// Code identifies the violated invariant.
	Code InvariantCode

	// Message is a human-readable description naming the offending values.
	Message string
}

// InvariantCode categorizes invariant violations.
type InvariantCode string

const (
	// ErrCodeSeatRange indicates a seat number outside the auditorium.
	ErrCodeSeatRange InvariantCode = "SEAT_RANGE"

	// ErrCodeSeatDuplicate indicates a seat listed twice in one snapshot.
	ErrCodeSeatDuplicate InvariantCode = "SEAT_DUPLICATE"

	// ErrCodeBookingEffect indicates availability after a booking is not
	// the before-set minus the booked seats.
	ErrCodeBookingEffect InvariantCode = "BOOKING_EFFECT"

	// ErrCodeDuplicateID indicates an id repeated within one listing.
	ErrCodeDuplicateID InvariantCode = "DUPLICATE_ID"

	// ErrCodeMissingLabel indicates a required label absent from a listing.
	ErrCodeMissingLabel InvariantCode = "MISSING_LABEL"

	// ErrCodeThreshold indicates a count below the conformance profile's
	// floor (catalog size, displayed coverage, room size).
	ErrCodeThreshold InvariantCode = "THRESHOLD"
)

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvariantError returns true if the error is an invariant violation.
// Uses errors.As to handle wrapped errors.
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// invariantf builds an InvariantError with a formatted message.
func invariantf(code InvariantCode, format string, args ...any) *InvariantError {
	return &InvariantError{Code: code, Message: fmt.Sprintf(format, args...)}
}
