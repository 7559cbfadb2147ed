package wire

import (
	"errors"
	"fmt"
)

// FormatError reports bytes that do not conform to the wire grammar.
//
// Format errors carry the offending fragment verbatim so a failure report
// can show exactly what the server sent.
type FormatError struct {
	// Code identifies the grammar rule that was violated.
	Code FormatErrorCode

	// Payload names the payload shape being decoded ("id list" or "seat list").
	Payload string

	// Index is the zero-based line or token position of the fragment.
	Index int

	// Fragment is the offending line or token, verbatim.
	Fragment string
}

// FormatErrorCode categorizes grammar violations.
type FormatErrorCode string

const (
	// ErrCodeMissingComma indicates an id-list line with no comma separator.
	ErrCodeMissingComma FormatErrorCode = "MISSING_COMMA"

	// ErrCodeBadID indicates an id-list line whose id field is not a
	// decimal number.
	ErrCodeBadID FormatErrorCode = "BAD_ID"

	// ErrCodeBadLine indicates an id-list line that fails the strict
	// line grammar (digits, one comma, comma-free non-empty label).
	ErrCodeBadLine FormatErrorCode = "BAD_LINE"

	// ErrCodeMissingTerminator indicates a payload that does not end
	// with CRLF.
	ErrCodeMissingTerminator FormatErrorCode = "MISSING_TERMINATOR"

	// ErrCodeBadSeatToken indicates a seat-list token that is empty,
	// contains a non-digit, or does not fit in a byte.
	ErrCodeBadSeatToken FormatErrorCode = "BAD_SEAT_TOKEN"
)

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Fragment != "" || e.Code == ErrCodeBadSeatToken {
		return fmt.Sprintf("%s: malformed %s at index %d: %q", e.Code, e.Payload, e.Index, e.Fragment)
	}
	return fmt.Sprintf("%s: malformed %s", e.Code, e.Payload)
}

// IsFormatError returns true if the error is a wire format error.
// Uses errors.As to handle wrapped errors.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
