package wire

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// EOL terminates every line the protocol emits.
const EOL = "\r\n"

// MovieListPath is the catalog listing endpoint.
const MovieListPath = "/api/listmovies"

// Entry is one line of an id-list payload: a numeric id and its label.
type Entry struct {
	ID    uint64
	Label string
}

// entryLine is the strict grammar for one id-list line (terminator removed):
// a decimal id, exactly one comma, and a non-empty label with no commas.
var entryLine = regexp.MustCompile(`^[0-9]+,[^,]+$`)

// DecodeEntryList parses an id-list payload leniently.
//
// The text is split on CRLF and empty segments are skipped, so a missing
// final terminator or a stray blank line does not prevent decoding. Each
// remaining line is split on its first comma: the left side must be a
// decimal id, the right side is the label verbatim (further commas are
// part of the label). Only a line with no comma at all, or with a
// non-numeric id, fails.
//
// Lenient decoding is what lets the harness keep navigating a server whose
// output is usable but not byte-exact; strictness is the job of
// CheckEntryListWellFormed.
func DecodeEntryList(text string) ([]Entry, error) {
	segments := strings.Split(text, EOL)
	entries := make([]Entry, 0, len(segments))
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		idField, label, ok := strings.Cut(seg, ",")
		if !ok {
			return nil, &FormatError{Code: ErrCodeMissingComma, Payload: "id list", Index: i, Fragment: seg}
		}
		id, err := strconv.ParseUint(idField, 10, 64)
		if err != nil {
			return nil, &FormatError{Code: ErrCodeBadID, Payload: "id list", Index: i, Fragment: seg}
		}
		entries = append(entries, Entry{ID: id, Label: label})
	}
	return entries, nil
}

// CheckEntryListWellFormed is the strict conformance judgment on an id-list
// body. Every line must match `^[0-9]+,[^,]+$` and the body must end with
// CRLF. Empty text is a well-formed empty listing. A bare CRLF is not: it
// encodes one blank line, which the grammar rejects.
func CheckEntryListWellFormed(text string) error {
	if text == "" {
		return nil
	}
	if !strings.HasSuffix(text, EOL) {
		return &FormatError{Code: ErrCodeMissingTerminator, Payload: "id list", Fragment: tail(text)}
	}
	lines := strings.Split(strings.TrimSuffix(text, EOL), EOL)
	for i, line := range lines {
		if !entryLine.MatchString(line) {
			return &FormatError{Code: ErrCodeBadLine, Payload: "id list", Index: i, Fragment: line}
		}
	}
	return nil
}

// DecodeSeatList parses a seat availability body.
//
// The body must end with CRLF. After removing that single terminator, an
// empty remainder is the empty snapshot (a fully booked room); otherwise
// the remainder is comma-split and every token must be a non-empty run of
// decimal digits that fits in a byte. There is no lenient variant: for
// seat lists the decode is the strict check, except for the seat range
// and uniqueness rules, which belong to the oracle.
func DecodeSeatList(text string) ([]uint8, error) {
	if !strings.HasSuffix(text, EOL) {
		return nil, &FormatError{Code: ErrCodeMissingTerminator, Payload: "seat list", Fragment: tail(text)}
	}
	body := strings.TrimSuffix(text, EOL)
	if body == "" {
		return []uint8{}, nil
	}
	tokens := strings.Split(body, ",")
	seats := make([]uint8, 0, len(tokens))
	for i, tok := range tokens {
		n, err := strconv.ParseUint(tok, 10, 8)
		if err != nil {
			return nil, &FormatError{Code: ErrCodeBadSeatToken, Payload: "seat list", Index: i, Fragment: tok}
		}
		seats = append(seats, uint8(n))
	}
	return seats, nil
}

// TheaterListPath builds the theater listing path for a movie.
func TheaterListPath(movieID uint64) string {
	return fmt.Sprintf("/api/listtheaters_%d", movieID)
}

// SeatListPath builds the seat listing path for a movie and theater pair.
func SeatListPath(movieID, theaterID uint64) string {
	return fmt.Sprintf("/api/listseats_%d_%d", movieID, theaterID)
}

// BookingPath builds the booking path for the given seats, in the order
// given. Seats are not range-checked or deduplicated: adversarial paths are
// encoded with the same builder as honest ones. With no seats the path ends
// at the theater id, which a conforming server rejects.
func BookingPath(movieID, theaterID uint64, seats []uint8) string {
	var b strings.Builder
	fmt.Fprintf(&b, "/api/book_%d_%d", movieID, theaterID)
	for _, s := range seats {
		fmt.Fprintf(&b, "_%d", s)
	}
	return b.String()
}

// tail returns the last few bytes of text for error reports.
func tail(text string) string {
	const n = 16
	if len(text) <= n {
		return text
	}
	return text[len(text)-n:]
}
