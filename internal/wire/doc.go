// Package wire implements the text codec for the booking protocol.
//
// The protocol is line-oriented: every payload line ends with CRLF and
// every request is an HTTP GET whose path encodes the full command. Two
// payload shapes exist:
//
//   - id lists ("<id>,<label>\r\n" per line), returned by the movie and
//     theater listings
//   - seat lists (comma-joined decimal seat numbers followed by a single
//     CRLF), returned by the seat listing
//
// Decoding is deliberately split from validation. Decode functions are
// lenient: they extract as much structure as the bytes allow, so that a
// response can be used to drive further requests. CheckEntryListWellFormed
// is strict: it is the conformance judgment on the exact bytes, including
// the trailing terminator and the no-comma rule for labels. A body can
// decode fine and still fail the strict check; the two must never be
// conflated.
//
// Path builders produce the request side of the protocol. They perform no
// range checking: encoding an out-of-range seat is how adversarial
// requests are built.
package wire
