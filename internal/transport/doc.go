// Package transport speaks the booking protocol's flavor of HTTP: one
// fresh TCP connection per request, GET only, Connection: close, read to
// EOF.
//
// The harness deliberately does not use net/http. A conformance verdict is
// about the bytes on the wire, and a full HTTP client would quietly
// normalize, buffer, reuse, and decode its way between the harness and the
// server under test. Here the request is printed onto the socket and the
// response is split once on the first blank line; everything after it is
// the body, verbatim.
//
// Every exchange carries a deadline: the per-request timeout or the
// context's, whichever comes first. A server that accepts and goes silent
// fails the run instead of wedging it.
package transport
