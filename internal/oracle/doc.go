// Package oracle holds the semantic invariants a conforming booking server
// must preserve.
//
// The oracle is deliberately stateless: every check is a pure function over
// decoded values. Grammar enforcement lives in package wire; the oracle
// judges meaning. The split matters because a response can be byte-perfect
// and still describe an impossible world (a duplicate seat, a booking that
// did not remove what it booked), and the failure report must say which of
// the two happened.
//
// All label comparisons are NFC-normalized on both sides, so a server that
// emits a decomposed "¡Bienvenido Mr. Marshall!" is not punished for a
// Unicode encoding choice the protocol never fixed.
package oracle
