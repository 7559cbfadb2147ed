// Package probe owns the server process around a conformance run: the
// preflight scan for an already-running instance, launching the binary
// with the protocol's three positional arguments, readiness polling, and
// teardown.
//
// Teardown mirrors the server's own tooling: SIGTERM, a short pause, one
// throwaway request to unblock a pending accept, then an escalating kill
// if the process lingers. Release always runs, pass or fail, so a crashed
// scenario never strands a server on the port.
package probe
