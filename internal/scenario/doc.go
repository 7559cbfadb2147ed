// Package scenario sequences the conformance checks against a live
// server. The suite is a fixed ordered list run fail-fast: the first
// scenario that does not pass halts the run, later scenarios are reported
// as skipped, and every verdict is journaled.
//
// A scenario failure is a conformance verdict about the server; grammar
// violations, broken invariants, and wrong statuses all classify as fail.
// Anything else that stops a scenario (a dead connection, an exhausted
// sampler, a cancelled context) classifies as error: the run could not
// deliver a verdict.
package scenario
