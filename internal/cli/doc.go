// Package cli wires the cbscheck commands. run drives a full
// launch-check-teardown cycle against the server binary, check probes a
// server somebody else started, report re-renders journaled runs, and
// profile resolves the thresholds a run would use.
//
// Commands return ExitError so main can map verdicts to process exit
// codes: 0 pass, 1 conformance failure, 2 command error.
package cli
