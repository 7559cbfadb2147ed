// Package refserver hosts an in-process double of the booking server the
// harness checks: same path grammar, same response bodies, same status
// mapping, same seeded catalog shape. Scenario tests run against it instead
// of a real binary, and fault options let each conformance check prove it
// detects the violation it exists for.
//
// The package shares nothing with the harness codec. Bodies are rendered
// from its own state with its own formatting, so a test that passes both
// sides has cross-checked two independent readings of the protocol.
//
// Only tests and the cbsref command import this package; the harness core
// never does.
package refserver
