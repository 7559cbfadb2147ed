// Package journal persists conformance runs to SQLite: one row per run,
// a verdict per scenario, and every HTTP exchange in send order. A journal
// is enough to re-render a report or replay a failure by hand without the
// server still running.
//
// The orchestrator writes through the Recorder interface; Nop satisfies it
// for callers that do not want a journal on disk.
package journal
