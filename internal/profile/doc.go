// Package profile holds the tunable parameters of a conformance run:
// trial counts, catalog floors, and the titles every compliant catalog
// must carry.
//
// Profiles load from YAML over the built-in defaults, so a file only
// names what it changes. Decoding is strict (unknown keys are errors)
// and the result is validated against an embedded CUE schema before a
// run will accept it.
package profile
