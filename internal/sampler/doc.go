// Package sampler draws the randomized trials the conformance scenarios
// run against a live server.
//
// All randomness flows through one injected rand.Rand, so a run is fully
// reproduced by replaying its seed. The sampler never owns a socket: it
// reads the catalog through the narrow View interface, which keeps every
// drawing strategy testable against a scripted catalog.
//
// Discovery loops are bounded. The catalog this harness targets is dense
// enough that a handful of attempts finds a bookable pair, but a server
// that pathologically hides its inventory must surface as an
// ExhaustedError, not as a hang.
package sampler
