package scenario

import (
	"context"
	"io"
	"log/slog"

	"cbscheck/internal/journal"
	"cbscheck/internal/profile"
	"cbscheck/internal/sampler"
	"cbscheck/internal/transport"
)

// Scenario is one named conformance check.
type Scenario struct {
	Name string
	Run  func(ctx context.Context, env *Env) (Stats, error)
}

// Stats counts what a scenario actually did, so a pass is auditable: a
// randomized scenario that passed on zero trials proves nothing.
type Stats struct {
	// Trials is the number of iterations the scenario completed or, for
	// request-per-entity scenarios, the number of entities covered.
	Trials int

	// Found counts single-draw probes that located a theater.
	Found int

	// Bookings counts accepted seat bookings.
	Bookings int

	// Gaps counts throwaway bookings issued to force a seat gap.
	Gaps int
}

// Env bundles the collaborators a scenario runs against. Log and Rec may
// be nil; they default to a discarding logger and a no-op recorder.
type Env struct {
	Client  *transport.Client
	Catalog *transport.Catalog
	Sampler *sampler.Sampler
	Profile profile.Profile
	Log     *slog.Logger
	Rec     journal.Recorder
}

func (e *Env) logger() *slog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (e *Env) recorder() journal.Recorder {
	if e.Rec != nil {
		return e.Rec
	}
	return journal.Nop{}
}

// Suite is the full conformance suite in its fixed order. The order
// matters twice: scenarios assume untouched rooms until the booking
// scenario runs, and fail-fast reporting names everything after the first
// failure as not run.
func Suite() []Scenario {
	return []Scenario{
		{Name: "catalog-integrity", Run: catalogIntegrity},
		{Name: "theater-scoping", Run: theaterScoping},
		{Name: "display-coverage", Run: displayCoverage},
		{Name: "booking-effect", Run: bookingEffect},
		{Name: "malformed-requests", Run: malformedRequests},
		{Name: "forbidden-overlap", Run: forbiddenOverlap},
	}
}
