package journal

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Recorder receives run events from the orchestrator. Implementations
// must be safe for concurrent Exchange calls.
type Recorder interface {
	// RunID identifies the run being recorded, empty when nothing is.
	RunID() string

	// Exchange records one HTTP exchange. Bodies may be truncated by the
	// implementation.
	Exchange(ctx context.Context, scenario, path string, status int, body string) error

	// Scenario records a scenario verdict.
	Scenario(ctx context.Context, res ScenarioResult) error

	// Finish stamps the run's final outcome.
	Finish(ctx context.Context, outcome string, at time.Time) error
}

// Nop discards everything. Used when journaling is disabled and in tests.
type Nop struct{}

func (Nop) RunID() string { return "" }

func (Nop) Exchange(context.Context, string, string, int, string) error { return nil }

func (Nop) Scenario(context.Context, ScenarioResult) error { return nil }

func (Nop) Finish(context.Context, string, time.Time) error { return nil }

// RunMeta describes the run a RunRecorder opens.
type RunMeta struct {
	Seed       uint64
	Target     string
	ServerPath string
	StartedAt  time.Time
}

// RunRecorder journals one run. Exchange seq numbers come from a
// monotonic counter, so send order survives into the journal even when
// recording interleaves.
type RunRecorder struct {
	journal *Journal
	runID   string
	seq     atomic.Int64
}

// Begin opens a run row and returns its recorder.
func Begin(ctx context.Context, j *Journal, meta RunMeta) (*RunRecorder, error) {
	id := NewRunID()
	err := j.BeginRun(ctx, Run{
		ID:         id,
		StartedAt:  meta.StartedAt,
		Seed:       meta.Seed,
		Target:     meta.Target,
		ServerPath: meta.ServerPath,
	})
	if err != nil {
		return nil, err
	}
	return &RunRecorder{journal: j, runID: id}, nil
}

func (r *RunRecorder) RunID() string {
	return r.runID
}

func (r *RunRecorder) Exchange(ctx context.Context, scenario, path string, status int, body string) error {
	return r.journal.WriteExchange(ctx, Exchange{
		RunID:      r.runID,
		Seq:        r.seq.Add(1),
		Scenario:   scenario,
		Path:       path,
		Status:     status,
		BodyPrefix: body,
	})
}

func (r *RunRecorder) Scenario(ctx context.Context, res ScenarioResult) error {
	res.RunID = r.runID
	return r.journal.WriteScenarioResult(ctx, res)
}

func (r *RunRecorder) Finish(ctx context.Context, outcome string, at time.Time) error {
	switch outcome {
	case OutcomePass, OutcomeFail, OutcomeError:
	default:
		return fmt.Errorf("finish run: invalid outcome %q", outcome)
	}
	return r.journal.FinishRun(ctx, r.runID, outcome, at)
}
