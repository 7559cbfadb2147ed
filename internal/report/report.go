package report

import (
	"time"

	"cbscheck/internal/journal"
)

// Outcome is a scenario or run verdict.
type Outcome string

const (
	OutcomePass    Outcome = "pass"
	OutcomeFail    Outcome = "fail"
	OutcomeError   Outcome = "error"
	OutcomeSkipped Outcome = "skipped"
)

// ScenarioReport is one scenario's line in a summary.
type ScenarioReport struct {
	Name       string  `json:"name"`
	Outcome    Outcome `json:"outcome"`
	Detail     string  `json:"detail,omitempty"`
	Trials     int     `json:"trials,omitempty"`
	Found      int     `json:"found,omitempty"`
	DurationMS int64   `json:"duration_ms,omitempty"`
}

// Summary is the full result of a run. Build one with NewSummary and Add,
// then Finalize to derive the overall outcome.
type Summary struct {
	RunID      string           `json:"run_id,omitempty"`
	Target     string           `json:"target"`
	Seed       uint64           `json:"seed"`
	Outcome    Outcome          `json:"outcome"`
	DurationMS int64            `json:"duration_ms,omitempty"`
	Scenarios  []ScenarioReport `json:"scenarios"`
}

// NewSummary starts an empty summary for the given target.
func NewSummary(target string, seed uint64) *Summary {
	return &Summary{
		Target:    target,
		Seed:      seed,
		Scenarios: []ScenarioReport{},
	}
}

// Add appends one scenario verdict.
func (s *Summary) Add(sc ScenarioReport) {
	s.Scenarios = append(s.Scenarios, sc)
}

// Counts tallies scenario verdicts.
func (s *Summary) Counts() (passed, failed, errored, skipped int) {
	for _, sc := range s.Scenarios {
		switch sc.Outcome {
		case OutcomePass:
			passed++
		case OutcomeFail:
			failed++
		case OutcomeError:
			errored++
		case OutcomeSkipped:
			skipped++
		}
	}
	return
}

// Finalize derives the overall outcome: any error wins over any failure,
// which wins over pass. Skipped scenarios do not affect the verdict.
func (s *Summary) Finalize() {
	_, failed, errored, _ := s.Counts()
	switch {
	case errored > 0:
		s.Outcome = OutcomeError
	case failed > 0:
		s.Outcome = OutcomeFail
	default:
		s.Outcome = OutcomePass
	}
}

// FromJournal rebuilds a summary from journal rows, so `cbscheck report`
// renders finished runs exactly like a live one.
func FromJournal(run journal.Run, results []journal.ScenarioResult) Summary {
	s := Summary{
		RunID:     run.ID,
		Target:    run.Target,
		Seed:      run.Seed,
		Scenarios: make([]ScenarioReport, 0, len(results)),
	}
	if !run.FinishedAt.IsZero() {
		s.DurationMS = run.FinishedAt.Sub(run.StartedAt).Milliseconds()
	}
	for _, res := range results {
		s.Scenarios = append(s.Scenarios, ScenarioReport{
			Name:       res.Name,
			Outcome:    Outcome(res.Outcome),
			Detail:     res.Detail,
			Trials:     res.Trials,
			Found:      res.Found,
			DurationMS: res.Duration.Milliseconds(),
		})
	}
	s.Finalize()
	return s
}

// DurationMillis converts a duration to the milliseconds stored in
// reports, never negative.
func DurationMillis(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return d.Milliseconds()
}
