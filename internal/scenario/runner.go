package scenario

import (
	"context"
	"fmt"
	"time"

	"cbscheck/internal/journal"
	"cbscheck/internal/oracle"
	"cbscheck/internal/report"
	"cbscheck/internal/transport"
	"cbscheck/internal/wire"
)

// Run executes the scenarios in order against env, fail-fast: after the
// first non-pass the remaining scenarios are reported as skipped. Every
// verdict is journaled as it lands, and while a scenario runs its
// exchanges are traced to the journal under its name.
//
// The summary is complete even when the run fails; the error return is
// reserved for journal write failures, which abort the run because a
// verdict that cannot be recorded cannot be trusted later.
func Run(ctx context.Context, env *Env, scenarios []Scenario, seed uint64) (*report.Summary, error) {
	log := env.logger()
	rec := env.recorder()

	sum := report.NewSummary(env.Client.Addr(), seed)
	sum.RunID = rec.RunID()
	runStart := time.Now()
	halted := false

	for i, sc := range scenarios {
		seq := i + 1
		if halted {
			sum.Add(report.ScenarioReport{Name: sc.Name, Outcome: report.OutcomeSkipped, Detail: "not run"})
			err := rec.Scenario(ctx, journal.ScenarioResult{
				Seq: seq, Name: sc.Name, Outcome: journal.OutcomeSkipped, Detail: "not run",
			})
			if err != nil {
				return sum, fmt.Errorf("journal scenario %s: %w", sc.Name, err)
			}
			continue
		}

		log.Info("scenario start", "scenario", sc.Name)
		env.Client.SetObserver(func(path string, status int, body string) {
			if err := rec.Exchange(ctx, sc.Name, path, status, body); err != nil {
				log.Warn("exchange not journaled", "scenario", sc.Name, "path", path, "err", err)
			}
		})
		start := time.Now()
		stats, err := sc.Run(ctx, env)
		elapsed := time.Since(start)
		env.Client.SetObserver(nil)

		outcome := classify(err)
		row := report.ScenarioReport{
			Name:       sc.Name,
			Outcome:    outcome,
			Trials:     stats.Trials,
			Found:      stats.Found,
			DurationMS: report.DurationMillis(elapsed),
		}
		if err != nil {
			row.Detail = err.Error()
		}
		sum.Add(row)

		jerr := rec.Scenario(ctx, journal.ScenarioResult{
			Seq:      seq,
			Name:     sc.Name,
			Outcome:  string(outcome),
			Detail:   row.Detail,
			Trials:   stats.Trials,
			Found:    stats.Found,
			Duration: elapsed,
		})
		if jerr != nil {
			return sum, fmt.Errorf("journal scenario %s: %w", sc.Name, jerr)
		}

		if err != nil {
			log.Error("scenario halted the run",
				"scenario", sc.Name, "outcome", string(outcome), "detail", err.Error())
			halted = true
			continue
		}
		log.Info("scenario passed",
			"scenario", sc.Name, "trials", stats.Trials, "found", stats.Found,
			"bookings", stats.Bookings, "gaps", stats.Gaps, "duration", elapsed)
	}

	sum.DurationMS = report.DurationMillis(time.Since(runStart))
	sum.Finalize()
	return sum, nil
}

// classify maps a scenario error to its verdict. Grammar violations,
// broken invariants, and wrong status codes are conformance failures;
// anything else means the run could not deliver a verdict.
func classify(err error) report.Outcome {
	switch {
	case err == nil:
		return report.OutcomePass
	case wire.IsFormatError(err), oracle.IsInvariantError(err), transport.IsStatusError(err):
		return report.OutcomeFail
	default:
		return report.OutcomeError
	}
}
