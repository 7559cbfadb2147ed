package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewRunID generates a time-sortable UUIDv7 run id, so "latest run" is a
// plain ORDER BY on the primary key.
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// BeginRun inserts an open run row. The run's outcome stays "running"
// until FinishRun.
func (j *Journal) BeginRun(ctx context.Context, run Run) error {
	outcome := run.Outcome
	if outcome == "" {
		outcome = OutcomeRunning
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, seed, target, server_path, outcome)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		encodeTime(run.StartedAt),
		int64(run.Seed),
		run.Target,
		run.ServerPath,
		outcome,
	)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// FinishRun stamps the run's final outcome and finish time.
func (j *Journal) FinishRun(ctx context.Context, runID, outcome string, finishedAt time.Time) error {
	res, err := j.db.ExecContext(ctx, `
		UPDATE runs SET outcome = ?, finished_at = ? WHERE id = ?
	`, outcome, encodeTime(finishedAt), runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run: no run with id %s", runID)
	}
	return nil
}

// WriteScenarioResult inserts a scenario verdict.
// Uses ON CONFLICT DO NOTHING for idempotency - a scenario's first verdict
// within a run wins and duplicates are silently ignored.
func (j *Journal) WriteScenarioResult(ctx context.Context, res ScenarioResult) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO scenario_results (run_id, seq, name, outcome, detail, trials, found, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, name) DO NOTHING
	`,
		res.RunID,
		res.Seq,
		res.Name,
		res.Outcome,
		res.Detail,
		res.Trials,
		res.Found,
		res.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("write scenario result: %w", err)
	}
	return nil
}

// WriteExchange inserts one observed HTTP exchange. The body is truncated
// to its journal prefix here, so callers pass the full body.
func (j *Journal) WriteExchange(ctx context.Context, ex Exchange) error {
	prefix := ex.BodyPrefix
	if len(prefix) > bodyPrefixLimit {
		prefix = prefix[:bodyPrefixLimit]
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO exchanges (run_id, seq, scenario, path, status, body_prefix)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`,
		ex.RunID,
		ex.Seq,
		ex.Scenario,
		ex.Path,
		ex.Status,
		prefix,
	)
	if err != nil {
		return fmt.Errorf("write exchange: %w", err)
	}
	return nil
}
