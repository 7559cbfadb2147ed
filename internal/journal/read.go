package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const runColumns = "id, started_at, finished_at, seed, target, server_path, outcome"

// LatestRun returns the most recently started run. UUIDv7 ids sort by
// creation time, so the primary key is the order.
func (j *Journal) LatestRun(ctx context.Context) (Run, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT `+runColumns+` FROM runs ORDER BY id DESC LIMIT 1
	`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRuns
	}
	if err != nil {
		return Run{}, fmt.Errorf("latest run: %w", err)
	}
	return run, nil
}

// RunByID returns a single run.
func (j *Journal) RunByID(ctx context.Context, id string) (Run, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT `+runColumns+` FROM runs WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNoRuns)
	}
	if err != nil {
		return Run{}, fmt.Errorf("run %s: %w", id, err)
	}
	return run, nil
}

// Runs lists runs newest first. limit <= 0 means all.
func (j *Journal) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// ScenarioResults returns a run's verdicts in execution order.
func (j *Journal) ScenarioResults(ctx context.Context, runID string) ([]ScenarioResult, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, seq, name, outcome, detail, trials, found, duration_ms
		FROM scenario_results WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("scenario results: %w", err)
	}
	defer rows.Close()

	var results []ScenarioResult
	for rows.Next() {
		var res ScenarioResult
		var durationMS int64
		if err := rows.Scan(&res.RunID, &res.Seq, &res.Name, &res.Outcome, &res.Detail, &res.Trials, &res.Found, &durationMS); err != nil {
			return nil, fmt.Errorf("scenario results: %w", err)
		}
		res.Duration = time.Duration(durationMS) * time.Millisecond
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scenario results: %w", err)
	}
	return results, nil
}

// Exchanges returns a run's exchanges in send order. limit <= 0 means all.
func (j *Journal) Exchanges(ctx context.Context, runID string, limit int) ([]Exchange, error) {
	query := `
		SELECT run_id, seq, scenario, path, status, body_prefix
		FROM exchanges WHERE run_id = ? ORDER BY seq
	`
	args := []any{runID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []Exchange
	for rows.Next() {
		var ex Exchange
		if err := rows.Scan(&ex.RunID, &ex.Seq, &ex.Scenario, &ex.Path, &ex.Status, &ex.BodyPrefix); err != nil {
			return nil, fmt.Errorf("exchanges: %w", err)
		}
		exchanges = append(exchanges, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("exchanges: %w", err)
	}
	return exchanges, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run      Run
		started  string
		finished sql.NullString
		seed     int64
	)
	if err := row.Scan(&run.ID, &started, &finished, &seed, &run.Target, &run.ServerPath, &run.Outcome); err != nil {
		return Run{}, err
	}
	startedAt, err := decodeTime(started)
	if err != nil {
		return Run{}, fmt.Errorf("decode started_at: %w", err)
	}
	run.StartedAt = startedAt
	if finished.Valid {
		finishedAt, err := decodeTime(finished.String)
		if err != nil {
			return Run{}, fmt.Errorf("decode finished_at: %w", err)
		}
		run.FinishedAt = finishedAt
	}
	run.Seed = uint64(seed)
	return run, nil
}
