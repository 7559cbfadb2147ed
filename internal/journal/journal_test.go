package journal

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// createTestJournal creates an on-disk journal in a temp dir.
func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func testRun(id string) Run {
	return Run{
		ID:         id,
		StartedAt:  time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Seed:       42,
		Target:     "127.0.0.1:18080",
		ServerPath: "./build/cbs",
	}
}

func TestOpen_CreatesNewJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer j.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("journal file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		j, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		j.Close()
	}

	j, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer j.Close()

	tables := []string{"runs", "scenario_results", "exchanges"}
	for _, table := range tables {
		var name string
		err := j.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_AppliesPragmas(t *testing.T) {
	j := createTestJournal(t)

	checks := map[string]string{
		"journal_mode": "wal",
		"foreign_keys": "1",
		"busy_timeout": "5000",
	}
	for name, expected := range checks {
		if err := j.verifyPragma(name, expected); err != nil {
			t.Errorf("pragma check failed: %v", err)
		}
	}
}

func TestOpen_SetsSchemaVersion(t *testing.T) {
	j := createTestJournal(t)

	var version int
	if err := j.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("query user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, currentSchemaVersion)
	}
}

func TestBeginRun_RoundTrip(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	run := testRun(NewRunID())
	if err := j.BeginRun(ctx, run); err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}

	got, err := j.RunByID(ctx, run.ID)
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if got.ID != run.ID {
		t.Errorf("id = %q, want %q", got.ID, run.ID)
	}
	if !got.StartedAt.Equal(run.StartedAt) {
		t.Errorf("started_at = %v, want %v", got.StartedAt, run.StartedAt)
	}
	if got.Seed != 42 {
		t.Errorf("seed = %d, want 42", got.Seed)
	}
	if got.Outcome != OutcomeRunning {
		t.Errorf("outcome = %q, want %q", got.Outcome, OutcomeRunning)
	}
	if !got.FinishedAt.IsZero() {
		t.Errorf("finished_at should be zero for an open run, got %v", got.FinishedAt)
	}
}

func TestFinishRun_StampsOutcome(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	run := testRun(NewRunID())
	if err := j.BeginRun(ctx, run); err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}

	finished := run.StartedAt.Add(90 * time.Second)
	if err := j.FinishRun(ctx, run.ID, OutcomePass, finished); err != nil {
		t.Fatalf("FinishRun() failed: %v", err)
	}

	got, err := j.RunByID(ctx, run.ID)
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if got.Outcome != OutcomePass {
		t.Errorf("outcome = %q, want %q", got.Outcome, OutcomePass)
	}
	if !got.FinishedAt.Equal(finished) {
		t.Errorf("finished_at = %v, want %v", got.FinishedAt, finished)
	}
}

func TestFinishRun_UnknownRun(t *testing.T) {
	j := createTestJournal(t)

	err := j.FinishRun(context.Background(), "no-such-run", OutcomeFail, time.Now())
	if err == nil {
		t.Fatal("expected error for unknown run id")
	}
}

func TestLatestRun_Empty(t *testing.T) {
	j := createTestJournal(t)

	_, err := j.LatestRun(context.Background())
	if err != ErrNoRuns {
		t.Fatalf("err = %v, want ErrNoRuns", err)
	}
}

func TestLatestRun_PicksNewest(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	first := testRun(NewRunID())
	time.Sleep(2 * time.Millisecond) // UUIDv7 has millisecond precision
	second := testRun(NewRunID())

	if err := j.BeginRun(ctx, first); err != nil {
		t.Fatalf("BeginRun(first) failed: %v", err)
	}
	if err := j.BeginRun(ctx, second); err != nil {
		t.Fatalf("BeginRun(second) failed: %v", err)
	}

	got, err := j.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun() failed: %v", err)
	}
	if got.ID != second.ID {
		t.Errorf("latest = %q, want %q", got.ID, second.ID)
	}
}

func TestWriteScenarioResult_RoundTrip(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	run := testRun(NewRunID())
	if err := j.BeginRun(ctx, run); err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}

	results := []ScenarioResult{
		{RunID: run.ID, Seq: 1, Name: "catalog", Outcome: OutcomePass, Trials: 1, Duration: 1200 * time.Millisecond},
		{RunID: run.ID, Seq: 2, Name: "booking", Outcome: OutcomeFail, Detail: "seat 3 still listed", Trials: 1},
	}
	for _, res := range results {
		if err := j.WriteScenarioResult(ctx, res); err != nil {
			t.Fatalf("WriteScenarioResult(%s) failed: %v", res.Name, err)
		}
	}

	got, err := j.ScenarioResults(ctx, run.ID)
	if err != nil {
		t.Fatalf("ScenarioResults() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	if got[0].Name != "catalog" || got[1].Name != "booking" {
		t.Errorf("order = %q, %q; want catalog, booking", got[0].Name, got[1].Name)
	}
	if got[0].Duration != 1200*time.Millisecond {
		t.Errorf("duration = %v, want 1.2s", got[0].Duration)
	}
	if got[1].Detail != "seat 3 still listed" {
		t.Errorf("detail = %q", got[1].Detail)
	}
}

func TestWriteScenarioResult_DuplicateIgnored(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	run := testRun(NewRunID())
	if err := j.BeginRun(ctx, run); err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}

	first := ScenarioResult{RunID: run.ID, Seq: 1, Name: "catalog", Outcome: OutcomePass}
	second := ScenarioResult{RunID: run.ID, Seq: 9, Name: "catalog", Outcome: OutcomeFail}
	if err := j.WriteScenarioResult(ctx, first); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := j.WriteScenarioResult(ctx, second); err != nil {
		t.Fatalf("duplicate write failed: %v", err)
	}

	got, err := j.ScenarioResults(ctx, run.ID)
	if err != nil {
		t.Fatalf("ScenarioResults() failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
	if got[0].Outcome != OutcomePass {
		t.Errorf("outcome = %q, first write should win", got[0].Outcome)
	}
}

func TestWriteExchange_TruncatesBody(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	run := testRun(NewRunID())
	if err := j.BeginRun(ctx, run); err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}

	long := strings.Repeat("x", bodyPrefixLimit+100)
	ex := Exchange{RunID: run.ID, Seq: 1, Scenario: "catalog", Path: "/api/listmovies", Status: 200, BodyPrefix: long}
	if err := j.WriteExchange(ctx, ex); err != nil {
		t.Fatalf("WriteExchange() failed: %v", err)
	}

	got, err := j.Exchanges(ctx, run.ID, 0)
	if err != nil {
		t.Fatalf("Exchanges() failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d exchanges, want 1", len(got))
	}
	if len(got[0].BodyPrefix) != bodyPrefixLimit {
		t.Errorf("body prefix length = %d, want %d", len(got[0].BodyPrefix), bodyPrefixLimit)
	}
}

func TestWriteExchange_UnknownRunRejected(t *testing.T) {
	j := createTestJournal(t)

	ex := Exchange{RunID: "no-such-run", Seq: 1, Path: "/api/listmovies", Status: 200}
	if err := j.WriteExchange(context.Background(), ex); err == nil {
		t.Fatal("expected foreign key violation for unknown run")
	}
}

func TestExchanges_OrderAndLimit(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	run := testRun(NewRunID())
	if err := j.BeginRun(ctx, run); err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}

	paths := []string{"/api/listmovies", "/api/listtheaters_1", "/api/listseats_1_1"}
	for i, path := range paths {
		ex := Exchange{RunID: run.ID, Seq: int64(i + 1), Path: path, Status: 200}
		if err := j.WriteExchange(ctx, ex); err != nil {
			t.Fatalf("WriteExchange(%d) failed: %v", i, err)
		}
	}

	got, err := j.Exchanges(ctx, run.ID, 2)
	if err != nil {
		t.Fatalf("Exchanges() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d exchanges, want 2", len(got))
	}
	if got[0].Path != paths[0] || got[1].Path != paths[1] {
		t.Errorf("order wrong: %q, %q", got[0].Path, got[1].Path)
	}
}

func TestRunRecorder_EndToEnd(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	rec, err := Begin(ctx, j, RunMeta{
		Seed:      7,
		Target:    "127.0.0.1:18080",
		StartedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	if rec.RunID() == "" {
		t.Fatal("recorder has no run id")
	}

	for i, path := range []string{"/api/listmovies", "/api/listtheaters_1", "/api/book_1_2_3"} {
		if err := rec.Exchange(ctx, "booking", path, 200, "body"); err != nil {
			t.Fatalf("Exchange(%d) failed: %v", i, err)
		}
	}
	res := ScenarioResult{Seq: 1, Name: "booking", Outcome: OutcomePass, Trials: 1}
	if err := rec.Scenario(ctx, res); err != nil {
		t.Fatalf("Scenario() failed: %v", err)
	}
	if err := rec.Finish(ctx, OutcomePass, time.Now()); err != nil {
		t.Fatalf("Finish() failed: %v", err)
	}

	exchanges, err := j.Exchanges(ctx, rec.RunID(), 0)
	if err != nil {
		t.Fatalf("Exchanges() failed: %v", err)
	}
	if len(exchanges) != 3 {
		t.Fatalf("got %d exchanges, want 3", len(exchanges))
	}
	for i, ex := range exchanges {
		if ex.Seq != int64(i+1) {
			t.Errorf("exchange %d has seq %d", i, ex.Seq)
		}
	}

	run, err := j.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun() failed: %v", err)
	}
	if run.Outcome != OutcomePass {
		t.Errorf("outcome = %q, want pass", run.Outcome)
	}
}

func TestRunRecorder_FinishRejectsBadOutcome(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	rec, err := Begin(ctx, j, RunMeta{Target: "x", StartedAt: time.Now()})
	if err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	if err := rec.Finish(ctx, "maybe", time.Now()); err == nil {
		t.Fatal("expected error for invalid outcome")
	}
}

func TestNop_Discards(t *testing.T) {
	ctx := context.Background()
	var rec Recorder = Nop{}

	if rec.RunID() != "" {
		t.Error("Nop should have empty run id")
	}
	if err := rec.Exchange(ctx, "s", "/api/listmovies", 200, "b"); err != nil {
		t.Errorf("Exchange() = %v", err)
	}
	if err := rec.Scenario(ctx, ScenarioResult{}); err != nil {
		t.Errorf("Scenario() = %v", err)
	}
	if err := rec.Finish(ctx, OutcomePass, time.Now()); err != nil {
		t.Errorf("Finish() = %v", err)
	}
}

func TestRunsList_NewestFirst(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		run := testRun(NewRunID())
		ids = append(ids, run.ID)
		if err := j.BeginRun(ctx, run); err != nil {
			t.Fatalf("BeginRun(%d) failed: %v", i, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	runs, err := j.Runs(ctx, 2)
	if err != nil {
		t.Fatalf("Runs() failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Errorf("order wrong: %q, %q", runs[0].ID, runs[1].ID)
	}
}
