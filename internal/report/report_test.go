package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cbscheck/internal/journal"
)

// passSummary is a fully green run with fixed counters, shared with the
// golden and contract tests.
func passSummary() Summary {
	s := NewSummary("127.0.0.1:18080", 42)
	s.RunID = "0189aa11-2233-7abc-8def-001122334455"
	s.Add(ScenarioReport{Name: "catalog-integrity", Outcome: OutcomePass, DurationMS: 840})
	s.Add(ScenarioReport{Name: "theater-scoping", Outcome: OutcomePass, DurationMS: 1200})
	s.Add(ScenarioReport{Name: "display-coverage", Outcome: OutcomePass, Trials: 1000, Found: 812, DurationMS: 9500})
	s.Add(ScenarioReport{Name: "booking-effect", Outcome: OutcomePass, DurationMS: 310})
	s.Add(ScenarioReport{Name: "malformed-requests", Outcome: OutcomePass, DurationMS: 45})
	s.Add(ScenarioReport{Name: "forbidden-overlap", Outcome: OutcomePass, DurationMS: 720})
	s.Finalize()
	return *s
}

// failSummary is a run that fails mid-suite, with the remaining
// scenarios skipped.
func failSummary() Summary {
	s := NewSummary("127.0.0.1:18080", 7)
	s.RunID = "0189bb22-4455-7abc-8def-667788990011"
	s.Add(ScenarioReport{Name: "catalog-integrity", Outcome: OutcomePass, DurationMS: 790})
	s.Add(ScenarioReport{Name: "theater-scoping", Outcome: OutcomePass, DurationMS: 1100})
	s.Add(ScenarioReport{Name: "display-coverage", Outcome: OutcomeFail, Detail: "THRESHOLD: displayed combinations: 412, want at least 500", Trials: 1000, Found: 412, DurationMS: 9800})
	s.Add(ScenarioReport{Name: "booking-effect", Outcome: OutcomeSkipped, Detail: "not run"})
	s.Add(ScenarioReport{Name: "malformed-requests", Outcome: OutcomeSkipped, Detail: "not run"})
	s.Add(ScenarioReport{Name: "forbidden-overlap", Outcome: OutcomeSkipped, Detail: "not run"})
	s.Finalize()
	return *s
}

func TestSummary_FinalizeAllPass(t *testing.T) {
	s := passSummary()
	assert.Equal(t, OutcomePass, s.Outcome)
}

func TestSummary_FinalizeFailWins(t *testing.T) {
	s := failSummary()
	assert.Equal(t, OutcomeFail, s.Outcome)
}

func TestSummary_FinalizeErrorWinsOverFail(t *testing.T) {
	s := NewSummary("127.0.0.1:18080", 1)
	s.Add(ScenarioReport{Name: "catalog-integrity", Outcome: OutcomeFail})
	s.Add(ScenarioReport{Name: "theater-scoping", Outcome: OutcomeError, Detail: "connection refused"})
	s.Finalize()
	assert.Equal(t, OutcomeError, s.Outcome)
}

func TestSummary_FinalizeSkipsDoNotFail(t *testing.T) {
	s := NewSummary("127.0.0.1:18080", 1)
	s.Add(ScenarioReport{Name: "catalog-integrity", Outcome: OutcomePass})
	s.Add(ScenarioReport{Name: "theater-scoping", Outcome: OutcomeSkipped})
	s.Finalize()
	assert.Equal(t, OutcomePass, s.Outcome)
}

func TestSummary_Counts(t *testing.T) {
	s := failSummary()
	passed, failed, errored, skipped := s.Counts()
	assert.Equal(t, 2, passed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 0, errored)
	assert.Equal(t, 3, skipped)
}

func TestRenderText_PlainHasNoEscapes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, passSummary(), false))
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestRenderText_ColorWrapsBadges(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, failSummary(), true))
	out := buf.String()
	assert.Contains(t, out, ansiGreen+"PASS"+ansiReset)
	assert.Contains(t, out, ansiRed+"FAIL"+ansiReset)
	assert.Contains(t, out, ansiYellow+"SKIP"+ansiReset)
	assert.Contains(t, out, "result: "+ansiRed+"FAIL"+ansiReset)
}

func TestRenderText_NoRunIDLine(t *testing.T) {
	s := passSummary()
	s.RunID = ""
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, s, false))
	assert.NotContains(t, buf.String(), "run ")
	assert.True(t, strings.HasPrefix(buf.String(), "target "))
}

func TestRenderText_NoTrailingSpaces(t *testing.T) {
	var buf bytes.Buffer
	s := passSummary()
	s.Add(ScenarioReport{Name: "bare-line", Outcome: OutcomePass})
	require.NoError(t, RenderText(&buf, s, false))
	for _, line := range strings.Split(buf.String(), "\n") {
		assert.Equal(t, strings.TrimRight(line, " "), line)
	}
}

func TestRenderJSON_Envelope(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, failSummary()))

	var env struct {
		Status string  `json:"status"`
		Data   Summary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.Equal(t, "ok", env.Status)
	assert.Equal(t, "127.0.0.1:18080", env.Data.Target)
	assert.Equal(t, OutcomeFail, env.Data.Outcome)
	assert.Len(t, env.Data.Scenarios, 6)
	assert.True(t, strings.HasSuffix(buf.String(), "}\n"))
}

func TestFromJournal_RebuildsSummary(t *testing.T) {
	started := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	run := journal.Run{
		ID:         "0189cc33-0000-7abc-8def-000000000000",
		StartedAt:  started,
		FinishedAt: started.Add(95 * time.Second),
		Seed:       13,
		Target:     "127.0.0.1:18080",
		Outcome:    journal.OutcomeFail,
	}
	results := []journal.ScenarioResult{
		{Seq: 1, Name: "catalog-integrity", Outcome: journal.OutcomePass, Duration: 800 * time.Millisecond},
		{Seq: 2, Name: "booking-effect", Outcome: journal.OutcomeFail, Detail: "seat 3 still listed", Trials: 1},
	}

	s := FromJournal(run, results)
	assert.Equal(t, run.ID, s.RunID)
	assert.Equal(t, uint64(13), s.Seed)
	assert.Equal(t, int64(95000), s.DurationMS)
	assert.Equal(t, OutcomeFail, s.Outcome)
	require.Len(t, s.Scenarios, 2)
	assert.Equal(t, "catalog-integrity", s.Scenarios[0].Name)
	assert.Equal(t, int64(800), s.Scenarios[0].DurationMS)
	assert.Equal(t, "seat 3 still listed", s.Scenarios[1].Detail)
}

func TestFromJournal_OpenRunHasNoDuration(t *testing.T) {
	run := journal.Run{ID: "x", StartedAt: time.Now(), Target: "127.0.0.1:18080"}
	s := FromJournal(run, nil)
	assert.Zero(t, s.DurationMS)
	assert.Equal(t, OutcomePass, s.Outcome, "no rows means nothing failed")
}

func TestDurationMillis_Negative(t *testing.T) {
	assert.Zero(t, DurationMillis(-time.Second))
	assert.Equal(t, int64(1500), DurationMillis(1500*time.Millisecond))
}
