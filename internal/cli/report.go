package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"cbscheck/internal/config"
	"cbscheck/internal/journal"
	"cbscheck/internal/report"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Journal string
	List    bool
	Limit   int
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "report [run-id]",
		Short: "Re-render a journaled run",
		Long: `Rebuild the report of a recorded run from the journal. Without a
run id the most recent run is shown. The exit code reflects the
recorded verdict, same as a live run.

Example:
  cbscheck report
  cbscheck report 01890a5d-ac96-774b-bcce-b302099a8057
  cbscheck report --list`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runReport(opts, runID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", defaults.JournalPath, "journal file to read")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list recorded runs instead of rendering one")
	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "how many runs --list shows")

	return cmd
}

func runReport(opts *ReportOptions, runID string, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if cmd.Flags().Changed("journal") {
		cfg.JournalPath = opts.Journal
	}
	if cfg.JournalPath == "" {
		return NewExitError(ExitCommandError, "no journal configured")
	}

	j, err := journal.Open(cfg.JournalPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer func() {
		if closeErr := j.Close(); closeErr != nil {
			slog.Error("error closing journal", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.List {
		return listRuns(ctx, j, opts, cmd)
	}

	var run journal.Run
	if runID == "" {
		run, err = j.LatestRun(ctx)
	} else {
		run, err = j.RunByID(ctx, runID)
	}
	if err != nil {
		if errors.Is(err, journal.ErrNoRuns) {
			return WrapExitError(ExitCommandError, "no run to report", err)
		}
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	results, err := j.ScenarioResults(ctx, run.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read scenario results", err)
	}

	sum := report.FromJournal(run, results)
	// A run that died before its finish row keeps the recorded verdict;
	// the rows alone would claim more than the run delivered.
	if run.Outcome != "" && run.Outcome != journal.OutcomeRunning {
		sum.Outcome = report.Outcome(run.Outcome)
	}
	if err := renderSummary(cmd, opts.RootOptions, cfg.NoColor, sum); err != nil {
		return err
	}
	return exitForOutcome(sum)
}

// runRow is one line of report --list.
type runRow struct {
	ID        string `json:"id"`
	StartedAt string `json:"started_at"`
	Outcome   string `json:"outcome"`
	Seed      uint64 `json:"seed"`
	Target    string `json:"target"`
}

func listRuns(ctx context.Context, j *journal.Journal, opts *ReportOptions, cmd *cobra.Command) error {
	runs, err := j.Runs(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	rows := make([]runRow, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, runRow{
			ID:        r.ID,
			StartedAt: r.StartedAt.UTC().Format(time.RFC3339),
			Outcome:   r.Outcome,
			Seed:      r.Seed,
			Target:    r.Target,
		})
	}

	if opts.Format == "json" {
		return writeJSON(cmd, rows)
	}
	w := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(w, "no runs recorded")
		return nil
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s  %s  %-5s  seed %d  %s\n", r.ID, r.StartedAt, r.Outcome, r.Seed, r.Target)
	}
	return nil
}
