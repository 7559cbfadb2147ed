package cli

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cbscheck/internal/config"
	"cbscheck/internal/journal"
	"cbscheck/internal/profile"
	"cbscheck/internal/report"
	"cbscheck/internal/sampler"
	"cbscheck/internal/scenario"
	"cbscheck/internal/transport"
)

// effectiveProfile resolves the thresholds for a run: the --profile flag
// wins over the config file's profile entry; neither means built-in
// defaults.
func effectiveProfile(flagPath, configPath string) (profile.Profile, error) {
	path := flagPath
	if path == "" {
		path = configPath
	}
	if path == "" {
		return profile.Default(), nil
	}
	return profile.Load(path)
}

// chooseSeed fixes the random source for a run. Zero means nothing
// pinned it, so the clock picks.
func chooseSeed(configured uint64) uint64 {
	if configured != 0 {
		return configured
	}
	return uint64(time.Now().UnixNano())
}

// runContext derives the context a suite runs under: bounded by the run
// deadline and canceled by SIGINT or SIGTERM.
func runContext(cmd *cobra.Command, deadline time.Duration) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, deadline)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// executeSuite runs the scenario suite against client and renders the
// summary. serverPath is recorded in the journal when the caller
// launched a binary; empty means the server was already running.
func executeSuite(ctx context.Context, cmd *cobra.Command, root *RootOptions, cfg config.Run, prof profile.Profile, seed uint64, client *transport.Client, serverPath string) error {
	var rec journal.Recorder = journal.Nop{}
	if cfg.JournalPath != "" {
		j, err := journal.Open(cfg.JournalPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				slog.Error("error closing journal", "error", closeErr)
			}
		}()
		r, err := journal.Begin(ctx, j, journal.RunMeta{
			Seed:       seed,
			Target:     client.Addr(),
			ServerPath: serverPath,
			StartedAt:  time.Now(),
		})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record run start", err)
		}
		rec = r
	}

	catalog := transport.NewCatalog(client)
	env := &scenario.Env{
		Client:  client,
		Catalog: catalog,
		Sampler: sampler.New(catalog, rand.New(rand.NewSource(int64(seed))), prof.MaxAttempts),
		Profile: prof,
		Log:     slog.Default(),
		Rec:     rec,
	}

	slog.Info("suite starting", "target", client.Addr(), "seed", seed, "run_id", rec.RunID())
	sum, runErr := scenario.Run(ctx, env, scenario.Suite(), seed)

	// The finish row goes on a fresh context: an interrupted run still
	// deserves its verdict in the journal.
	outcome := string(sum.Outcome)
	if runErr != nil {
		outcome = journal.OutcomeError
	}
	if finErr := rec.Finish(context.Background(), outcome, time.Now()); finErr != nil {
		slog.Error("error recording run finish", "error", finErr)
	}
	if runErr != nil {
		return WrapExitError(ExitCommandError, "run aborted", runErr)
	}

	if err := renderSummary(cmd, root, cfg.NoColor, *sum); err != nil {
		return err
	}
	return exitForOutcome(*sum)
}

// renderSummary writes the report in the requested format.
func renderSummary(cmd *cobra.Command, root *RootOptions, noColor bool, sum report.Summary) error {
	if root.Format == "json" {
		if err := report.RenderJSON(cmd.OutOrStdout(), sum); err != nil {
			return WrapExitError(ExitCommandError, "failed to render report", err)
		}
		return nil
	}
	color := !root.NoColor && !noColor
	if err := report.RenderText(cmd.OutOrStdout(), sum, color); err != nil {
		return WrapExitError(ExitCommandError, "failed to render report", err)
	}
	return nil
}

// exitForOutcome maps the run verdict to the process exit code.
func exitForOutcome(sum report.Summary) error {
	_, failed, errored, _ := sum.Counts()
	switch sum.Outcome {
	case report.OutcomePass:
		return nil
	case report.OutcomeFail:
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", failed))
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("%d scenario(s) did not finish", errored))
	}
}
