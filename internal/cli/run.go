package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"cbscheck/internal/config"
	"cbscheck/internal/probe"
	"cbscheck/internal/transport"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Addr        string
	Port        int
	Server      string
	Parallelism int
	Seed        uint64
	Journal     string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Launch the server and run the conformance suite",
		Long: `Launch the server binary, wait until it answers the movie listing,
then drive the scenario suite against it. The server is torn down
afterwards whether the run passed or not.

Configuration layers: built-in defaults, then the TOML config file,
then CBSCHECK_* environment variables, then flags.

Example:
  cbscheck run
  cbscheck run --server ./build/cbs --port 18080 --seed 42
  cbscheck run --config cbscheck.toml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConformance(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", defaults.Addr, "address the server listens on")
	cmd.Flags().IntVar(&opts.Port, "port", defaults.Port, "port the server listens on")
	cmd.Flags().StringVar(&opts.Server, "server", defaults.ServerPath, "path to the server binary")
	cmd.Flags().IntVar(&opts.Parallelism, "parallelism", defaults.Parallelism, "worker count passed to the server")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed (0 derives one from the clock)")
	cmd.Flags().StringVar(&opts.Journal, "journal", defaults.JournalPath, "journal file (empty disables journaling)")

	return cmd
}

func runConformance(opts *RunOptions, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Addr = opts.Addr
	}
	if flags.Changed("port") {
		cfg.Port = opts.Port
	}
	if flags.Changed("server") {
		cfg.ServerPath = opts.Server
	}
	if flags.Changed("parallelism") {
		cfg.Parallelism = opts.Parallelism
	}
	if flags.Changed("seed") {
		cfg.Seed = opts.Seed
	}
	if flags.Changed("journal") {
		cfg.JournalPath = opts.Journal
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	prof, err := effectiveProfile(opts.ProfilePath, cfg.ProfilePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load profile", err)
	}
	seed := chooseSeed(cfg.Seed)

	ctx, cancel := runContext(cmd, cfg.RunDeadline)
	defer cancel()

	// A leftover server on the same name would answer with somebody
	// else's bookings. A failed scan is only a warning; the launch
	// itself will surface a port clash.
	if err := probe.Preflight(cfg.ProcessName); err != nil {
		if probe.IsConflict(err) {
			return WrapExitError(ExitCommandError, "refusing to launch", err)
		}
		slog.Warn("process table scan failed", "error", err)
	}

	slog.Info("launching server",
		"path", cfg.ServerPath, "addr", cfg.Addr, "port", cfg.Port, "parallelism", cfg.Parallelism)
	handle, err := probe.Launch(probe.Command{
		Path:        cfg.ServerPath,
		Addr:        cfg.Addr,
		Port:        cfg.Port,
		Parallelism: cfg.Parallelism,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to launch server", err)
	}
	client := transport.NewClient(cfg.TargetAddr(), cfg.RequestTimeout)
	defer probe.Release(context.Background(), handle, client, cfg.TerminateGrace)

	readyCtx, cancelReady := context.WithTimeout(ctx, cfg.ReadyTimeout)
	err = probe.WaitReady(readyCtx, client, 0)
	cancelReady()
	if err != nil {
		slog.Error("server never became ready", "error", err, "server_output", handle.Output())
		return WrapExitError(ExitCommandError, "server not ready", err)
	}
	slog.Info("server ready", "target", cfg.TargetAddr())

	if cfg.Warmup > 0 {
		slog.Debug("warming up", "duration", cfg.Warmup)
		select {
		case <-time.After(cfg.Warmup):
		case <-ctx.Done():
			return WrapExitError(ExitCommandError, "interrupted during warmup", ctx.Err())
		}
	}

	return executeSuite(ctx, cmd, opts.RootOptions, cfg, prof, seed, client, cfg.ServerPath)
}
