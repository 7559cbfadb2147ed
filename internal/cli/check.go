package cli

import (
	"github.com/spf13/cobra"

	"cbscheck/internal/config"
	"cbscheck/internal/transport"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Addr    string
	Port    int
	Seed    uint64
	Journal string
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the conformance suite against a running server",
		Long: `Drive the scenario suite against a server somebody else started.
No process is launched or torn down; everything else matches run,
including journaling and exit codes. A server that cannot be reached
shows up as an errored scenario, exit code 2.

Example:
  cbscheck check --addr 127.0.0.1 --port 18080
  cbscheck check --seed 42 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", defaults.Addr, "address of the running server")
	cmd.Flags().IntVar(&opts.Port, "port", defaults.Port, "port of the running server")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed (0 derives one from the clock)")
	cmd.Flags().StringVar(&opts.Journal, "journal", defaults.JournalPath, "journal file (empty disables journaling)")

	return cmd
}

func runCheck(opts *CheckOptions, cmd *cobra.Command) error {
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

	client := transport.NewClient(cfg.TargetAddr(), cfg.RequestTimeout)
	return executeSuite(ctx, cmd, opts.RootOptions, cfg, prof, seed, client, "")
}
