package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cbscheck/internal/config"
)

// NewProfileCommand creates the profile command.
func NewProfileCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the effective conformance profile",
		Long: `Resolve and validate the profile a run would use: the --profile flag,
then the config file's profile entry, then built-in defaults. An
invalid profile file fails with the schema violations listed.

Example:
  cbscheck profile
  cbscheck profile --profile relaxed.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfile(rootOpts, cmd)
		},
	}
	return cmd
}

func runProfile(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	prof, err := effectiveProfile(opts.ProfilePath, cfg.ProfilePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid profile", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd, prof)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "trials         %d\n", prof.Trials)
	fmt.Fprintf(w, "min_catalog    %d\n", prof.MinCatalog)
	fmt.Fprintf(w, "min_displayed  %d\n", prof.MinDisplayed)
	fmt.Fprintf(w, "max_attempts   %d\n", prof.MaxAttempts)
	fmt.Fprintln(w, "required_titles:")
	for _, title := range prof.RequiredTitles {
		fmt.Fprintf(w, "  %s\n", title)
	}
	return nil
}
