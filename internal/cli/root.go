package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	NoColor     bool
	ConfigPath  string
	ProfilePath string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the cbscheck CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cbscheck",
		Short: "Conformance harness for the cinema booking server",
		Long: `cbscheck drives a cinema seat-booking server over its text protocol
and judges the responses against the booking rules: catalog shape,
theater scoping, seat availability, booking atomicity, and rejection
of malformed requests.

Exit codes: 0 when every scenario passes, 1 on a conformance failure,
2 when the run itself could not be completed.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A .env next to the invocation seeds CBSCHECK_* variables
			// before the configuration reads the environment. Absence
			// is not an error.
			_ = godotenv.Load()
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to TOML config file")
	cmd.PersistentFlags().StringVar(&opts.ProfilePath, "profile", "", "path to YAML conformance profile")

	// Add subcommands
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))
	cmd.AddCommand(NewProfileCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// setupLogging installs the default logger: text on stderr, debug level
// when verbose is set.
func setupLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
