package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/csvcheck/internal/config"
	"github.com/roach88/csvcheck/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	LogLevel   string
	LogFormat  string

	// Resolved by setup before a command runs.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the csvcheck CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "csvcheck",
		Short: "csvcheck - roster file validator",
		Long: `Validate a roster CSV export against a declarative check suite.

The built-in suite checks that data.csv is non-empty, carries the header
id,name,age,email,is_active, has ages in [0, 100], well-formed emails, no
duplicate rows, and the expected active flags for ids 1 and 2.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default: ./csvcheck.yaml, then ~/.csvcheck/csvcheck.yaml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "log level ("+strings.Join(logging.ValidLevels, "|")+")")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "text", "log format ("+strings.Join(logging.ValidFormats, "|")+")")

	// Add subcommands
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewCollectCommand(opts))
	cmd.AddCommand(NewFlagsCommand(opts))
	cmd.AddCommand(NewDiscoverCommand(opts))

	return cmd
}

// Execute runs the root command with args and returns the process exit code.
// Commands report their own errors; anything else (unknown flags, wrong
// argument counts) is printed to stderr as a command error.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitCommandError
	}
	return exitErr.Code
}

// setup loads configuration and builds the logger. It is idempotent so that
// commands constructed on their own (as in tests) can call it directly.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if o.Config != nil {
		return nil
	}

	cfg, err := config.Load(o.ConfigPath, cmd.Flags())
	if err != nil {
		return o.formatter(cmd).Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}

	// A command built without the root has no format flag; keep what the
	// caller set on the options.
	if cmd.Flags().Lookup("format") != nil {
		o.Format = cfg.Format
	}
	if o.Format == "" {
		o.Format = "text"
	}
	if !isValidFormat(o.Format) {
		msg := fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats)
		o.Format = "text"
		return o.formatter(cmd).Fail(ExitCommandError, ErrCodeConfig, msg, nil)
	}

	level := cfg.Logging.Level
	if o.Verbose {
		level = "debug"
	}
	o.Config = cfg
	o.Logger = logging.Setup(level, cfg.Logging.Format, cmd.ErrOrStderr())
	return nil
}

// formatter returns an OutputFormatter for cmd's streams.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
