package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/roach88/csvcheck/internal/harness"
	"github.com/roach88/csvcheck/internal/records"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	DataFile string
	Root     string
	Markers  string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [suite]",
		Short: "Run a check suite against the data file",
		Long: `Run a check suite against a roster data file.

Without a suite argument the built-in suite runs. Without --data the data
file is discovered by walking --root for the suite's data_file name.

Exit codes:
  0 - All selected cases passed
  1 - One or more cases failed
  2 - Command error (invalid suite, data file not found, etc.)

Examples:
  csvcheck run
  csvcheck run --data ./exports/data.csv
  csvcheck run suites/strict.yaml --root ./exports -m "not api"
  csvcheck run --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DataFile, "data", "", "data file to check (skips discovery)")
	cmd.Flags().StringVar(&opts.Root, "root", ".", "directory to search for the data file")
	cmd.Flags().StringVarP(&opts.Markers, "markers", "m", "", `marker expression, e.g. "integration and not api"`)

	return cmd
}

func runSuite(opts *RunOptions, args []string, cmd *cobra.Command) error {
	if err := opts.setup(cmd); err != nil {
		return err
	}
	formatter := opts.formatter(cmd)
	cfg := opts.Config

	suite, err := loadSuite(args, cfg.Suite)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeSuite, "failed to load suite", err)
	}

	dataPath, err := resolveDataFile(cfg.DataFile, cfg.Root, suite.DataFile)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "data file not found", err)
	}
	formatter.VerboseLog("Running suite %s against %s", suite.Name, dataPath)

	result, err := harness.New(harness.WithLogger(opts.Logger)).Run(cmd.Context(), suite, dataPath, harness.RunOptions{Markers: cfg.Markers})
	if err != nil {
		code := ErrCodeMarkers
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			code = ErrCodeGeneric
		}
		return formatter.Fail(ExitCommandError, code, "run aborted", err)
	}

	if opts.Format == "json" {
		return outputRunJSON(cmd, result)
	}
	return outputRunText(cmd, opts, result)
}

// loadSuite returns the suite named by the first argument, else the configured
// suite path, else the built-in suite.
func loadSuite(args []string, configured string) (*harness.Suite, error) {
	path := configured
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return harness.DefaultSuite(), nil
	}
	return harness.LoadSuite(path)
}

// resolveDataFile returns explicit when set, otherwise discovers name under root.
func resolveDataFile(explicit, root, name string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if name == "" {
		name = records.DefaultFileName
	}
	return records.Discover(root, name)
}

// outputRunJSON writes the report as a CLIResponse.
func outputRunJSON(cmd *cobra.Command, result *harness.Result) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
		RunID:  result.RunID,
	}
	if !result.Pass {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeChecksFailed,
			Message: fmt.Sprintf("%d case(s) failed", result.Summary.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("%d case(s) failed", result.Summary.Failed))
	}
	return nil
}

// outputRunText writes one line per case followed by a summary.
// Deselected cases are listed only in verbose mode.
func outputRunText(cmd *cobra.Command, opts *RunOptions, result *harness.Result) error {
	w := cmd.OutOrStdout()

	for _, c := range result.Cases {
		switch c.Outcome {
		case harness.OutcomePassed:
			fmt.Fprintf(w, "✓ %s\n", c.ID)
		case harness.OutcomeFailed:
			fmt.Fprintf(w, "✗ %s\n", c.ID)
			if c.Kind != "" {
				fmt.Fprintf(w, "  %s: %s\n", c.Kind, c.Message)
			} else {
				fmt.Fprintf(w, "  %s\n", c.Message)
			}
		case harness.OutcomeSkipped:
			fmt.Fprintf(w, "- %s (skipped: %s)\n", c.ID, c.Message)
		case harness.OutcomeDeselected:
			if opts.Verbose {
				fmt.Fprintf(w, "- %s (deselected)\n", c.ID)
			}
		}
	}

	s := result.Summary
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Check Summary: %d passed, %d failed, %d skipped, %d deselected, %d total\n",
		s.Passed, s.Failed, s.Skipped, s.Deselected, s.Total)

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("%d case(s) failed", s.Failed))
	}

	fmt.Fprintln(w, "✓ All checks passed")
	return nil
}

// isNotFound reports whether err means a data file could not be found.
func isNotFound(err error) bool {
	return errors.Is(err, records.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}
