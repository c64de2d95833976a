package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/csvcheck/internal/harness"
)

// CollectOptions holds flags for the collect command.
type CollectOptions struct {
	*RootOptions
	Markers string
}

// CollectResult lists the cases a run would produce.
type CollectResult struct {
	Suite    string               `json:"suite"`
	Selected int                  `json:"selected"`
	Total    int                  `json:"total"`
	Cases    []harness.CaseResult `json:"cases"`
}

// NewCollectCommand creates the collect command.
func NewCollectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CollectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "collect [suite]",
		Short: "List the cases a suite would run",
		Long: `List the cases a suite expands into without reading any data file.

Per-row age cases are shown as age_in_range[row=*] since the row count is
only known once the file is read.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Markers, "markers", "m", "", "marker expression")

	return cmd
}

func runCollect(opts *CollectOptions, args []string, cmd *cobra.Command) error {
	if err := opts.setup(cmd); err != nil {
		return err
	}
	formatter := opts.formatter(cmd)

	suite, err := loadSuite(args, opts.Config.Suite)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeSuite, "failed to load suite", err)
	}

	cases, err := harness.New(harness.WithLogger(opts.Logger)).Collect(suite, opts.Config.Markers)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeMarkers, "invalid marker expression", err)
	}

	result := CollectResult{Suite: suite.Name, Total: len(cases), Cases: cases}
	for _, c := range cases {
		if c.Outcome != harness.OutcomeDeselected {
			result.Selected++
		}
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	for _, c := range cases {
		line := c.ID
		if len(c.Markers) > 0 {
			line += " [" + strings.Join(c.Markers, ", ") + "]"
		}
		if c.Outcome == harness.OutcomeDeselected {
			line += " (deselected)"
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d/%d cases selected from suite %s\n", result.Selected, result.Total, suite.Name)
	return nil
}
