package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/csvcheck/internal/validator"
)

// FlagsOptions holds flags for the flags command.
type FlagsOptions struct {
	*RootOptions
	Root         string
	DuplicateIDs string
}

// ActiveFlag is one id and its active flag.
type ActiveFlag struct {
	ID     int  `json:"id"`
	Active bool `json:"active"`
}

// NewFlagsCommand creates the flags command.
func NewFlagsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FlagsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "flags [data-file]",
		Short: "Print the id to active flag mapping",
		Long: `Print every id in the data file with its active flag, sorted by id.

A flag is true only when is_active reads "true" in any letter case after
trimming. Repeated ids follow --duplicate-ids: last_write_wins (default),
first_write_wins or reject.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlags(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Root, "root", ".", "directory to search for the data file")
	cmd.Flags().StringVar(&opts.DuplicateIDs, "duplicate-ids", string(validator.LastWriteWins), "policy for repeated ids (last_write_wins|first_write_wins|reject)")

	return cmd
}

func runFlags(opts *FlagsOptions, args []string, cmd *cobra.Command) error {
	if err := opts.setup(cmd); err != nil {
		return err
	}
	formatter := opts.formatter(cmd)

	policy := validator.DuplicateIDPolicy(opts.DuplicateIDs)
	if !slices.Contains(validator.ValidDuplicateIDPolicies, policy) {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric,
			fmt.Sprintf("invalid duplicate id policy %q: must be one of %v", opts.DuplicateIDs, validator.ValidDuplicateIDPolicies), nil)
	}

	explicit := opts.Config.DataFile
	if len(args) > 0 {
		explicit = args[0]
	}
	path, err := resolveDataFile(explicit, opts.Config.Root, "")
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "data file not found", err)
	}
	formatter.VerboseLog("Loading active flags from %s", path)

	v := validator.New(validator.WithLogger(opts.Logger), validator.WithDuplicateIDPolicy(policy))
	flags, err := v.LoadActiveFlags(path)
	if err != nil {
		if isNotFound(err) {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, "data file not found", err)
		}
		return formatter.Fail(ExitFailure, ErrCodeData, "failed to load active flags", err)
	}

	ids := slices.Sorted(maps.Keys(flags))
	mapping := make([]ActiveFlag, len(ids))
	for i, id := range ids {
		mapping[i] = ActiveFlag{ID: id, Active: flags[id]}
	}

	if opts.Format == "json" {
		return formatter.Success(mapping)
	}

	w := cmd.OutOrStdout()
	for _, f := range mapping {
		fmt.Fprintf(w, "%d\t%t\n", f.ID, f.Active)
	}
	return nil
}
