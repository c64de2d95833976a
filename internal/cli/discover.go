package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/csvcheck/internal/records"
)

// DiscoverOptions holds flags for the discover command.
type DiscoverOptions struct {
	*RootOptions
	Name string
}

// DiscoverResult is the JSON payload of the discover command.
type DiscoverResult struct {
	Root string `json:"root"`
	Path string `json:"path"`
}

// NewDiscoverCommand creates the discover command.
func NewDiscoverCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DiscoverOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "discover [root]",
		Short: "Find the data file under a directory",
		Long: `Walk root (default: the configured root, else ".") in lexical order and
print the first regular file named --name.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", records.DefaultFileName, "file name to look for")

	return cmd
}

func runDiscover(opts *DiscoverOptions, args []string, cmd *cobra.Command) error {
	if err := opts.setup(cmd); err != nil {
		return err
	}
	formatter := opts.formatter(cmd)

	root := opts.Config.Root
	if len(args) > 0 {
		root = args[0]
	}

	path, err := records.Discover(root, opts.Name)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "data file not found", err)
	}

	if opts.Format == "json" {
		return formatter.Success(DiscoverResult{Root: root, Path: path})
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
