package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/iofimport/internal/store"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "stats",
		Short:         "Show row counts per table",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(rootOpts, cmd)
		},
	}
}

func runStats(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer opts.closeStore(st)

	counts, err := st.Counts(cmd.Context())
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to count rows", err)
	}

	if formatter.JSON() {
		return formatter.Success(counts)
	}
	fmt.Fprintln(formatter.Writer, opts.Config.Database)
	for _, table := range store.Tables {
		fmt.Fprintf(formatter.Writer, "  %-20s %d\n", table, counts[table])
	}
	return nil
}
