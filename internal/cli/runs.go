package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/iofimport/internal/store"
)

// NewRunsCommand creates the runs command group.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recorded import runs",
	}

	page := &PageOptions{}
	list := &cobra.Command{
		Use:           "list",
		Short:         "List import runs, most recent first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsList(rootOpts, page, cmd)
		},
	}
	page.register(list)
	cmd.AddCommand(list)

	return cmd
}

func runRunsList(opts *RootOptions, page *PageOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer opts.closeStore(st)

	runs, err := st.ListImportRuns(cmd.Context(), page.Skip, page.Limit)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to list import runs", err)
	}

	if formatter.JSON() {
		return formatter.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No import runs")
		return nil
	}
	for _, run := range runs {
		mark := "✓"
		if run.Status != store.RunSucceeded {
			mark = "✗"
		}
		fmt.Fprintf(formatter.Writer, "%s %s %s %s\n", mark, run.StartedAt, run.ID, run.Source)
		fmt.Fprintf(formatter.Writer, "  %s: %d created, %d existing, %d warnings\n", run.Status, run.Created, run.Existing, len(run.Warnings))
		if run.Error != "" {
			fmt.Fprintf(formatter.Writer, "  error: %s\n", run.Error)
		}
		if opts.Verbose {
			writeWarnings(formatter.Writer, run.Warnings)
		}
	}
	return nil
}
