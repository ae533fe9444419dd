package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/iofimport/internal/store"
)

// ResultListsOptions holds flags for the result-lists list command.
type ResultListsOptions struct {
	*RootOptions
	PageOptions
	Event string
}

// NewResultListsCommand creates the result-lists command group.
func NewResultListsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "result-lists",
		Short: "List imported result lists",
	}

	opts := &ResultListsOptions{RootOptions: rootOpts}
	list := &cobra.Command{
		Use:   "list",
		Short: "List result lists in publication order",
		Long: `List imported result lists ordered by create time.

Examples:
  iofimport result-lists list
  iofimport result-lists list --event "Spring Cup 2024"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResultListsList(opts, cmd)
		},
	}
	opts.PageOptions.register(list)
	list.Flags().StringVar(&opts.Event, "event", "", "only lists of this event")
	cmd.AddCommand(list)

	return cmd
}

func runResultListsList(opts *ResultListsOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer opts.closeStore(st)

	var eventID int64
	if opts.Event != "" {
		ev, err := st.GetEventByName(ctx, opts.Event)
		if errors.Is(err, store.ErrNotFound) {
			return formatter.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("event %q not found", opts.Event), nil)
		}
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to get event", err)
		}
		eventID = ev.ID
	}

	lists, err := st.ListResultLists(ctx, eventID, opts.Skip, opts.Limit)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to list result lists", err)
	}

	if formatter.JSON() {
		return formatter.Success(lists)
	}
	if len(lists) == 0 {
		fmt.Fprintln(formatter.Writer, "No result lists")
		return nil
	}
	fmt.Fprintf(formatter.Writer, "%-5s %-6s %-9s %-20s %s\n", "ID", "Event", "Status", "Created", "Creator")
	for _, rl := range lists {
		fmt.Fprintf(formatter.Writer, "%-5d %-6d %-9s %-20s %s\n", rl.ID, rl.EventID, rl.Status, rl.CreateTime, dash(rl.Creator))
	}
	return nil
}
