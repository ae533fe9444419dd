package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/iofimport/internal/iof"
	"github.com/roach88/iofimport/internal/store"
)

// PageOptions holds paging flags shared by list commands.
type PageOptions struct {
	Skip  int
	Limit int
}

func (p *PageOptions) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.Skip, "skip", 0, "number of rows to skip")
	cmd.Flags().IntVar(&p.Limit, "limit", store.DefaultLimit, "maximum number of rows")
}

// EventCreateOptions holds flags for the events create command.
type EventCreateOptions struct {
	*RootOptions
	StartDate string
	IOFID     string
}

// NewEventsCommand creates the events command group.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List and create events",
	}
	cmd.AddCommand(newEventsListCommand(rootOpts))
	cmd.AddCommand(newEventsCreateCommand(rootOpts))
	return cmd
}

func newEventsListCommand(rootOpts *RootOptions) *cobra.Command {
	page := &PageOptions{}
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List events",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEventsList(rootOpts, page, cmd)
		},
	}
	page.register(cmd)
	return cmd
}

func runEventsList(opts *RootOptions, page *PageOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer opts.closeStore(st)

	events, err := st.ListEvents(cmd.Context(), page.Skip, page.Limit)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to list events", err)
	}

	if formatter.JSON() {
		return formatter.Success(events)
	}
	if len(events) == 0 {
		fmt.Fprintln(formatter.Writer, "No events")
		return nil
	}
	fmt.Fprintf(formatter.Writer, "%-5s %-10s %-12s %s\n", "ID", "Date", "Status", "Name")
	for _, ev := range events {
		writeEvent(formatter.Writer, ev)
	}
	return nil
}

func writeEvent(w io.Writer, ev store.Event) {
	fmt.Fprintf(w, "%-5d %-10s %-12s %s\n", ev.ID, dash(ev.StartDate), dash(ev.Status), ev.Name)
}

func newEventsCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventCreateOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an event",
		Long: `Create an event before any result list for it is imported.

Fails if an event with the same name exists; names are compared
ignoring case, accents and surrounding whitespace.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEventsCreate(opts, args[0], cmd)
		},
	}
	cmd.Flags().StringVar(&opts.StartDate, "date", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.IOFID, "iof-id", "", "event id assigned by the organiser")
	return cmd
}

func runEventsCreate(opts *EventCreateOptions, name string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	ev := store.Event{Name: iof.CleanText(name), IOFID: opts.IOFID}
	if ev.Name == "" {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "event name is empty", nil)
	}
	if opts.StartDate != "" {
		date, err := iof.ParseDate(opts.StartDate)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "invalid --date", err)
		}
		ev.StartDate = date
	}

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer opts.closeStore(st)

	created, err := st.CreateEvent(cmd.Context(), ev)
	if errors.Is(err, store.ErrAlreadyExists) {
		return formatter.Fail(ExitFailure, ErrCodeAlreadyExists, fmt.Sprintf("event %q already exists", ev.Name), nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to create event", err)
	}

	if formatter.JSON() {
		return formatter.Success(created)
	}
	fmt.Fprintf(formatter.Writer, "✓ Created event %d: %s\n", created.ID, created.Name)
	return nil
}

// dash renders empty values as "-".
func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
