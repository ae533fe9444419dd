package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/iofimport/internal/results"
	"github.com/roach88/iofimport/internal/store"
)

// StandingsOptions holds flags for the standings command.
type StandingsOptions struct {
	*RootOptions
	Event  string
	Class  string
	Splits bool
}

// StandingsResult is the JSON payload of the standings command.
type StandingsResult struct {
	Event     store.Event         `json:"event"`
	Standings []results.Standing `json:"standings"`
}

// NewStandingsCommand creates the standings command.
func NewStandingsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StandingsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "standings",
		Short: "Show effective standings",
		Long: `Show the effective standings of an event.

Every result list imported for a class is merged: the latest complete or
snapshot list is the base and later delta lists are applied on top.
Positions and time behind are then recomputed from the merged times.

Examples:
  iofimport standings --event "Spring Cup 2024"
  iofimport standings --event "Spring Cup 2024" --class H21 --splits`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStandings(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Event, "event", "", "event name (required)")
	_ = cmd.MarkFlagRequired("event")
	cmd.Flags().StringVar(&opts.Class, "class", "", "class name (default all classes)")
	cmd.Flags().BoolVar(&opts.Splits, "splits", false, "show leg times")

	return cmd
}

func runStandings(opts *StandingsOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer opts.closeStore(st)

	ev, err := st.GetEventByName(ctx, opts.Event)
	if errors.Is(err, store.ErrNotFound) {
		return formatter.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("event %q not found", opts.Event), nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to get event", err)
	}

	var classes []store.EventClass
	if opts.Class != "" {
		class, err := st.GetEventClassByName(ctx, ev.ID, opts.Class)
		if errors.Is(err, store.ErrNotFound) {
			return formatter.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("class %q not found in %s", opts.Class, ev.Name), nil)
		}
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to get class", err)
		}
		classes = append(classes, class)
	} else {
		classes, err = st.ListEventClasses(ctx, ev.ID)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to list classes", err)
		}
	}

	out := StandingsResult{Event: ev, Standings: []results.Standing{}}
	for _, class := range classes {
		standings, err := results.Standings(ctx, st, class)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to compute standings", err)
		}
		out.Standings = append(out.Standings, standings...)
	}

	if formatter.JSON() {
		return formatter.Success(out)
	}
	writeStandings(formatter.Writer, out, opts.Splits)
	return nil
}

const standingsRow = "%-4s %-20s %-16s %8s %8s  %s\n"

func writeStandings(w io.Writer, out StandingsResult, splits bool) {
	fmt.Fprintln(w, out.Event.Name)
	if len(out.Standings) == 0 {
		fmt.Fprintln(w, "No results")
		return
	}

	for _, s := range out.Standings {
		lists := "lists"
		if s.Lists == 1 {
			lists = "list"
		}
		fmt.Fprintf(w, "\n%s (race %d, %d %s)\n", s.Class.Name, s.Race, s.Lists, lists)
		if s.Course != nil {
			fmt.Fprintf(w, "Course: %s\n", describeCourse(*s.Course))
		}
		fmt.Fprintf(w, standingsRow, "Pos", "Name", "Club", "Time", "Behind", "Status")
		for _, e := range s.Entries {
			pos, t, behind := "", "", ""
			if e.Position != nil {
				pos = fmt.Sprintf("%d", *e.Position)
			}
			if e.Time != nil {
				t = results.FormatDuration(*e.Time)
			}
			if e.TimeBehind != nil {
				behind = "+" + results.FormatDuration(*e.TimeBehind)
			}
			fmt.Fprintf(w, standingsRow, pos, e.Name, e.Organisation, t, behind, e.Status)
			if splits && len(e.Splits) > 0 {
				fmt.Fprintf(w, "     %s\n", formatLegs(results.Legs(e.Splits, e.Time)))
			}
		}
	}
}

func describeCourse(c store.Course) string {
	var parts []string
	if c.Name != "" {
		parts = append(parts, c.Name)
	}
	if c.Length != nil {
		parts = append(parts, fmt.Sprintf("%.0f m", *c.Length))
	}
	if c.Climb != nil {
		parts = append(parts, fmt.Sprintf("%.0f m climb", *c.Climb))
	}
	if c.NumberOfControls != nil {
		parts = append(parts, fmt.Sprintf("%d controls", *c.NumberOfControls))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func formatLegs(legs []results.Leg) string {
	parts := make([]string, 0, len(legs))
	for _, l := range legs {
		d := "-"
		if l.Duration != nil {
			d = results.FormatDuration(*l.Duration)
		}
		parts = append(parts, fmt.Sprintf("%s-%s %s", l.From, l.To, d))
	}
	return strings.Join(parts, "  ")
}
