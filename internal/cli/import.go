package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/iofimport/internal/importer"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Strict bool
}

// ImportResult is the outcome of importing one location.
type ImportResult struct {
	Source string           `json:"source"`
	Report *importer.Report `json:"report,omitempty"`
	Error  *CLIError        `json:"error,omitempty"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <location>...",
		Short: "Import result lists",
		Long: `Import IOF XML 3.0 result lists into the results database.

A location is a file path, an http(s) URL or an s3://bucket/key object.
Locations are fetched concurrently and imported one at a time in the order
given, each in its own transaction. A location that fails does not stop
the others; every attempt is recorded as an import run.

Examples:
  iofimport import results.xml
  iofimport import --strict https://example.org/live/results.xml
  iofimport import s3://race-day/2024/complete.xml --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail imports with quality warnings")

	return cmd
}

func runImport(opts *ImportOptions, locations []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer opts.closeStore(st)

	im := opts.newImporter(st, opts.Strict)
	outcomes, err := im.ImportFiles(cmd.Context(), locations, opts.newFetcher())
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, "import interrupted", err)
	}

	results := make([]ImportResult, 0, len(outcomes))
	failed := 0
	for _, out := range outcomes {
		r := ImportResult{Source: out.Source, Report: out.Report}
		if out.Err != nil {
			failed++
			r.Error = &CLIError{Code: importErrorCode(out.Err), Message: out.Err.Error()}
			opts.Logger.Warn("import failed", zap.String("source", out.Source), zap.Error(out.Err))
		}
		results = append(results, r)
	}

	if formatter.JSON() {
		if failed > 0 {
			_ = formatter.Failure(results, results[firstFailed(results)].Error.Code, fmt.Sprintf("%d of %d imports failed", failed, len(results)))
		} else {
			_ = formatter.Success(results)
		}
	} else {
		for _, r := range results {
			writeImportResult(formatter.Writer, r, opts.Verbose)
		}
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d imports failed", failed, len(results)))
	}
	return nil
}

func firstFailed(results []ImportResult) int {
	for i, r := range results {
		if r.Error != nil {
			return i
		}
	}
	return 0
}

func writeImportResult(w io.Writer, r ImportResult, verbose bool) {
	if r.Error != nil {
		fmt.Fprintf(w, "✗ %s\n  %s: %s\n", r.Source, r.Error.Code, r.Error.Message)
		if r.Report != nil {
			writeWarnings(w, r.Report.Warnings)
		}
		return
	}

	rep := r.Report
	fmt.Fprintf(w, "✓ %s (%s list %d, run %s)\n", r.Source, rep.ListStatus, rep.ResultListID, rep.RunID)
	fmt.Fprintf(w, "  %d created, %d existing, %d split times\n", rep.Created(), rep.Existing(), rep.SplitTimes)
	if verbose {
		for _, l := range rep.Levels() {
			fmt.Fprintf(w, "  %-15s %4d created %4d existing\n", l.Name, l.Created, l.Existing)
		}
	}
	writeWarnings(w, rep.Warnings)
}

func writeWarnings(w io.Writer, warnings []string) {
	for _, msg := range warnings {
		fmt.Fprintf(w, "  warning: %s\n", msg)
	}
}
