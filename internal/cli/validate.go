package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/iofimport/internal/iof"
	"github.com/roach88/iofimport/internal/results"
)

// ValidationResult holds the validation result of one location.
type ValidationResult struct {
	Source   string                `json:"source"`
	Valid    bool                  `json:"valid"`
	Status   string                `json:"status,omitempty"`
	Classes  int                   `json:"classes"`
	Errors   []iof.ValidationError `json:"errors,omitempty"`
	Warnings []string              `json:"warnings,omitempty"`
	Error    *CLIError             `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <location>...",
		Short: "Validate result lists without importing",
		Long: `Decode and validate IOF XML result lists without touching the database.

Reports every structural problem in each document and the split time
warnings an import would record. Faster than import for checking an
export from timing software.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, locations []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	fetcher := opts.newFetcher()

	var all []ValidationResult
	invalid := 0
	for _, loc := range locations {
		formatter.VerboseLog("Validating %s", loc)
		r := ValidationResult{Source: loc}

		data, err := fetcher.Fetch(cmd.Context(), loc)
		if err != nil {
			r.Error = &CLIError{Code: ErrCodeFetchFailed, Message: err.Error()}
		} else {
			validateDocument(data, &r)
		}
		if !r.Valid {
			invalid++
		}
		all = append(all, r)
	}

	if formatter.JSON() {
		if invalid > 0 {
			_ = formatter.Failure(all, ErrCodeInvalidDocument, fmt.Sprintf("%d of %d documents invalid", invalid, len(all)))
		} else {
			_ = formatter.Success(all)
		}
	} else {
		for _, r := range all {
			writeValidationResult(formatter.Writer, r)
		}
	}

	if invalid > 0 {
		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d documents invalid", invalid, len(all)))
	}
	return nil
}

// validateDocument decodes data and fills r with every problem found.
func validateDocument(data []byte, r *ValidationResult) {
	doc, err := iof.DecodeBytes(data)
	if err != nil {
		r.Error = &CLIError{Code: ErrCodeInvalidDocument, Message: err.Error()}
		return
	}
	r.Status = doc.Status
	r.Classes = len(doc.ClassResults)

	if err := iof.CheckVersion(doc.IOFVersion); err != nil {
		code := ErrCodeInvalidDocument
		if errors.Is(err, iof.ErrUnsupportedVersion) {
			code = ErrCodeUnsupportedVersion
		}
		r.Error = &CLIError{Code: code, Message: err.Error()}
		return
	}

	r.Errors = iof.Validate(doc)
	r.Valid = len(r.Errors) == 0
	if r.Valid {
		r.Warnings = splitWarnings(doc)
	}
}

// splitWarnings runs the split checks an import would run.
func splitWarnings(doc *iof.ResultList) []string {
	var warnings []string
	for _, cr := range doc.ClassResults {
		for _, pr := range cr.PersonResults {
			for _, race := range pr.Results {
				e := results.FromIOF(pr, race)
				var course results.Course
				if c := cr.CourseForRace(e.Race); c != nil {
					course.NumberOfControls = c.NumberOfControls
				}
				for _, w := range results.CheckSplits(e, course) {
					warnings = append(warnings, fmt.Sprintf("%s / %s: %s", cr.Class.Name, e.Name, w))
				}
			}
		}
	}
	return warnings
}

func writeValidationResult(w io.Writer, r ValidationResult) {
	switch {
	case r.Error != nil:
		fmt.Fprintf(w, "✗ %s\n  %s: %s\n", r.Source, r.Error.Code, r.Error.Message)
	case !r.Valid:
		fmt.Fprintf(w, "✗ %s: %d problem(s)\n", r.Source, len(r.Errors))
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  %s\n", e.Error())
		}
	default:
		fmt.Fprintf(w, "✓ %s (%s, %d classes)\n", r.Source, r.Status, r.Classes)
	}
	writeWarnings(w, r.Warnings)
}
