package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/iofimport/internal/watch"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Strict bool
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Import result lists dropped into a directory",
		Long: `Watch a directory and import every result list written to it.

Timing software rewrites its live export many times a minute; a file is
imported once it has been unchanged for the configured debounce interval.
Files already in the directory are imported on start. Runs until
interrupted.

Example:
  iofimport watch ./live`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail imports with quality warnings")

	return cmd
}

func runWatch(opts *WatchOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer opts.closeStore(st)

	im := opts.newImporter(st, opts.Strict)
	fetcher := opts.newFetcher()

	handler := func(ctx context.Context, path string) error {
		outcomes, err := im.ImportFiles(ctx, []string{path}, fetcher)
		if err != nil {
			return err
		}
		r := ImportResult{Source: path, Report: outcomes[0].Report}
		if outcomes[0].Err != nil {
			r.Error = &CLIError{Code: importErrorCode(outcomes[0].Err), Message: outcomes[0].Err.Error()}
		}
		switch {
		case formatter.JSON() && r.Error != nil:
			_ = formatter.Failure(r, r.Error.Code, fmt.Sprintf("import of %s failed", path))
		case formatter.JSON():
			_ = formatter.Success(r)
		default:
			writeImportResult(formatter.Writer, r, opts.Verbose)
		}
		return outcomes[0].Err
	}

	w, err := watch.New(dir, handler,
		watch.WithDebounce(opts.Config.WatchDebounce()),
		watch.WithPattern(opts.Config.Watch.Pattern),
		watch.WithLogger(opts.Logger.Named("watch")),
	)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to watch directory", err)
	}

	// Use command's context if available (for testing)
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to watch directory", err)
	}
	formatter.VerboseLog("Watching %s for %s", dir, opts.Config.Watch.Pattern)
	if !formatter.JSON() {
		fmt.Fprintf(formatter.GetErrWriter(), "Watching %s. Press Ctrl-C to stop.\n", dir)
	}

	select {
	case <-ctx.Done():
	case <-w.Done():
	}
	w.Stop()

	stats := w.Stats()
	opts.Logger.Info("watch stopped",
		zap.Int("handled", stats.Handled),
		zap.Int("failed", stats.Failed),
		zap.Int("errors", stats.Errors))
	return nil
}
