package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/iofimport/internal/config"
	"github.com/roach88/iofimport/internal/importer"
	"github.com/roach88/iofimport/internal/logging"
	"github.com/roach88/iofimport/internal/source"
	"github.com/roach88/iofimport/internal/store"
)

// RootOptions holds global flags for all commands, and the configuration
// and logger they resolve to.
type RootOptions struct {
	ConfigPath string
	Database   string
	Verbose    bool
	Format     string // "json" | "text"

	// IDs and Clock override run ids and timestamps (for testing).
	IDs   importer.IDGenerator
	Clock importer.Clock

	Config *config.Config
	Logger *zap.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the iofimport CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iofimport",
		Short: "iofimport - IOF XML result list importer",
		Long: `Imports IOF XML 3.0 result lists into a SQLite results database.

Snapshot and delta lists published during an event are merged into
effective standings; the complete list replaces them once it is out.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.Logger != nil {
				_ = opts.Logger.Sync()
			}
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/iofimport/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewEventsCommand(opts))
	cmd.AddCommand(NewResultListsCommand(opts))
	cmd.AddCommand(NewStandingsCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))

	return cmd
}

// setup validates global flags, loads the config and builds the logger.
func (opts *RootOptions) setup(cmd *cobra.Command) error {
	if !isValidFormat(opts.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return opts.formatter(cmd).Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	opts.Config = cfg

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, opts.Verbose)
	if err != nil {
		return opts.formatter(cmd).Fail(ExitCommandError, ErrCodeConfig, "failed to initialize logger", err)
	}
	opts.Logger = logger
	return nil
}

// formatter returns an output formatter writing to the command's streams.
func (opts *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// openStore opens the configured database, creating its directory.
func (opts *RootOptions) openStore() (*store.Store, error) {
	path := opts.Config.Database
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	opts.Logger.Debug("opening database", zap.String("path", path))
	return store.Open(path)
}

// closeStore closes st, logging failures.
func (opts *RootOptions) closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		opts.Logger.Error("error closing database", zap.Error(err))
	}
}

// newFetcher builds a document fetcher from the config.
func (opts *RootOptions) newFetcher() *source.Fetcher {
	return source.New(
		source.WithTimeout(opts.Config.FetchTimeout()),
		source.WithMaxBytes(opts.Config.Fetch.MaxBytes),
		source.WithAWSRegion(opts.Config.Fetch.AWSRegion),
		source.WithLogger(opts.Logger.Named("source")),
	)
}

// newImporter builds an importer on st from the config.
func (opts *RootOptions) newImporter(st *store.Store, strict bool) *importer.Importer {
	imOpts := []importer.Option{
		importer.WithLogger(opts.Logger.Named("importer")),
		importer.WithStrict(strict || opts.Config.Import.Strict),
		importer.WithRecomputePositions(opts.Config.Import.RecomputePositions),
		importer.WithConcurrency(opts.Config.Import.Concurrency),
	}
	if opts.IDs != nil {
		imOpts = append(imOpts, importer.WithIDGenerator(opts.IDs))
	}
	if opts.Clock != nil {
		imOpts = append(imOpts, importer.WithClock(opts.Clock))
	}
	return importer.New(st, imOpts...)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
