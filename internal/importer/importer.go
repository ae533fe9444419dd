package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roach88/iofimport/internal/iof"
	"github.com/roach88/iofimport/internal/store"
)

// Clock supplies timestamps for import runs.
type Clock interface {
	Now() time.Time
}

// IDGenerator supplies import run IDs.
// Implemented by UUIDv7Generator (production) and testutil.SequenceIDs (tests).
type IDGenerator interface {
	NewID() string
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// UUIDv7Generator generates time-sortable UUIDv7 run IDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// NewID creates a new UUIDv7 and returns it as a hyphenated string.
func (UUIDv7Generator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// DefaultConcurrency is the number of documents fetched in parallel by ImportFiles.
const DefaultConcurrency = 4

// Importer writes result list documents to the store.
//
// Each document is written in one transaction, so a failed import leaves no
// partial hierarchy behind. Importer is safe for concurrent use; SQLite
// serialises the transactions.
type Importer struct {
	store       *store.Store
	log         *zap.Logger
	clock       Clock
	ids         IDGenerator
	strict      bool
	recompute   bool
	concurrency int
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger. Default: zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(im *Importer) {
		if l != nil {
			im.log = l
		}
	}
}

// WithClock sets the clock used to stamp import runs.
func WithClock(c Clock) Option {
	return func(im *Importer) { im.clock = c }
}

// WithIDGenerator sets the run ID generator. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(im *Importer) { im.ids = g }
}

// WithStrict makes any quality warning (split checks or position mismatches) abort the import.
func WithStrict(strict bool) Option {
	return func(im *Importer) { im.strict = strict }
}

// WithRecomputePositions ranks Complete and Snapshot class results before
// storing them instead of trusting the document's positions.
// Default: true.
func WithRecomputePositions(recompute bool) Option {
	return func(im *Importer) { im.recompute = recompute }
}

// WithConcurrency bounds parallel fetches in ImportFiles. Values < 1 are ignored.
func WithConcurrency(n int) Option {
	return func(im *Importer) {
		if n >= 1 {
			im.concurrency = n
		}
	}
}

// New creates an Importer writing to s.
func New(s *store.Store, opts ...Option) *Importer {
	im := &Importer{
		store:       s,
		log:         zap.NewNop(),
		clock:       systemClock{},
		ids:         UUIDv7Generator{},
		recompute:   true,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Import stores doc, read from source, and records the run.
//
// The report is returned on failure too; its counters are zero and RunID
// identifies the recorded failed run.
func (im *Importer) Import(ctx context.Context, source string, doc *iof.ResultList) (*Report, error) {
	started := im.clock.Now()
	rep := &Report{RunID: im.ids.NewID(), Source: source, Warnings: []string{}}
	log := im.log.With(zap.String("run_id", rep.RunID), zap.String("source", source))

	err := im.importDocument(ctx, doc, rep)
	if err != nil {
		rep.Status = store.RunFailed
		rep.resetCounts()
		log.Warn("import failed", zap.String("code", string(CodeOf(err))), zap.Error(err))
	} else {
		rep.Status = store.RunSucceeded
		log.Info("imported result list",
			zap.Int64("result_list_id", rep.ResultListID),
			zap.String("list_status", rep.ListStatus),
			zap.Int("created", rep.Created()),
			zap.Int("existing", rep.Existing()),
			zap.Int("warnings", len(rep.Warnings)),
		)
	}

	im.record(ctx, rep, started, err)
	return rep, err
}

// Fail records a run for a document that never reached Import, e.g. because
// it could not be fetched or decoded.
func (im *Importer) Fail(ctx context.Context, source string, cause error) (*Report, error) {
	started := im.clock.Now()
	rep := &Report{RunID: im.ids.NewID(), Source: source, Status: store.RunFailed, Warnings: []string{}}

	var ie *ImportError
	if !errors.As(cause, &ie) {
		code := CodeFetchFailed
		if errors.Is(cause, iof.ErrNotResultList) || isSyntaxError(cause) {
			code = CodeInvalidDocument
		}
		ie = &ImportError{Code: code, Message: "cannot read document", Err: cause}
	}
	im.log.Warn("import failed", zap.String("run_id", rep.RunID), zap.String("source", source),
		zap.String("code", string(ie.Code)), zap.Error(cause))

	im.record(ctx, rep, started, ie)
	return rep, ie
}

func (im *Importer) importDocument(ctx context.Context, doc *iof.ResultList, rep *Report) error {
	if doc == nil {
		return &ImportError{Code: CodeInvalidDocument, Message: "no document"}
	}
	if err := iof.CheckVersion(doc.IOFVersion); err != nil {
		return &ImportError{Code: CodeUnsupportedVersion, Message: "iofVersion not supported", Err: err}
	}
	if problems := iof.Validate(doc); len(problems) > 0 {
		return invalidDocument(problems)
	}

	w := &writer{
		log:       im.log,
		doc:       doc,
		rep:       rep,
		recompute: im.recompute,
	}
	err := im.store.WithTx(ctx, func(tx *store.Tx) error {
		w.tx = tx
		if err := w.write(ctx); err != nil {
			return err
		}
		if im.strict && len(rep.Warnings) > 0 {
			return &ImportError{
				Code:    CodeQualityCheck,
				Message: fmt.Sprintf("%d quality warnings in strict mode", len(rep.Warnings)),
				Path:    w.firstWarningPath,
			}
		}
		return nil
	})
	if err != nil {
		var ie *ImportError
		if errors.As(err, &ie) {
			return err
		}
		return storeFailure("", err)
	}
	return nil
}

// record stores the import run outside the import transaction. A failure to
// record is logged and does not change the import outcome.
func (im *Importer) record(ctx context.Context, rep *Report, started time.Time, importErr error) {
	run := store.ImportRun{
		ID:         rep.RunID,
		Source:     rep.Source,
		StartedAt:  iof.FormatTime(started),
		FinishedAt: iof.FormatTime(im.clock.Now()),
		Status:     rep.Status,
		Created:    rep.Created(),
		Existing:   rep.Existing(),
		Warnings:   rep.Warnings,
	}
	if rep.ResultListID != 0 {
		id := rep.ResultListID
		run.ResultListID = &id
	}
	if importErr != nil {
		run.Error = importErr.Error()
	}
	// A cancelled import must still leave its run behind.
	if err := im.store.RecordImportRun(context.WithoutCancel(ctx), run); err != nil {
		im.log.Error("record import run", zap.String("run_id", rep.RunID), zap.Error(err))
	}
}
