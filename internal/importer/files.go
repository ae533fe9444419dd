package importer

import (
	"context"
	"encoding/xml"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/iofimport/internal/iof"
)

// Fetcher reads a document from a location (path, URL or object key).
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// Outcome is the result of importing one location.
type Outcome struct {
	Source string  `json:"source"`
	Report *Report `json:"report"`
	Err    error   `json:"-"`
}

// ImportFiles fetches and decodes the locations concurrently, then imports
// them one by one in input order. A location that fails does not stop the
// others; its error is in its Outcome. The returned error is only set when
// ctx is cancelled.
func (im *Importer) ImportFiles(ctx context.Context, sources []string, fetcher Fetcher) ([]Outcome, error) {
	docs := make([]*iof.ResultList, len(sources))
	readErrs := make([]error, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.concurrency)
	for i, src := range sources {
		g.Go(func() error {
			data, err := fetcher.Fetch(gctx, src)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				readErrs[i] = err
				return nil
			}
			doc, err := iof.DecodeBytes(data)
			if err != nil {
				readErrs[i] = &ImportError{Code: CodeInvalidDocument, Message: "cannot decode document", Err: err}
				return nil
			}
			docs[i] = doc
			im.log.Debug("document decoded", zap.String("source", src), zap.Int("bytes", len(data)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(sources))
	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		var out Outcome
		out.Source = src
		if readErrs[i] != nil {
			out.Report, out.Err = im.Fail(ctx, src, readErrs[i])
		} else {
			out.Report, out.Err = im.Import(ctx, src, docs[i])
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

func isSyntaxError(err error) bool {
	var se *xml.SyntaxError
	return errors.As(err, &se)
}
