// Package service implements the merge stage: per dataset, locate the
// daily extracts, reconcile their headers into one unified schema, then
// stream every file once, projecting, de-duplicating, and writing rows
// into a single consolidated CSV
package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/core/catalog"
	perr "github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/errors"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/logger"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/services/merge/domain"
)

// SourceFileColumn is the bookkeeping column appended after the unified
// schema, naming the daily extract each output row came from. It is not
// part of the duplicate key
const SourceFileColumn = "source_file"

// Config holds configuration options for the merge service
type Config struct {
	// ExtractRoot is the parent of the per-dataset extract directories
	ExtractRoot string

	// MergedRoot receives the consolidated per-dataset CSVs
	MergedRoot string

	// Strict promotes the first recoverable anomaly to a fatal error
	Strict bool
}

// Service implements the merge stage
type Service struct {
	Catalog *catalog.Catalog
	Locator domain.Locator
	Opener  domain.TableOpener
	Sinks   domain.SinkFactory
	Cfg     Config
}

// New constructs the merge service
func New(cat *catalog.Catalog, loc domain.Locator, op domain.TableOpener, sf domain.SinkFactory, cfg Config) *Service {
	if cat == nil {
		panic("merge.Service requires a catalog")
	}
	if loc == nil || op == nil || sf == nil {
		panic("merge.Service requires a locator, an opener, and a sink factory")
	}
	return &Service{Catalog: cat, Locator: loc, Opener: op, Sinks: sf, Cfg: cfg}
}

// RunAll merges every catalog dataset sequentially. Datasets share no
// state and no output path, so one dataset's fatal error does not stop
// the next; all errors are joined for the caller
func (s *Service) RunAll(ctx context.Context) ([]domain.RunSummary, error) {
	sums := make([]domain.RunSummary, 0, len(s.Catalog.Sources))
	var errs []error
	for _, src := range s.Catalog.Sources {
		sum, err := s.RunDataset(ctx, src.ID)
		sums = append(sums, sum)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return sums, errors.Join(errs...)
}

// RunDataset merges one dataset's extracts into its consolidated output.
// Fatal conditions are a missing extract directory and an unwritable
// output; everything else is recorded on the summary and the run keeps
// going. A fresh run truncates prior output, so re-running an unchanged
// input set is idempotent
func (s *Service) RunDataset(ctx context.Context, id string) (domain.RunSummary, error) {
	src, ok := s.Catalog.Source(id)
	if !ok {
		return domain.RunSummary{Dataset: id}, perr.InvalidArgf("unknown dataset %q", id)
	}

	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, runID, src.ID)
	sum := domain.RunSummary{Dataset: src.ID, RunID: runID}
	start := time.Now()

	finish := func(err error) (domain.RunSummary, error) {
		sum.Elapsed = time.Since(start)
		s.logSummary(ctx, sum, err)
		return sum, err
	}

	dir := src.ExtractDir(s.Cfg.ExtractRoot)
	files, err := s.Locator.Locate(ctx, dir, src)
	if err != nil {
		return finish(err)
	}
	sum.FilesSeen = len(files)

	if len(files) == 0 {
		logger.C(ctx).Info().Str("dir", dir).Msg("merge: no extract files, nothing to write")
		return finish(nil)
	}

	schema := s.reconcile(ctx, files, &sum)
	sum.Columns = schema.Len()
	if s.Cfg.Strict && sum.Anomalies.Any() {
		return finish(perr.SchemaReadf("strict: %d unreadable headers", sum.Anomalies.SchemaReadFailures))
	}
	if schema.Len() == 0 {
		// every header failed; there is no table to build
		sum.FilesSkipped = len(files)
		sum.Anomalies.SkippedFiles += len(files)
		return finish(nil)
	}

	outPath := src.MergedPath(s.Cfg.MergedRoot)
	sink, err := s.Sinks.Create(outPath)
	if err != nil {
		return finish(err)
	}
	sum.OutputPath = outPath

	if err := sink.WriteHeader(append(schema.Columns(), SourceFileColumn)); err != nil {
		_ = sink.Close()
		return finish(err)
	}

	supp := newSuppressor()
	var fatal error
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			fatal = err
			break
		}
		if err := s.runFile(ctx, f, schema, supp, sink, &sum); err != nil {
			fatal = err
			break
		}
		if s.Cfg.Strict && sum.Anomalies.Any() {
			fatal = perr.Newf(perr.ErrorCodeUnknown, "strict: anomaly in %s", f.Base)
			break
		}
	}

	// Close on every path; partial output stays on disk for diagnostics
	if cerr := sink.Close(); cerr != nil && fatal == nil {
		fatal = cerr
	}

	logger.C(ctx).Debug().Int("distinct_rows", supp.size()).Msg("merge: duplicate key set final size")
	return finish(fatal)
}

// runFile streams one extract through project, suppress, write. Problems
// opening or parsing are recorded on sum and the remainder of the file is
// abandoned; only sink write failures come back as errors
func (s *Service) runFile(
	ctx context.Context,
	f domain.ExtractFile,
	schema domain.Schema,
	supp *suppressor,
	sink domain.Sink,
	sum *domain.RunSummary,
) error {
	tab, err := s.Opener.Open(f.Path)
	if err != nil {
		sum.FilesSkipped++
		sum.Anomalies.SkippedFiles++
		sum.Anomalies.Record(f.Base, "open failed: "+err.Error())
		logger.C(ctx).Warn().Str("file", f.Base).Err(err).Msg("merge: cannot open extract, file skipped")
		return nil
	}
	defer func() { _ = tab.Close() }()

	proj := buildProjection(schema, tab.Header())
	if n := len(proj.dropped); n > 0 {
		sum.Anomalies.DroppedColumns += n
		sum.Anomalies.Record(f.Base, "columns outside schema dropped: "+strings.Join(proj.dropped, ", "))
		logger.C(ctx).Warn().
			Str("file", f.Base).
			Strs("columns", proj.dropped).
			Msg("merge: off-schema columns dropped")
	}

	for {
		row, err := tab.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// One anomaly per file; the rest of the file is skipped
			sum.Anomalies.RowParseFailures++
			sum.Anomalies.Record(f.Base, err.Error())
			logger.C(ctx).Warn().Str("file", f.Base).Err(err).Msg("merge: row parse failed, rest of file skipped")
			break
		}
		sum.RowsRead++

		out := proj.apply(row)
		if !supp.admit(out) {
			sum.Anomalies.SuppressedDuplicates++
			continue
		}
		if err := sink.WriteRow(append(out, f.Base)); err != nil {
			return err
		}
		sum.RowsWritten++
	}

	sum.FilesProcessed++
	return nil
}

func (s *Service) logSummary(ctx context.Context, sum domain.RunSummary, err error) {
	log := logger.C(ctx)
	evt := log.Info()
	switch {
	case err != nil:
		evt = log.Error().Err(err)
	case sum.Partial():
		evt = log.Warn()
	}
	evt.
		Int("files_seen", sum.FilesSeen).
		Int("files_processed", sum.FilesProcessed).
		Int("files_skipped", sum.FilesSkipped).
		Int("rows_read", sum.RowsRead).
		Int("rows_written", sum.RowsWritten).
		Int("duplicates_suppressed", sum.Anomalies.SuppressedDuplicates).
		Int("schema_read_failures", sum.Anomalies.SchemaReadFailures).
		Int("row_parse_failures", sum.Anomalies.RowParseFailures).
		Int("columns", sum.Columns).
		Str("output", sum.OutputPath).
		Dur("elapsed", sum.Elapsed).
		Msg("merge: dataset run finished")

	for _, n := range sum.Anomalies.Notes {
		log.Warn().Str("file", n.File).Str("reason", n.Reason).Msg("merge: anomaly")
	}
	if sum.Anomalies.NotesDropped > 0 {
		log.Warn().Int("dropped", sum.Anomalies.NotesDropped).Msg("merge: further anomaly notes suppressed")
	}
}
