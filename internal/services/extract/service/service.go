// Package service implements the extract stage: per dataset, walk the
// raw drops for the requested day range and turn each day's input into
// one dated xlsx extract. contracts_finder days come from notice-URI
// CSVs resolved against the OCDS release API; find_a_tender days come
// from daily notice ZIPs of TED and UKx XML
package service

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/core/catalog"
	perr "github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/errors"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/logger"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/services/extract/domain"
)

// Config holds configuration options for the extract service
type Config struct {
	// RawRoot is the parent of the per-dataset raw drop directories
	RawRoot string

	// ExtractRoot receives the per-dataset daily extract directories
	ExtractRoot string

	// Start and End bound the day range, inclusive
	Start time.Time
	End   time.Time

	// FetchDelay is the politeness pause between release fetches
	FetchDelay time.Duration

	// Datasets filters RunAll to the named ids; empty means every source
	Datasets []string
}

// Service implements the extract stage
type Service struct {
	Catalog *catalog.Catalog
	Fetcher domain.ReleaseFetcher
	Writer  domain.DayWriter
	Cfg     Config

	sleep func(time.Duration)
}

// New constructs the extract service
func New(cat *catalog.Catalog, f domain.ReleaseFetcher, w domain.DayWriter, cfg Config) *Service {
	if cat == nil {
		panic("extract.Service requires a catalog")
	}
	if f == nil || w == nil {
		panic("extract.Service requires a fetcher and a day writer")
	}
	return &Service{Catalog: cat, Fetcher: f, Writer: w, Cfg: cfg, sleep: time.Sleep}
}

// RunAll extracts every selected dataset sequentially. Datasets share no
// state, so one dataset's fatal error does not stop the next; all errors
// are joined for the caller
func (s *Service) RunAll(ctx context.Context) ([]domain.RunSummary, error) {
	sums := make([]domain.RunSummary, 0, len(s.Catalog.Sources))
	var errs []error
	for _, src := range s.Catalog.Sources {
		if !s.selected(src.ID) {
			continue
		}
		sum, err := s.RunDataset(ctx, src.ID)
		sums = append(sums, sum)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return sums, errors.Join(errs...)
}

func (s *Service) selected(id string) bool {
	if len(s.Cfg.Datasets) == 0 {
		return true
	}
	for _, d := range s.Cfg.Datasets {
		if d == id {
			return true
		}
	}
	return false
}

// RunDataset extracts one dataset's day range. A day with no raw input
// is normal (the scraper may not have covered it); bad files, failed
// fetches, and unparseable notices are recorded on the summary and the
// run keeps going. Re-running a day replaces its extract file
func (s *Service) RunDataset(ctx context.Context, id string) (domain.RunSummary, error) {
	src, ok := s.Catalog.Source(id)
	if !ok {
		return domain.RunSummary{Dataset: id}, perr.InvalidArgf("unknown dataset %q", id)
	}
	if s.Cfg.Start.IsZero() || s.Cfg.End.IsZero() || s.Cfg.End.Before(s.Cfg.Start) {
		return domain.RunSummary{Dataset: id}, perr.InvalidArgf("extract needs a valid day range, got %s..%s",
			s.Cfg.Start.Format("2006-01-02"), s.Cfg.End.Format("2006-01-02"))
	}

	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, runID, src.ID)
	sum := domain.RunSummary{Dataset: src.ID, RunID: runID}
	start := time.Now()

	var err error
	switch src.RawLayout {
	case catalog.LayoutCSVDir:
		err = s.runCSVDir(ctx, src, &sum)
	case catalog.LayoutZIPOfXML:
		err = s.runZIPOfXML(ctx, src, &sum)
	default:
		err = perr.Internalf("dataset %q: unhandled raw layout %q", src.ID, src.RawLayout)
	}

	sum.Elapsed = time.Since(start)
	s.logSummary(ctx, sum, err)
	return sum, err
}

// writeDay persists one day's rows; failures are isolated to the day
func (s *Service) writeDay(ctx context.Context, src *catalog.Source, day time.Time, cols []string, rows [][]string, sum *domain.RunSummary) {
	if len(rows) == 0 {
		sum.DaysEmpty++
		return
	}
	path := filepath.Join(src.ExtractDir(s.Cfg.ExtractRoot), src.ExtractName(day))
	if err := s.Writer.WriteDay(path, cols, rows); err != nil {
		sum.Anomalies.WriteFailures++
		sum.Anomalies.Record(src.ExtractName(day), "write failed: "+err.Error())
		logger.C(ctx).Error().Str("path", path).Err(err).Msg("extract: day write failed")
		return
	}
	sum.DaysProcessed++
	sum.RecordsWritten += len(rows)
	logger.C(ctx).Info().
		Str("path", path).
		Int("records", len(rows)).
		Msg("extract: day written")
}

// days yields every day in the configured range, midnight UTC
func (s *Service) days() []time.Time {
	from := time.Date(s.Cfg.Start.Year(), s.Cfg.Start.Month(), s.Cfg.Start.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(s.Cfg.End.Year(), s.Cfg.End.Month(), s.Cfg.End.Day(), 0, 0, 0, 0, time.UTC)
	var out []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// months yields every (year, month) the configured range touches
func (s *Service) months() [][2]int {
	var out [][2]int
	y, m := s.Cfg.Start.Year(), s.Cfg.Start.Month()
	endY, endM := s.Cfg.End.Year(), s.Cfg.End.Month()
	for y < endY || (y == endY && m <= endM) {
		out = append(out, [2]int{y, int(m)})
		if m == time.December {
			y, m = y+1, time.January
		} else {
			m++
		}
	}
	return out
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
		Int("days_processed", sum.DaysProcessed).
		Int("days_empty", sum.DaysEmpty).
		Int("files_seen", sum.FilesSeen).
		Int("records_written", sum.RecordsWritten).
		Int("fetch_ok", sum.FetchOK).
		Int("fetch_failures", sum.Anomalies.FetchFailures).
		Int("duplicate_uris", sum.DuplicateURIs).
		Int("parse_failures", sum.Anomalies.ParseFailures).
		Dur("elapsed", sum.Elapsed).
		Msg("extract: dataset run finished")

	for _, n := range sum.Anomalies.Notes {
		log.Warn().Str("unit", n.Unit).Str("reason", n.Reason).Msg("extract: anomaly")
	}
	if sum.Anomalies.NotesDropped > 0 {
		log.Warn().Int("dropped", sum.Anomalies.NotesDropped).Msg("extract: further anomaly notes suppressed")
	}
}
