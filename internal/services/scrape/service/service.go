// Package service implements the scrape stage: for every portal-backed
// dataset, walk the configured year range month by month, search
// data.gov.uk for that month's dataset, list its ZIP downloads, and
// pull any archive not already on disk into the raw drop directory
package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/adapters/govuk"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/core/catalog"
	perr "github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/errors"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/logger"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/services/scrape/domain"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/services/scrape/guardrails"
)

// Config holds configuration options for the scrape service
type Config struct {
	// RawRoot is the parent of the per-dataset raw drop directories
	RawRoot string

	// StartYear and EndYear bound the scan, inclusive
	StartYear int
	EndYear   int

	// Delay is the politeness pause between downloads
	Delay time.Duration

	// Timeouts bound the month, fetch, and download phases
	Timeouts guardrails.Timeouts
}

// Service implements the scrape stage
type Service struct {
	Catalog *catalog.Catalog
	Portal  domain.PortalPort
	Cfg     Config

	sleep func(time.Duration)
}

// New constructs the scrape service
func New(cat *catalog.Catalog, portal domain.PortalPort, cfg Config) *Service {
	if cat == nil {
		panic("scrape.Service requires a catalog")
	}
	if portal == nil {
		panic("scrape.Service requires a portal")
	}
	return &Service{Catalog: cat, Portal: portal, Cfg: cfg, sleep: time.Sleep}
}

// Run scrapes every portal-backed dataset across the configured year
// range. A month with no published dataset is normal; search, listing,
// and download failures are isolated to their unit and recorded on the
// summary so one flaky month never sinks the rest of the scan
func (s *Service) Run(ctx context.Context) ([]domain.RunSummary, error) {
	if s.Cfg.StartYear == 0 || s.Cfg.EndYear < s.Cfg.StartYear {
		return nil, perr.InvalidArgf("scrape needs a valid year range, got %d..%d", s.Cfg.StartYear, s.Cfg.EndYear)
	}

	var sums []domain.RunSummary
	var errs []error
	for _, src := range s.Catalog.Sources {
		if src.ArchiveTitle == "" {
			// Not scraped from a portal; raw drops arrive some other way
			continue
		}
		sum, err := s.runSource(ctx, src)
		sums = append(sums, sum)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return sums, errors.Join(errs...)
}

func (s *Service) runSource(ctx context.Context, src *catalog.Source) (domain.RunSummary, error) {
	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, runID, src.ID)
	sum := domain.RunSummary{Dataset: src.ID, RunID: runID}
	start := time.Now()

	var fatal error
	for year := s.Cfg.StartYear; year <= s.Cfg.EndYear && fatal == nil; year++ {
		for month := time.January; month <= time.December; month++ {
			if err := ctx.Err(); err != nil {
				fatal = err
				break
			}
			s.runMonth(ctx, src, year, month, &sum)
		}
	}

	sum.Elapsed = time.Since(start)
	s.logSummary(ctx, sum, fatal)
	return sum, fatal
}

// runMonth handles one (year, month) pass under its own time budget
func (s *Service) runMonth(ctx context.Context, src *catalog.Source, year int, month time.Month, sum *domain.RunSummary) {
	mctx, cancel := guardrails.WithMonth(ctx, s.Cfg.Timeouts)
	defer cancel()

	sum.MonthsScanned++
	unit := govuk.MonthTitle(src, year, month)

	links, err := s.search(mctx, src, year, month)
	if err != nil {
		sum.Anomalies.SearchFailures++
		sum.Anomalies.Record(unit, "search failed: "+err.Error())
		logger.C(ctx).Warn().Int("year", year).Str("month", month.String()).Err(err).
			Msg("scrape: month search failed, month skipped")
		return
	}
	if len(links) == 0 {
		// Nothing published for this month
		return
	}
	sum.MonthsWithData++

	for _, link := range links {
		files, err := s.archiveFiles(mctx, src, link.URL)
		if err != nil {
			sum.Anomalies.ListingFailures++
			sum.Anomalies.Record(link.URL, "listing failed: "+err.Error())
			logger.C(ctx).Warn().Str("dataset", link.URL).Err(err).
				Msg("scrape: dataset listing failed, dataset skipped")
			continue
		}
		sum.ArchivesFound += len(files)

		for _, f := range files {
			s.download(mctx, src, year, month, f, sum)
		}
	}
}

// download pulls one archive unless it already sits in the drop
// directory; re-runs only fetch what a prior run missed
func (s *Service) download(ctx context.Context, src *catalog.Source, year int, month time.Month, f govuk.ArchiveFile, sum *domain.RunSummary) {
	dest := filepath.Join(src.RawMonthDir(s.Cfg.RawRoot, year, month), f.Name)
	if _, err := os.Stat(dest); err == nil {
		sum.Skipped++
		logger.C(ctx).Debug().Str("file", f.Name).Msg("scrape: archive already on disk")
		return
	}

	dctx, cancel := guardrails.ForDownload(ctx, s.Cfg.Timeouts)
	err := s.Portal.Download(dctx, f.URL, dest)
	cancel()
	if err != nil {
		sum.Anomalies.DownloadFailures++
		sum.Anomalies.Record(f.Name, "download failed: "+err.Error())
		logger.C(ctx).Warn().Str("file", f.Name).Str("url", f.URL).Err(err).
			Msg("scrape: archive download failed")
		return
	}

	sum.Downloaded++
	logger.C(ctx).Info().Str("file", f.Name).Str("dest", dest).Msg("scrape: archive downloaded")
	if s.Cfg.Delay > 0 {
		s.sleep(s.Cfg.Delay)
	}
}

func (s *Service) search(ctx context.Context, src *catalog.Source, year int, month time.Month) ([]govuk.DatasetLink, error) {
	fctx, cancel := guardrails.ForFetch(ctx, s.Cfg.Timeouts)
	defer cancel()
	return s.Portal.Search(fctx, src, year, month)
}

func (s *Service) archiveFiles(ctx context.Context, src *catalog.Source, datasetURL string) ([]govuk.ArchiveFile, error) {
	fctx, cancel := guardrails.ForFetch(ctx, s.Cfg.Timeouts)
	defer cancel()
	return s.Portal.ArchiveFiles(fctx, src, datasetURL)
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
		Int("months_scanned", sum.MonthsScanned).
		Int("months_with_data", sum.MonthsWithData).
		Int("archives_found", sum.ArchivesFound).
		Int("downloaded", sum.Downloaded).
		Int("skipped", sum.Skipped).
		Int("search_failures", sum.Anomalies.SearchFailures).
		Int("download_failures", sum.Anomalies.DownloadFailures).
		Dur("elapsed", sum.Elapsed).
		Msg("scrape: dataset run finished")

	for _, n := range sum.Anomalies.Notes {
		log.Warn().Str("unit", n.Unit).Str("reason", n.Reason).Msg("scrape: anomaly")
	}
	if sum.Anomalies.NotesDropped > 0 {
		log.Warn().Int("dropped", sum.Anomalies.NotesDropped).Msg("scrape: further anomaly notes suppressed")
	}
}
