package service

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/adapters/ocds"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/core/catalog"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/logger"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/services/extract/domain"
)

// fileDate matches the publication day embedded in a notice CSV name,
// e.g. "Contracts Finder OCDS 2016-11-18.csv"
var fileDate = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)

// runCSVDir extracts a csv-dir dataset: each monthly drop directory
// holds per-day CSVs whose first column lists OCDS release-package URIs.
// Each CSV becomes one daily extract; the day comes from the filename
func (s *Service) runCSVDir(ctx context.Context, src *catalog.Source, sum *domain.RunSummary) error {
	for _, ym := range s.months() {
		if err := ctx.Err(); err != nil {
			return err
		}

		dir := src.RawMonthDir(s.Cfg.RawRoot, ym[0], time.Month(ym[1]))
		names, err := listCSVs(dir)
		if err != nil {
			// A month the scraper never covered is normal
			logger.C(ctx).Debug().Str("dir", dir).Msg("extract: no raw month directory")
			continue
		}

		for _, name := range names {
			if err := ctx.Err(); err != nil {
				return err
			}
			sum.FilesSeen++

			day, ok := dayFromName(name)
			if !ok {
				sum.Anomalies.UndatedFiles++
				sum.Anomalies.Record(name, "no YYYY-MM-DD in filename")
				logger.C(ctx).Warn().Str("file", name).Msg("extract: undated csv skipped")
				continue
			}

			rows := s.extractCSV(ctx, filepath.Join(dir, name), name, sum)
			s.writeDay(ctx, src, day, ocds.Columns(), rows, sum)
		}
	}
	return nil
}

// extractCSV resolves one day CSV into flattened records. URIs repeated
// within the file get a duplicate status row without a fetch; failed
// fetches get a failure status row. Only the file's own problems stop it
func (s *Service) extractCSV(ctx context.Context, path, base string, sum *domain.RunSummary) [][]string {
	f, err := os.Open(path)
	if err != nil {
		sum.Anomalies.Record(base, "open failed: "+err.Error())
		sum.Anomalies.SkippedMembers++
		logger.C(ctx).Warn().Str("file", base).Err(err).Msg("extract: cannot open csv, file skipped")
		return nil
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // only the first column matters

	var rows [][]string
	seen := make(map[string]struct{})
	idx := -1 // first record is the header
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			sum.Anomalies.ParseFailures++
			sum.Anomalies.Record(base, "csv parse failed: "+err.Error())
			logger.C(ctx).Warn().Str("file", base).Err(err).Msg("extract: csv parse failed, rest of file skipped")
			break
		}
		idx++
		if idx == 0 || len(rec) == 0 {
			continue
		}
		uri := strings.TrimSpace(rec[0])
		if uri == "" {
			continue
		}

		if _, dup := seen[uri]; dup {
			sum.DuplicateURIs++
			rows = append(rows, ocds.StatusRecord(base, idx-1, uri, ocds.StatusDuplicateURI).Row())
			continue
		}
		seen[uri] = struct{}{}

		pkg, err := s.Fetcher.FetchPackage(ctx, uri)
		if err != nil {
			sum.Anomalies.FetchFailures++
			sum.Anomalies.Record(base, "fetch failed: "+uri)
			logger.C(ctx).Warn().Str("uri", uri).Err(err).Msg("extract: release fetch failed")
			rows = append(rows, ocds.StatusRecord(base, idx-1, uri, ocds.StatusFetchFailed).Row())
		} else {
			sum.FetchOK++
			rows = append(rows, ocds.Flatten(pkg, base, idx-1, uri).Row())
		}

		if s.Cfg.FetchDelay > 0 {
			s.sleep(s.Cfg.FetchDelay)
		}
	}
	return rows
}

// listCSVs returns the month directory's CSV names sorted; the directory
// itself must exist
func listCSVs(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// dayFromName pulls the YYYY-MM-DD day out of a CSV filename
func dayFromName(name string) (time.Time, bool) {
	m := fileDate.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", m[1]+"-"+m[2]+"-"+m[3])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
