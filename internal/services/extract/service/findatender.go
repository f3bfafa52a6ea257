package service

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/adapters/tedxml"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/core/catalog"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/logger"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/services/extract/domain"
)

// runZIPOfXML extracts a zip-of-xml dataset: one ZIP of notice XML per
// day, published under "<ArchiveTitle> - <Nth> <Month> <Year>.zip".
// Unparseable members still get a row with parse_error set, so broken
// notices stay visible in the extract instead of vanishing
func (s *Service) runZIPOfXML(ctx context.Context, src *catalog.Source, sum *domain.RunSummary) error {
	for _, day := range s.days() {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := DayZipName(src, day)
		path := filepath.Join(src.RawMonthDir(s.Cfg.RawRoot, day.Year(), day.Month()), name)
		if _, err := os.Stat(path); err != nil {
			// Days without a drop are normal; publication skips weekends
			sum.DaysEmpty++
			continue
		}
		sum.FilesSeen++

		rows, ok := s.extractZip(ctx, src, path, name, sum)
		if !ok {
			continue
		}
		s.writeDay(ctx, src, day, tedxml.Columns(), rows, sum)
	}
	return nil
}

// extractZip parses every XML member of one day ZIP in archive order.
// The second return is false when the archive itself is unreadable
func (s *Service) extractZip(ctx context.Context, src *catalog.Source, path, zipName string, sum *domain.RunSummary) ([][]string, bool) {
	r, err := zip.OpenReader(path)
	if err != nil {
		sum.Anomalies.ParseFailures++
		sum.Anomalies.Record(zipName, "unreadable archive: "+err.Error())
		logger.C(ctx).Warn().Str("zip", zipName).Err(err).Msg("extract: cannot open archive, day skipped")
		return nil, false
	}
	defer func() { _ = r.Close() }()

	var rows [][]string
	for _, member := range r.File {
		if !strings.HasSuffix(strings.ToLower(member.Name), ".xml") {
			continue
		}

		raw, err := readMember(member)
		if err != nil {
			sum.Anomalies.SkippedMembers++
			sum.Anomalies.Record(member.Name, "member read failed: "+err.Error())
			logger.C(ctx).Warn().Str("zip", zipName).Str("member", member.Name).Err(err).
				Msg("extract: member unreadable, skipped")
			continue
		}

		n, err := tedxml.Parse(raw, src)
		if err != nil {
			sum.Anomalies.ParseFailures++
			sum.Anomalies.Record(member.Name, err.Error())
			logger.C(ctx).Warn().Str("zip", zipName).Str("member", member.Name).Err(err).
				Msg("extract: notice parse failed, row carries the error")
			n = tedxml.Notice{ParseError: err.Error()}
		}
		n.SourceXMLFile = member.Name
		n.SourceZip = zipName
		rows = append(rows, n.Row())
	}
	return rows, true
}

func readMember(member *zip.File) ([]byte, error) {
	rc, err := member.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}

// DayZipName returns the published archive name for one day,
// e.g. "UK Public Procurement Notices - 3rd February 2021.zip"
func DayZipName(src *catalog.Source, day time.Time) string {
	return fmt.Sprintf("%s - %s %s %d.zip", src.ArchiveTitle, ordinal(day.Day()), day.Month().String(), day.Year())
}

// ordinal renders 1 as "1st", 2 as "2nd", 11 through 13 as "th"
func ordinal(n int) string {
	suffix := "th"
	if n%100 < 10 || n%100 > 20 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
