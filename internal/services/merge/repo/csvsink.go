// Package repo provides the merged-output storage layer for the merge
// stage: a streaming CSV sink with bounded flushing
package repo

import (
	"encoding/csv"
	"os"
	"path/filepath"

	perr "github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/errors"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/services/merge/domain"
)

// DefaultFlushEvery is the row interval between explicit flushes
const DefaultFlushEvery = 256

// CSVFactory creates truncating CSV sinks under the merged root
type CSVFactory struct {
	// FlushEvery overrides the flush interval; <=0 -> DefaultFlushEvery
	FlushEvery int
}

// Create opens path for a fresh run, truncating any prior output and
// creating parent directories
func (cf CSVFactory) Create(path string) (domain.Sink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeWrite, "create dir %s", filepath.Dir(path))
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeWrite, "open %s", path)
	}
	every := cf.FlushEvery
	if every <= 0 {
		every = DefaultFlushEvery
	}
	return &csvSink{f: f, w: csv.NewWriter(f), path: path, every: every}, nil
}

// csvSink streams rows through a csv.Writer, flushing every N rows so a
// crash loses at most one flush window
type csvSink struct {
	f          *os.File
	w          *csv.Writer
	path       string
	every      int
	sinceFlush int
	wroteHdr   bool
}

// WriteHeader writes the header row; exactly once per sink
func (s *csvSink) WriteHeader(cols []string) error {
	if s.wroteHdr {
		return perr.Writef("%s: header already written", s.path)
	}
	s.wroteHdr = true
	return s.write(cols)
}

// WriteRow writes one data row
func (s *csvSink) WriteRow(cells []string) error {
	if !s.wroteHdr {
		return perr.Writef("%s: row before header", s.path)
	}
	return s.write(cells)
}

func (s *csvSink) write(cells []string) error {
	if err := s.w.Write(cells); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeWrite, "write %s", s.path)
	}
	s.sinceFlush++
	if s.sinceFlush >= s.every {
		s.sinceFlush = 0
		s.w.Flush()
		if err := s.w.Error(); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeWrite, "flush %s", s.path)
		}
	}
	return nil
}

// Close flushes and releases the file, surfacing any deferred write
// error. Partial output is always left on disk
func (s *csvSink) Close() error {
	s.w.Flush()
	werr := s.w.Error()
	cerr := s.f.Close()
	if werr != nil {
		return perr.Wrapf(werr, perr.ErrorCodeWrite, "flush %s", s.path)
	}
	if cerr != nil {
		return perr.Wrapf(cerr, perr.ErrorCodeWrite, "close %s", s.path)
	}
	return nil
}
