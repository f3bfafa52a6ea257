package tabular

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"

	perr "github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/errors"
)

// csvTable streams one CSV extract
type csvTable struct {
	f      *os.File
	cr     *csv.Reader
	name   string
	header []string
	err    error
	row    int // 1-based data row offset, header excluded
}

// OpenCSV opens a CSV extract and reads its header row
func OpenCSV(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeSchemaRead, "open %s", filepath.Base(path))
	}

	cr := csv.NewReader(f)
	hdr, err := cr.Read()
	if err != nil {
		_ = f.Close()
		if errors.Is(err, io.EOF) {
			return nil, perr.SchemaReadf("%s: empty file, no header row", filepath.Base(path))
		}
		return nil, perr.Wrapf(err, perr.ErrorCodeSchemaRead, "%s: header", filepath.Base(path))
	}

	// Pin the width; ragged rows surface as errors from Read
	cr.FieldsPerRecord = len(hdr)

	return &csvTable{f: f, cr: cr, name: filepath.Base(path), header: hdr}, nil
}

func (t *csvTable) Header() []string {
	out := make([]string, len(t.header))
	copy(out, t.header)
	return out
}

func (t *csvTable) Next() ([]string, error) {
	if t.err != nil {
		return nil, t.err
	}
	rec, err := t.cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			t.err = io.EOF
		} else {
			t.err = perr.Wrapf(err, perr.ErrorCodeRowParse, "%s: row %d", t.name, t.row+1)
		}
		return nil, t.err
	}
	t.row++
	return rec, nil
}

func (t *csvTable) Close() error { return t.f.Close() }
