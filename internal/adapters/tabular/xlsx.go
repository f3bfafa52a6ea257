package tabular

import (
	"io"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	perr "github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/errors"
)

// xlsxTable streams the first worksheet of an XLSX extract
type xlsxTable struct {
	f      *excelize.File
	rows   *excelize.Rows
	name   string
	header []string
	width  int
	err    error
	row    int
}

// OpenXLSX opens an XLSX extract and reads the header row of its first sheet
func OpenXLSX(path string) (Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeSchemaRead, "open %s", filepath.Base(path))
	}

	sheet := f.GetSheetName(0)
	if sheet == "" {
		_ = f.Close()
		return nil, perr.SchemaReadf("%s: no worksheets", filepath.Base(path))
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		_ = f.Close()
		return nil, perr.Wrapf(err, perr.ErrorCodeSchemaRead, "%s: open sheet %s", filepath.Base(path), sheet)
	}

	if !rows.Next() {
		err := rows.Error()
		_ = rows.Close()
		_ = f.Close()
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeSchemaRead, "%s: header", filepath.Base(path))
		}
		return nil, perr.SchemaReadf("%s: empty sheet, no header row", filepath.Base(path))
	}
	hdr, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		_ = f.Close()
		return nil, perr.Wrapf(err, perr.ErrorCodeSchemaRead, "%s: header", filepath.Base(path))
	}
	if len(hdr) == 0 {
		_ = rows.Close()
		_ = f.Close()
		return nil, perr.SchemaReadf("%s: header row has no cells", filepath.Base(path))
	}

	return &xlsxTable{f: f, rows: rows, name: filepath.Base(path), header: hdr, width: len(hdr)}, nil
}

func (t *xlsxTable) Header() []string {
	out := make([]string, len(t.header))
	copy(out, t.header)
	return out
}

func (t *xlsxTable) Next() ([]string, error) {
	if t.err != nil {
		return nil, t.err
	}
	if !t.rows.Next() {
		if err := t.rows.Error(); err != nil {
			t.err = perr.Wrapf(err, perr.ErrorCodeRowParse, "%s: row %d", t.name, t.row+1)
		} else {
			t.err = io.EOF
		}
		return nil, t.err
	}

	cols, err := t.rows.Columns()
	if err != nil {
		t.err = perr.Wrapf(err, perr.ErrorCodeRowParse, "%s: row %d", t.name, t.row+1)
		return nil, t.err
	}
	if len(cols) > t.width {
		t.err = perr.RowParsef("%s: row %d has %d cells, header has %d", t.name, t.row+1, len(cols), t.width)
		return nil, t.err
	}
	// Trailing empty cells are dropped by the format; restore the width
	for len(cols) < t.width {
		cols = append(cols, "")
	}

	t.row++
	return cols, nil
}

func (t *xlsxTable) Close() error {
	var first error
	if t.rows != nil {
		if err := t.rows.Close(); err != nil {
			first = err
		}
	}
	if t.f != nil {
		if err := t.f.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
