// Package repo holds the storage layer for the extract stage
package repo

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	perr "github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/errors"
)

// XLSXWriter writes daily extracts as single-sheet xlsx workbooks.
// The file is assembled under a temp name and renamed into place so a
// failed day never leaves a half-written extract for the merge stage
type XLSXWriter struct{}

// WriteDay writes header plus rows to path, replacing any prior file
func (XLSXWriter) WriteDay(path string, cols []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeWrite, "create dir %s", filepath.Dir(path))
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)

	setRow := func(n int, cells []string) error {
		vals := make([]any, len(cells))
		for i, c := range cells {
			vals[i] = c
		}
		cell, err := excelize.CoordinatesToCellName(1, n)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeWrite, "cell name row %d", n)
		}
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeWrite, "set row %d in %s", n, path)
		}
		return nil
	}

	if err := setRow(1, cols); err != nil {
		return err
	}
	for i, r := range rows {
		if err := setRow(i+2, r); err != nil {
			return err
		}
	}

	tmp := path + ".partial"
	if err := f.SaveAs(tmp); err != nil {
		_ = os.Remove(tmp)
		return perr.Wrapf(err, perr.ErrorCodeWrite, "save %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return perr.Wrapf(err, perr.ErrorCodeWrite, "rename %s", path)
	}
	return nil
}
