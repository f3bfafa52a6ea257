package tabular

import (
	"path/filepath"
	"strings"

	perr "github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/errors"
)

// Table streams one extract file front to back
type Table interface {
	// Header returns the column names from the first row. It never consumes
	// data rows and may be called more than once
	Header() []string

	// Next returns the next data row, io.EOF once the file is exhausted.
	// Returned rows always match the header width
	Next() ([]string, error)

	// Close releases the underlying file. Safe after partial consumption
	Close() error
}

// Open returns a Table for path, picking the reader by extension
func Open(path string) (Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return OpenCSV(path)
	case ".xlsx":
		return OpenXLSX(path)
	default:
		return nil, perr.SchemaReadf("%s: unsupported extract format", filepath.Base(path))
	}
}

// Header reads just the column names from path and releases the file.
// Used by the schema pass, which must stay header-only
func Header(path string) ([]string, error) {
	t, err := Open(path)
	if err != nil {
		return nil, err
	}
	hdr := t.Header()
	if err := t.Close(); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeSchemaRead, "%s: close", filepath.Base(path))
	}
	return hdr, nil
}
