package tabular

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	perr "github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/errors"
	kit "github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/testkit"
)

func TestCSVReadsHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contracts_finder_2016_11_18.csv")
	kit.WriteExtractCSV(t, path, []string{"A", "B"}, [][]string{
		{"1", "2"},
		{"3", "4"},
	})

	tab, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("OpenCSV: %v", err)
	}
	defer func() { _ = tab.Close() }()

	if hdr := tab.Header(); len(hdr) != 2 || hdr[0] != "A" || hdr[1] != "B" {
		t.Fatalf("header = %v", hdr)
	}

	r1, err := tab.Next()
	if err != nil || r1[0] != "1" || r1[1] != "2" {
		t.Fatalf("row 1 = %v, %v", r1, err)
	}
	r2, err := tab.Next()
	if err != nil || r2[0] != "3" || r2[1] != "4" {
		t.Fatalf("row 2 = %v, %v", r2, err)
	}

	if _, err := tab.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("want io.EOF, got %v", err)
	}
	// EOF is sticky
	if _, err := tab.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("want sticky io.EOF, got %v", err)
	}
}

func TestCSVRaggedRowIsRowParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "day.csv")
	kit.WriteFile(t, path, "A,B\n1,2\nonly-one\n5,6\n")

	tab, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("OpenCSV: %v", err)
	}
	defer func() { _ = tab.Close() }()

	if _, err := tab.Next(); err != nil {
		t.Fatalf("row 1: %v", err)
	}

	_, err = tab.Next()
	if !perr.IsCode(err, perr.ErrorCodeRowParse) {
		t.Fatalf("want RowParse, got %v", err)
	}
	if !strings.Contains(err.Error(), "row 2") {
		t.Fatalf("error should name row 2: %v", err)
	}

	// The failure is sticky; remaining rows are not reachable
	if _, again := tab.Next(); !perr.IsCode(again, perr.ErrorCodeRowParse) {
		t.Fatalf("want sticky RowParse, got %v", again)
	}
}

func TestCSVBareQuoteIsRowParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "day.csv")
	kit.WriteFile(t, path, "A,B\n\"open,2\n")

	tab, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("OpenCSV: %v", err)
	}
	defer func() { _ = tab.Close() }()

	if _, err := tab.Next(); !perr.IsCode(err, perr.ErrorCodeRowParse) {
		t.Fatalf("want RowParse, got %v", err)
	}
}

func TestCSVQuotedFieldsSurviveCommasAndNewlines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "day.csv")
	kit.WriteExtractCSV(t, path, []string{"title", "desc"}, [][]string{
		{"Supply, delivery", "line one\nline two"},
	})

	tab, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("OpenCSV: %v", err)
	}
	defer func() { _ = tab.Close() }()

	row, err := tab.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if row[0] != "Supply, delivery" || row[1] != "line one\nline two" {
		t.Fatalf("row = %q", row)
	}
}

func TestCSVEmptyFileIsSchemaRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "day.csv")
	kit.WriteFile(t, path, "")

	_, err := OpenCSV(path)
	if !perr.IsCode(err, perr.ErrorCodeSchemaRead) {
		t.Fatalf("want SchemaRead, got %v", err)
	}
}

func TestCSVHeaderOnlyFileYieldsNoRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "day.csv")
	kit.WriteFile(t, path, "A,B,C\n")

	tab, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("OpenCSV: %v", err)
	}
	defer func() { _ = tab.Close() }()

	if hdr := tab.Header(); len(hdr) != 3 {
		t.Fatalf("header = %v", hdr)
	}
	if _, err := tab.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("want io.EOF, got %v", err)
	}
}

func TestCSVMissingFileIsSchemaRead(t *testing.T) {
	_, err := OpenCSV(filepath.Join(t.TempDir(), "absent.csv"))
	if !perr.IsCode(err, perr.ErrorCodeSchemaRead) {
		t.Fatalf("want SchemaRead, got %v", err)
	}
}
