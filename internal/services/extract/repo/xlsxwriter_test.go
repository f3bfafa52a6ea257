package repo

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/adapters/tabular"
)

func TestWriteDayReplacesPriorFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extracted", "x", "x_2021_01_05.xlsx")
	w := XLSXWriter{}

	if err := w.WriteDay(path, []string{"a", "b"}, [][]string{{"1", "2"}, {"3", "4"}}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := w.WriteDay(path, []string{"a", "b"}, [][]string{{"9", "8"}}); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	tab, err := tabular.OpenXLSX(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = tab.Close() }()

	var rows [][]string
	for {
		row, err := tab.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		rows = append(rows, row)
	}
	if len(rows) != 1 || rows[0][0] != "9" {
		t.Fatalf("rows = %v, want the rewrite only", rows)
	}
	if _, err := os.Stat(path + ".partial"); !os.IsNotExist(err) {
		t.Fatal("partial file left behind")
	}
}
