package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/core/catalog"
	perr "github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/errors"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/testkit"
)

func cfSource(t *testing.T) *catalog.Source {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	src, ok := cat.Source("contracts_finder")
	if !ok {
		t.Fatal("contracts_finder missing from catalog")
	}
	return src
}

func TestLocateFiltersAndOrders(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		// in scope, deliberately out of order
		"contracts_finder_2021_01_02.xlsx",
		"contracts_finder_2021_01_02.csv",
		"contracts_finder_2020_12_31.csv",
		// foreign: wrong prefix, wrong extension, malformed date, no date
		"find_a_tender_2021_01_02.xlsx",
		"contracts_finder_2021_01_02.zip",
		"contracts_finder_2021_1_02.csv",
		"contracts_finder_2021_01_xx.csv",
		"notes.txt",
	} {
		testkit.WriteFile(t, filepath.Join(dir, name), "x")
	}
	// a well-shaped name inside a subdirectory stays invisible
	testkit.WriteFile(t, filepath.Join(dir, "nested", "contracts_finder_2021_01_03.csv"), "x")

	out, err := FSLocator{}.Locate(context.Background(), dir, cfSource(t))
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}

	want := []string{
		"contracts_finder_2020_12_31.csv",
		"contracts_finder_2021_01_02.csv",
		"contracts_finder_2021_01_02.xlsx",
	}
	if len(out) != len(want) {
		t.Fatalf("located %d files, want %d: %+v", len(out), len(want), out)
	}
	for i, base := range want {
		if out[i].Base != base {
			t.Fatalf("out[%d].Base = %q, want %q", i, out[i].Base, base)
		}
	}
	if out[0].DateKey != "2020_12_31" || out[1].DateKey != "2021_01_02" {
		t.Fatalf("date keys wrong: %+v", out)
	}
	if out[0].Dataset != "contracts_finder" {
		t.Fatalf("dataset = %q", out[0].Dataset)
	}
}

func TestLocateEmptyDirIsNormal(t *testing.T) {
	out, err := FSLocator{}.Locate(context.Background(), t.TempDir(), cfSource(t))
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("located %d files in empty dir", len(out))
	}
}

func TestLocateMissingDirFails(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "never-made")
	_, err := FSLocator{}.Locate(context.Background(), missing, cfSource(t))
	if !perr.IsCode(err, perr.ErrorCodeDiscovery) {
		t.Fatalf("err = %v, want ErrorCodeDiscovery", err)
	}
	if _, statErr := os.Stat(missing); !os.IsNotExist(statErr) {
		t.Fatal("locator should not create the extract dir")
	}
}
