package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/adapters/govuk"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/core/catalog"
	perr "github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/errors"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/testkit"
)

// fakePortal serves one published month and counts downloads
type fakePortal struct {
	year  int
	month time.Month
	files []govuk.ArchiveFile

	searches   int
	downloads  []string
	failSearch bool
	failURL    string
}

func (p *fakePortal) Search(_ context.Context, src *catalog.Source, year int, month time.Month) ([]govuk.DatasetLink, error) {
	p.searches++
	if p.failSearch {
		return nil, perr.Unavailablef("portal down")
	}
	if year != p.year || month != p.month {
		return nil, nil
	}
	return []govuk.DatasetLink{{Title: govuk.MonthTitle(src, year, month), URL: "https://www.data.gov.uk/dataset/x"}}, nil
}

func (p *fakePortal) ArchiveFiles(_ context.Context, _ *catalog.Source, _ string) ([]govuk.ArchiveFile, error) {
	return p.files, nil
}

func (p *fakePortal) Download(_ context.Context, url, destPath string) error {
	if url == p.failURL {
		return perr.Fetchf("boom")
	}
	p.downloads = append(p.downloads, url)
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(destPath, []byte("zip"), 0o644)
}

func newService(t *testing.T, root string, p *fakePortal, startYear, endYear int) *Service {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	svc := New(cat, p, Config{RawRoot: root, StartYear: startYear, EndYear: endYear})
	testkit.Swap(t, &svc.sleep, func(time.Duration) {})
	return svc
}

func TestRunDownloadsPublishedMonth(t *testing.T) {
	root := t.TempDir()
	p := &fakePortal{
		year:  2021,
		month: time.March,
		files: []govuk.ArchiveFile{
			{Name: "UK Public Procurement Notices - 1st March 2021.zip", URL: "https://s3.example.com/1.zip"},
			{Name: "UK Public Procurement Notices - 2nd March 2021.zip", URL: "https://s3.example.com/2.zip"},
		},
	}
	svc := newService(t, root, p, 2021, 2021)

	sums, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sums) != 1 {
		t.Fatalf("sums = %d, want 1 (only find_a_tender is portal-backed)", len(sums))
	}
	sum := sums[0]
	if sum.Dataset != "find_a_tender" {
		t.Fatalf("dataset = %q", sum.Dataset)
	}
	if sum.MonthsScanned != 12 || sum.MonthsWithData != 1 {
		t.Errorf("months scanned/with data = %d/%d, want 12/1", sum.MonthsScanned, sum.MonthsWithData)
	}
	if sum.ArchivesFound != 2 || sum.Downloaded != 2 || sum.Skipped != 0 {
		t.Errorf("found/downloaded/skipped = %d/%d/%d, want 2/2/0", sum.ArchivesFound, sum.Downloaded, sum.Skipped)
	}
	if sum.Partial() {
		t.Error("clean run should not be partial")
	}

	dest := filepath.Join(root, "raw", "find_a_tender", "2021", "03",
		"UK Public Procurement Notices - 1st March 2021.zip")
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("archive not on disk: %v", err)
	}
}

func TestRunSkipsExistingArchives(t *testing.T) {
	root := t.TempDir()
	p := &fakePortal{
		year:  2021,
		month: time.March,
		files: []govuk.ArchiveFile{
			{Name: "UK Public Procurement Notices - 1st March 2021.zip", URL: "https://s3.example.com/1.zip"},
			{Name: "UK Public Procurement Notices - 2nd March 2021.zip", URL: "https://s3.example.com/2.zip"},
		},
	}
	testkit.WriteFile(t,
		filepath.Join(root, "raw", "find_a_tender", "2021", "03", "UK Public Procurement Notices - 1st March 2021.zip"),
		"already here")

	svc := newService(t, root, p, 2021, 2021)
	sums, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	sum := sums[0]
	if sum.Skipped != 1 || sum.Downloaded != 1 {
		t.Fatalf("skipped/downloaded = %d/%d, want 1/1", sum.Skipped, sum.Downloaded)
	}
	if len(p.downloads) != 1 || p.downloads[0] != "https://s3.example.com/2.zip" {
		t.Fatalf("downloads = %v, want only the missing archive", p.downloads)
	}
}

func TestRunIsolatesDownloadFailure(t *testing.T) {
	root := t.TempDir()
	p := &fakePortal{
		year:  2021,
		month: time.March,
		files: []govuk.ArchiveFile{
			{Name: "a.zip", URL: "https://s3.example.com/bad.zip"},
			{Name: "b.zip", URL: "https://s3.example.com/good.zip"},
		},
		failURL: "https://s3.example.com/bad.zip",
	}
	svc := newService(t, root, p, 2021, 2021)

	sums, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v (download failures are recoverable)", err)
	}
	sum := sums[0]
	if sum.Anomalies.DownloadFailures != 1 || sum.Downloaded != 1 {
		t.Fatalf("failures/downloaded = %d/%d, want 1/1", sum.Anomalies.DownloadFailures, sum.Downloaded)
	}
	if !sum.Partial() {
		t.Error("a failed download should mark the run partial")
	}
}

func TestRunIsolatesSearchFailure(t *testing.T) {
	p := &fakePortal{failSearch: true}
	svc := newService(t, t.TempDir(), p, 2021, 2021)

	sums, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v (search failures are recoverable)", err)
	}
	sum := sums[0]
	if sum.Anomalies.SearchFailures != 12 || sum.MonthsScanned != 12 {
		t.Fatalf("search failures/scanned = %d/%d, want 12/12", sum.Anomalies.SearchFailures, sum.MonthsScanned)
	}
	if sum.Downloaded != 0 {
		t.Fatalf("downloaded = %d, want 0", sum.Downloaded)
	}
}

func TestRunNeedsYearRange(t *testing.T) {
	svc := newService(t, t.TempDir(), &fakePortal{}, 2022, 2021)
	if _, err := svc.Run(context.Background()); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument for end year before start", err)
	}
}
