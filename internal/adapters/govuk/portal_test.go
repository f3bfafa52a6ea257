package govuk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/core/catalog"
	perr "github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/errors"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/testkit"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

const searchHTML = `<html><body>
<a class="govuk-link" href="/dataset/abc/uk-public-procurement-notices-january-2021">
  UK Public Procurement Notices - January 2021
</a>
<a class="govuk-link" href="/dataset/def/other">UK Public Procurement Notices - February 2021</a>
<a class="other-link" href="/dataset/ghi">UK Public Procurement Notices - January 2021</a>
</body></html>`

func TestDatasetLinksExactTitleOnly(t *testing.T) {
	links := datasetLinks(mustDoc(t, searchHTML), "UK Public Procurement Notices - January 2021", "https://www.data.gov.uk")
	if len(links) != 1 {
		t.Fatalf("links = %d, want 1 (exact title, govuk-link class only)", len(links))
	}
	if links[0].URL != "https://www.data.gov.uk/dataset/abc/uk-public-procurement-notices-january-2021" {
		t.Errorf("URL = %q (relative hrefs must resolve against the portal)", links[0].URL)
	}
}

const datasetHTML = `<html><body><table><tbody class="govuk-table__body">
<tr class="govuk-table__row">
  <td><a class="govuk-link" href="https://s3.example.com/notices-1st.zip">Download UK Public Procurement Notices - 1st January 2021, Format: ZIP, Dataset: x</a></td>
  <td>ZIP</td>
</tr>
<tr class="govuk-table__row">
  <td><a class="govuk-link" href="/download/notices-2nd.zip">UK Public Procurement Notices - 2nd January 2021</a></td>
  <td>zip</td>
</tr>
<tr class="govuk-table__row">
  <td><a class="govuk-link" href="https://s3.example.com/readme.csv">UK Public Procurement Notices - notes</a></td>
  <td>CSV</td>
</tr>
<tr class="govuk-table__row">
  <td><a class="govuk-link" href="https://s3.example.com/unrelated.zip">Some other dataset</a></td>
  <td>ZIP</td>
</tr>
<tr class="govuk-table__row"><td>no link here</td></tr>
</tbody></table></body></html>`

func TestArchiveFiles(t *testing.T) {
	files := archiveFiles(mustDoc(t, datasetHTML), "UK Public Procurement Notices", "https://www.data.gov.uk")
	if len(files) != 2 {
		t.Fatalf("files = %d, want 2 (ZIP rows with matching titles)", len(files))
	}
	if files[0].Name != "UK Public Procurement Notices - 1st January 2021.zip" {
		t.Errorf("name[0] = %q (comma cut + Download prefix stripped)", files[0].Name)
	}
	if files[0].URL != "https://s3.example.com/notices-1st.zip" {
		t.Errorf("url[0] = %q (absolute hrefs pass through)", files[0].URL)
	}
	if files[1].URL != "https://www.data.gov.uk/download/notices-2nd.zip" {
		t.Errorf("url[1] = %q (relative hrefs resolve)", files[1].URL)
	}
}

func TestArchiveFileName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Download UK Notices - 1st May 2022, Format: ZIP", "UK Notices - 1st May 2022.zip"},
		{"UK Notices - 2nd May 2022", "UK Notices - 2nd May 2022.zip"},
		{`bad<name>:with/unsafe\chars`, "bad_name__with_unsafe_chars.zip"},
	}
	for _, c := range cases {
		if got := ArchiveFileName(c.in); got != c.want {
			t.Errorf("ArchiveFileName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMonthTitleAndSearchURL(t *testing.T) {
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	src := cat.MustSource("find_a_tender")

	if got := MonthTitle(src, 2021, time.January); got != "UK Public Procurement Notices - January 2021" {
		t.Fatalf("MonthTitle = %q", got)
	}
	u := src.Portal.SearchURL(2021, time.January)
	if !strings.Contains(u, "q=Find+a+Tender+January+2021") ||
		!strings.Contains(u, "filters%5Bpublisher%5D=Crown+Commercial+Service") {
		t.Fatalf("SearchURL = %q", u)
	}
}

func TestDownload(t *testing.T) {
	body := strings.Repeat("zipbytes", 1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	c := NewClient(Options{})
	dest := filepath.Join(t.TempDir(), "2021", "01", "notices.zip")
	if err := c.Download(context.Background(), srv.URL, dest); err != nil {
		t.Fatalf("Download: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != body {
		t.Fatalf("downloaded %d bytes, want %d", len(got), len(body))
	}
	if _, err := os.Stat(dest + ".partial"); !os.IsNotExist(err) {
		t.Fatalf("partial file left behind")
	}
}

func TestDownloadFailureLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := NewClient(Options{})
	dest := filepath.Join(t.TempDir(), "notices.zip")
	if err := c.Download(context.Background(), srv.URL, dest); err == nil {
		t.Fatal("want error on 404")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("dest should not exist after failed download")
	}
}

func TestGetPageBrokenURLNotRetried(t *testing.T) {
	c := NewClient(Options{MaxRetries: 3, RetryDelay: time.Millisecond})
	var naps int
	testkit.Swap(t, &c.sleep, func(time.Duration) { naps++ })

	_, err := c.GetPage(context.Background(), "bogus://search")
	if !perr.IsCode(err, perr.ErrorCodeFetch) {
		t.Fatalf("err = %v, want ErrorCodeFetch", err)
	}
	if naps != 0 {
		t.Fatalf("naps = %d, want 0 (a URL that can never resolve must not burn retries)", naps)
	}
}

func TestGetPageRetriesTransientStatus(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	c := NewClient(Options{MaxRetries: 3, RetryDelay: time.Millisecond})
	testkit.Swap(t, &c.sleep, func(time.Duration) {})

	doc, err := c.GetPage(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if got := doc.Find("body").Text(); got != "ok" {
		t.Fatalf("body = %q", got)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}
