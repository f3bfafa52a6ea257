package govuk

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/core/catalog"
)

// DatasetLink is one search result whose title matched the month's
// archive dataset exactly
type DatasetLink struct {
	Title string
	URL   string
}

// ArchiveFile is one downloadable ZIP row on a dataset page
type ArchiveFile struct {
	// Name is the sanitized local filename derived from the link text
	Name string
	URL  string
}

// MonthTitle renders the dataset title the portal uses for one month,
// e.g. "UK Public Procurement Notices - January 2021"
func MonthTitle(src *catalog.Source, year int, month time.Month) string {
	return src.ArchiveTitle + " - " + month.String() + " " + strconv.Itoa(year)
}

// Search fetches the portal search page for one month and returns the
// dataset links whose title matches exactly. Months with no published
// archive return an empty slice
func (c *Client) Search(ctx context.Context, src *catalog.Source, year int, month time.Month) ([]DatasetLink, error) {
	doc, err := c.GetPage(ctx, src.Portal.SearchURL(year, month))
	if err != nil {
		return nil, err
	}
	return datasetLinks(doc, MonthTitle(src, year, month), src.Portal.BaseURL), nil
}

// ArchiveFiles fetches a dataset page and returns its downloadable
// notice ZIPs
func (c *Client) ArchiveFiles(ctx context.Context, src *catalog.Source, datasetURL string) ([]ArchiveFile, error) {
	doc, err := c.GetPage(ctx, datasetURL)
	if err != nil {
		return nil, err
	}
	return archiveFiles(doc, src.ArchiveTitle, src.Portal.BaseURL), nil
}

// datasetLinks pulls exact-title matches out of a search results page
func datasetLinks(doc *goquery.Document, wantTitle, baseURL string) []DatasetLink {
	var out []DatasetLink
	doc.Find("a.govuk-link").Each(func(_ int, a *goquery.Selection) {
		text := strings.TrimSpace(a.Text())
		if text != wantTitle {
			return
		}
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" {
			return
		}
		out = append(out, DatasetLink{Title: text, URL: absoluteURL(href, baseURL)})
	})
	return out
}

// archiveFiles pulls the ZIP rows out of a dataset page's download
// table: first cell holds the link, second cell the format
func archiveFiles(doc *goquery.Document, titleSubstr, baseURL string) []ArchiveFile {
	var out []ArchiveFile
	doc.Find("tbody.govuk-table__body tr.govuk-table__row").Each(func(_ int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() < 2 {
			return
		}

		link := tds.Eq(0).Find("a.govuk-link").First()
		if link.Length() == 0 {
			return
		}
		linkText := strings.TrimSpace(link.Text())
		href := strings.TrimSpace(link.AttrOr("href", ""))
		format := strings.TrimSpace(tds.Eq(1).Text())

		if !strings.Contains(linkText, titleSubstr) {
			return
		}
		if !strings.Contains(strings.ToUpper(format), "ZIP") {
			return
		}
		if href == "" {
			return
		}

		out = append(out, ArchiveFile{
			Name: ArchiveFileName(linkText),
			URL:  absoluteURL(href, baseURL),
		})
	})
	return out
}

// ArchiveFileName derives the local filename from a download link's
// text: everything before the first comma, minus any "Download" prefix,
// made filesystem-safe, with ".zip" appended
func ArchiveFileName(linkText string) string {
	name, _, _ := strings.Cut(linkText, ",")
	name = strings.TrimSpace(name)
	if len(name) >= 8 && strings.EqualFold(name[:8], "download") {
		name = strings.TrimSpace(name[8:])
	}
	return SanitizeFilename(name) + ".zip"
}

// SanitizeFilename replaces characters unsafe on common filesystems
func SanitizeFilename(name string) string {
	const bad = `<>:"/\|?*`
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if strings.ContainsRune(bad, r) {
			b.WriteByte('_')
		} else {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// absoluteURL resolves portal-relative hrefs; S3 download links arrive
// absolute and pass through unchanged
func absoluteURL(href, baseURL string) string {
	if strings.HasPrefix(href, "/") {
		return baseURL + href
	}
	return href
}
