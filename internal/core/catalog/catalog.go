// Package catalog loads and compiles dataset descriptors from the embedded
// sources.json. It is the single authority for dataset identity: directory
// names, filename conventions, and the per-source parsing tables
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

//go:embed sources.json
var embedded []byte

type rawPortal struct {
	BaseURL    string `json:"base_url"`
	SearchPath string `json:"search_path"`
	Publisher  string `json:"publisher"`
}

type rawSource struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	RawLayout     string            `json:"raw_layout"`
	ExtractPrefix string            `json:"extract_prefix"`
	MergedName    string            `json:"merged_name"`
	ArchiveTitle  string            `json:"archive_title,omitempty"`
	Portal        *rawPortal        `json:"portal,omitempty"`
	FormTags      []string          `json:"form_tags,omitempty"`
	NoticeGroups  map[string]string `json:"notice_groups,omitempty"`
}

type rawCatalog struct {
	Version int         `json:"version"`
	Sources []rawSource `json:"sources"`
}

// Layout names the on-disk shape of a source's raw drops
type Layout string

const (
	// LayoutCSVDir is a month directory of daily CSV files
	LayoutCSVDir Layout = "csv-dir"

	// LayoutZIPOfXML is a month directory of daily ZIP archives of XML notices
	LayoutZIPOfXML Layout = "zip-of-xml"
)

// Portal locates the public dataset index a source's archives are scraped from
type Portal struct {
	BaseURL    string
	SearchPath string
	Publisher  string
}

// SearchURL builds the portal search URL for one month of datasets
func (p Portal) SearchURL(year int, month time.Month) string {
	q := strings.ReplaceAll(fmt.Sprintf("Find a Tender %s %d", month.String(), year), " ", "+")
	return p.BaseURL + p.SearchPath +
		"?q=" + q +
		"&filters%5Bpublisher%5D=" + strings.ReplaceAll(p.Publisher, " ", "+") +
		"&filters%5Btopic%5D=&filters%5Bformat%5D=&sort=best"
}

// GroupOther is the fallback notice group for unmapped document-type codes
const GroupOther = "OTHER"

// Source is a compiled dataset descriptor
type Source struct {
	ID            string
	Title         string
	RawLayout     Layout
	ExtractPrefix string
	MergedName    string

	// ArchiveTitle is the dataset title prefix on the portal ("" when the
	// source is not scraped)
	ArchiveTitle string
	Portal       Portal

	// FormTags are checked in order against a notice's root element; the
	// first hit decides the form parser. Order matters: UK16 before UK1,
	// 2023 editions before 2022
	FormTags []string

	noticeGroups map[string]string
}

// NoticeGroup maps a TED TD document-type code onto a coarse notice group.
// Empty and unknown codes land in OTHER
func (s *Source) NoticeGroup(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if g, ok := s.noticeGroups[code]; ok {
		return g
	}
	return GroupOther
}

// ExtractName returns the canonical per-day extract filename,
// e.g. "contracts_finder_2016_11_18.xlsx"
func (s *Source) ExtractName(day time.Time) string {
	return fmt.Sprintf("%s_%04d_%02d_%02d.xlsx", s.ExtractPrefix, day.Year(), int(day.Month()), day.Day())
}

// RawMonthDir returns the raw drop directory for one month under root
func (s *Source) RawMonthDir(root string, year int, month time.Month) string {
	return filepath.Join(root, "raw", s.ID, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", int(month)))
}

// ExtractDir returns the per-source extract directory under root
func (s *Source) ExtractDir(root string) string {
	return filepath.Join(root, "extracted", s.ID)
}

// MergedPath returns the consolidated output path under root
func (s *Source) MergedPath(root string) string {
	return filepath.Join(root, "merged", s.MergedName)
}

// Catalog is the compiled set of dataset descriptors
type Catalog struct {
	Version int

	// Sources in sources.json order (stable for iteration and logs)
	Sources []*Source

	byID map[string]*Source
}

// Load returns the compiled catalog from the embedded sources.json
func Load() (*Catalog, error) {
	var rc rawCatalog
	if err := json.Unmarshal(embedded, &rc); err != nil {
		return nil, fmt.Errorf("catalog: parse sources.json: %w", err)
	}
	if rc.Version != 1 {
		return nil, fmt.Errorf("catalog: unsupported sources.json version %d (want 1)", rc.Version)
	}
	if len(rc.Sources) == 0 {
		return nil, fmt.Errorf("catalog: sources.json lists no sources")
	}

	c := &Catalog{
		Version: rc.Version,
		byID:    make(map[string]*Source, len(rc.Sources)),
	}

	for _, rs := range rc.Sources {
		s, err := compileSource(rs)
		if err != nil {
			return nil, err
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate source id %q", s.ID)
		}
		c.Sources = append(c.Sources, s)
		c.byID[s.ID] = s
	}

	return c, nil
}

func compileSource(rs rawSource) (*Source, error) {
	id := strings.TrimSpace(rs.ID)
	if !validID(id) {
		return nil, fmt.Errorf("catalog: invalid source id %q (want lowercase a-z0-9 with inner underscores)", rs.ID)
	}
	if strings.TrimSpace(rs.Title) == "" {
		return nil, fmt.Errorf("catalog: source %q: missing title", id)
	}

	var layout Layout
	switch Layout(rs.RawLayout) {
	case LayoutCSVDir, LayoutZIPOfXML:
		layout = Layout(rs.RawLayout)
	default:
		return nil, fmt.Errorf("catalog: source %q: unknown raw_layout %q", id, rs.RawLayout)
	}

	if strings.TrimSpace(rs.ExtractPrefix) == "" {
		return nil, fmt.Errorf("catalog: source %q: missing extract_prefix", id)
	}
	if strings.TrimSpace(rs.MergedName) == "" {
		return nil, fmt.Errorf("catalog: source %q: missing merged_name", id)
	}

	s := &Source{
		ID:            id,
		Title:         strings.TrimSpace(rs.Title),
		RawLayout:     layout,
		ExtractPrefix: strings.TrimSpace(rs.ExtractPrefix),
		MergedName:    strings.TrimSpace(rs.MergedName),
		ArchiveTitle:  strings.TrimSpace(rs.ArchiveTitle),
		noticeGroups:  make(map[string]string, len(rs.NoticeGroups)),
	}

	if rs.Portal != nil {
		s.Portal = Portal{
			BaseURL:    strings.TrimRight(strings.TrimSpace(rs.Portal.BaseURL), "/"),
			SearchPath: strings.TrimSpace(rs.Portal.SearchPath),
			Publisher:  strings.TrimSpace(rs.Portal.Publisher),
		}
		if s.Portal.BaseURL == "" || s.Portal.SearchPath == "" {
			return nil, fmt.Errorf("catalog: source %q: portal needs base_url and search_path", id)
		}
	}

	// Form tags: keep author order, reject blanks and dupes
	seen := make(map[string]struct{}, len(rs.FormTags))
	for _, tag := range rs.FormTags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return nil, fmt.Errorf("catalog: source %q: blank form tag", id)
		}
		if _, dup := seen[tag]; dup {
			return nil, fmt.Errorf("catalog: source %q: duplicate form tag %q", id, tag)
		}
		seen[tag] = struct{}{}
		s.FormTags = append(s.FormTags, tag)
	}

	for code, group := range rs.NoticeGroups {
		code = strings.ToUpper(strings.TrimSpace(code))
		group = strings.TrimSpace(group)
		if code == "" || group == "" {
			return nil, fmt.Errorf("catalog: source %q: blank notice group entry", id)
		}
		s.noticeGroups[code] = group
	}

	return s, nil
}

// Source returns the descriptor for id, reporting whether it exists
func (c *Catalog) Source(id string) (*Source, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// MustSource returns the descriptor for id and panics on unknown ids.
// Reserve for ids proven valid at startup
func (c *Catalog) MustSource(id string) *Source {
	s, ok := c.byID[id]
	if !ok {
		panic("catalog: unknown source " + id)
	}
	return s
}

// IDs returns the source ids in catalog order
func (c *Catalog) IDs() []string {
	out := make([]string, 0, len(c.Sources))
	for _, s := range c.Sources {
		out = append(out, s.ID)
	}
	return out
}

// validID enforces the id shape used for directory names: lowercase
// alphanumerics with non-leading, non-trailing underscores
func validID(id string) bool {
	if id == "" || id[0] == '_' || id[len(id)-1] == '_' {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '_':
		default:
			return false
		}
	}
	return true
}
