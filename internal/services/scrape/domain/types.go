// Package domain holds the core types and ports for the scrape stage
package domain

import "time"

// maxNotes bounds the per-run note list
const maxNotes = 64

// Note records one recoverable failure against the unit it happened in
type Note struct {
	Unit   string // search month, dataset url, or archive name
	Reason string
}

// Anomalies are the per-run recoverable failure counters
type Anomalies struct {
	SearchFailures   int
	ListingFailures  int
	DownloadFailures int

	Notes        []Note
	NotesDropped int
}

// Record appends a note, keeping the list bounded
func (a *Anomalies) Record(unit, reason string) {
	if len(a.Notes) >= maxNotes {
		a.NotesDropped++
		return
	}
	a.Notes = append(a.Notes, Note{Unit: unit, Reason: reason})
}

// Any reports whether any recoverable failure happened
func (a *Anomalies) Any() bool {
	return a.SearchFailures > 0 || a.ListingFailures > 0 || a.DownloadFailures > 0
}

// RunSummary is the end-of-run report for one dataset's scrape
type RunSummary struct {
	Dataset string
	RunID   string

	MonthsScanned  int
	MonthsWithData int
	ArchivesFound  int
	Downloaded     int
	Skipped        int // already on disk

	Anomalies Anomalies
	Elapsed   time.Duration
}

// Partial reports whether the run completed but carried anomalies
func (s RunSummary) Partial() bool { return s.Anomalies.Any() }
