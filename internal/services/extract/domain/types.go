// Package domain holds the core types and ports for the extract stage
package domain

import "time"

// maxNotes bounds the per-run note list; a month of broken archives
// should not balloon the summary
const maxNotes = 64

// Note records one recoverable deviation against the unit it happened in
type Note struct {
	Unit   string // csv file, zip name, or xml member
	Reason string
}

// Anomalies are the per-run recoverable deviation counters
type Anomalies struct {
	UndatedFiles   int // inputs without a parseable date in the name
	FetchFailures  int
	ParseFailures  int
	SkippedMembers int
	WriteFailures  int

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

// Any reports whether any recoverable deviation happened
func (a *Anomalies) Any() bool {
	return a.UndatedFiles > 0 ||
		a.FetchFailures > 0 ||
		a.ParseFailures > 0 ||
		a.SkippedMembers > 0 ||
		a.WriteFailures > 0
}

// RunSummary is the end-of-run report for one dataset extraction
type RunSummary struct {
	Dataset string
	RunID   string

	DaysProcessed int // days that produced an extract file
	DaysEmpty     int // days in range with no input or no records
	FilesSeen     int // raw inputs considered (CSVs or ZIPs)

	RecordsWritten int
	FetchOK        int
	DuplicateURIs  int

	Anomalies Anomalies
	Elapsed   time.Duration
}

// Partial reports whether the run completed but carried anomalies
func (s RunSummary) Partial() bool { return s.Anomalies.Any() }
