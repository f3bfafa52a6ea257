// Package domain holds the core types and ports for the merge stage
package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"time"
)

// Schema is the unified, ordered column set for one dataset's merged output
type Schema struct {
	cols []string
	idx  map[string]int
}

// NewSchema builds a Schema from an ordered column list
func NewSchema(cols []string) Schema {
	s := Schema{cols: make([]string, len(cols)), idx: make(map[string]int, len(cols))}
	copy(s.cols, cols)
	for i, c := range s.cols {
		s.idx[c] = i
	}
	return s
}

// Columns returns the schema columns in order
func (s Schema) Columns() []string {
	out := make([]string, len(s.cols))
	copy(out, s.cols)
	return out
}

// Index returns the position of name, reporting whether it exists
func (s Schema) Index(name string) (int, bool) {
	i, ok := s.idx[name]
	return i, ok
}

// Len returns the column count
func (s Schema) Len() int { return len(s.cols) }

// ExtractFile is one located daily extract
type ExtractFile struct {
	Dataset string
	Path    string
	Base    string
	DateKey string // YYYY_MM_DD pulled from the base name
}

// RowKey is the fixed-size duplicate key for one projected row
// (map-key friendly)
type RowKey [32]byte

// KeyRow hashes a projected value tuple. Cells are length-prefixed so
// ("ab","c") and ("a","bc") never collide
func KeyRow(cells []string) RowKey {
	h := sha256.New()
	var n [8]byte
	for _, c := range cells {
		binary.BigEndian.PutUint64(n[:], uint64(len(c)))
		h.Write(n[:])
		h.Write([]byte(c))
	}
	var k RowKey
	h.Sum(k[:0])
	return k
}

// Hex returns the lowercase hex encoding of the RowKey
func (k RowKey) Hex() string { return hex.EncodeToString(k[:]) }

// maxNotes bounds the per-run note list so a pathological month cannot
// balloon the summary
const maxNotes = 64

// Note records one recoverable deviation against the file it happened in
type Note struct {
	File   string
	Reason string
}

// Anomalies are the per-run recoverable deviation counters. One value is
// threaded explicitly through a dataset run and discarded at completion
type Anomalies struct {
	SchemaReadFailures   int
	RowParseFailures     int
	SkippedFiles         int
	DroppedColumns       int
	SuppressedDuplicates int

	Notes        []Note
	NotesDropped int
}

// Record appends a note, keeping the list bounded
func (a *Anomalies) Record(file, reason string) {
	if len(a.Notes) >= maxNotes {
		a.NotesDropped++
		return
	}
	a.Notes = append(a.Notes, Note{File: file, Reason: reason})
}

// Any reports whether any recoverable deviation happened
func (a *Anomalies) Any() bool {
	return a.SchemaReadFailures > 0 ||
		a.RowParseFailures > 0 ||
		a.SkippedFiles > 0 ||
		a.DroppedColumns > 0 ||
		a.SuppressedDuplicates > 0
}

// RunSummary is the end-of-run report for one dataset merge
type RunSummary struct {
	Dataset string
	RunID   string

	FilesSeen      int
	FilesProcessed int
	FilesSkipped   int

	RowsRead    int
	RowsWritten int

	Columns    int
	OutputPath string // empty when no output was created

	Anomalies Anomalies
	Elapsed   time.Duration
}

// Partial reports whether the run completed but carried anomalies
func (s RunSummary) Partial() bool { return s.Anomalies.Any() }
