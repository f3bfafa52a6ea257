package service

import (
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/services/merge/domain"
)

// suppressor is the per-run duplicate key set. First occurrence wins.
// The set grows with the dataset's distinct-row count (32 bytes per key
// plus map overhead), not with total rows or file count — the one place
// the stage holds state proportional to the data
type suppressor struct {
	seen map[domain.RowKey]struct{}
}

func newSuppressor() *suppressor {
	return &suppressor{seen: make(map[domain.RowKey]struct{}, 4096)}
}

// admit reports whether the projected tuple is new; duplicates return false
func (s *suppressor) admit(cells []string) bool {
	k := domain.KeyRow(cells)
	if _, dup := s.seen[k]; dup {
		return false
	}
	s.seen[k] = struct{}{}
	return true
}

// size returns the number of distinct rows seen so far
func (s *suppressor) size() int { return len(s.seen) }
