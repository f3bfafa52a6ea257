package service

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/core/catalog"
	perr "github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/errors"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/services/merge/domain"
)

// FSLocator lists extract files from the local filesystem
type FSLocator struct{}

// Locate returns dir's extract files for src, ordered by (date key, name).
// Only files shaped `<prefix>_YYYY_MM_DD.{csv,xlsx}` at the top level
// count; foreign files and subdirectories are ignored. A missing dir is
// the one fatal discovery condition; an empty listing is normal
func (FSLocator) Locate(_ context.Context, dir string, src *catalog.Source) ([]domain.ExtractFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeDiscovery, "extract dir %s", dir)
	}

	var out []domain.ExtractFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		key, ok := dateKey(name, src.ExtractPrefix)
		if !ok {
			continue
		}
		out = append(out, domain.ExtractFile{
			Dataset: src.ID,
			Path:    filepath.Join(dir, name),
			Base:    name,
			DateKey: key,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DateKey != out[j].DateKey {
			return out[i].DateKey < out[j].DateKey
		}
		return out[i].Base < out[j].Base
	})
	return out, nil
}

// dateKey pulls YYYY_MM_DD out of "<prefix>_YYYY_MM_DD.<ext>"
func dateKey(name, prefix string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".csv" && ext != ".xlsx" {
		return "", false
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	rest, ok := strings.CutPrefix(stem, prefix+"_")
	if !ok {
		return "", false
	}
	if len(rest) != 10 || rest[4] != '_' || rest[7] != '_' {
		return "", false
	}
	for i := 0; i < len(rest); i++ {
		if i == 4 || i == 7 {
			continue
		}
		if rest[i] < '0' || rest[i] > '9' {
			return "", false
		}
	}
	return rest, true
}
