package domain

import (
	"context"

	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/adapters/ocds"
)

// RunnerPort is the public port exposed by the module
type RunnerPort interface {
	RunDataset(ctx context.Context, id string) (RunSummary, error)
	RunAll(ctx context.Context) ([]RunSummary, error)
}

// ReleaseFetcher retrieves one OCDS release package per notice URI
type ReleaseFetcher interface {
	FetchPackage(ctx context.Context, uri string) (*ocds.Package, error)
}

// DayWriter persists one day's extracted records. WriteDay must leave
// no partial file behind on failure; re-running a day replaces its file
type DayWriter interface {
	WriteDay(path string, cols []string, rows [][]string) error
}
