package domain

import (
	"context"

	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/core/catalog"
)

// RunnerPort is the public port exposed by the module
type RunnerPort interface {
	RunDataset(ctx context.Context, id string) (RunSummary, error)
	RunAll(ctx context.Context) ([]RunSummary, error)
}

// Locator lists a dataset's extract files in merge order
type Locator interface {
	// Locate returns dir's extracts for src ordered by (date key, name).
	// The directory itself must exist; an empty listing is normal
	Locate(ctx context.Context, dir string, src *catalog.Source) ([]ExtractFile, error)
}

// Table is a single-pass positional row stream over one extract file.
// Once consumed it cannot be replayed without reopening the file
type Table interface {
	Header() []string
	Next() ([]string, error) // io.EOF when exhausted
	Close() error
}

// TableOpener opens extract files for streaming. Header must stay cheap:
// the schema pass calls it for every file without materializing rows
type TableOpener interface {
	Open(path string) (Table, error)
	Header(path string) ([]string, error)
}

// Sink is the streaming writer for one dataset's merged output
type Sink interface {
	WriteHeader(cols []string) error
	WriteRow(cells []string) error

	// Close flushes and releases the output; partial output is retained
	// on failure for diagnostics
	Close() error
}

// SinkFactory creates the dataset's output file, truncating any prior run
type SinkFactory interface {
	Create(path string) (Sink, error)
}
