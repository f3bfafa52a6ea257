package domain

import (
	"context"
	"time"

	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/adapters/govuk"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/core/catalog"
)

// RunnerPort is the public port exposed by the module
type RunnerPort interface {
	Run(ctx context.Context) ([]RunSummary, error)
}

// PortalPort is the data.gov.uk surface the scraper drives: month
// search, dataset download listing, and archive download
type PortalPort interface {
	Search(ctx context.Context, src *catalog.Source, year int, month time.Month) ([]govuk.DatasetLink, error)
	ArchiveFiles(ctx context.Context, src *catalog.Source, datasetURL string) ([]govuk.ArchiveFile, error)
	Download(ctx context.Context, url, destPath string) error
}
