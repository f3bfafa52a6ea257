package module

import (
	"time"

	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/config"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/validate"
)

// Options holds configuration options for the scrape stage
type Options struct {
	RawRoot string `validate:"required"`

	StartYear int `validate:"required,min=2000"`
	EndYear   int `validate:"required,gtefield=StartYear"`

	FetchTimeout    time.Duration `validate:"min=0"`
	DownloadTimeout time.Duration `validate:"min=0"`
	MonthBudget     time.Duration `validate:"min=0"`
	MaxRetries      int           `validate:"min=1"`
	RetryDelay      time.Duration `validate:"min=0"`
	Delay           time.Duration `validate:"min=0"`
}

// FromConfig reads the scrape options with the CORE_SCRAPE_ prefix. The
// raw root defaults to the shared PIPE_DATA_DIR; the year range is
// required since a zero range would scan nothing
func FromConfig(cfg config.Conf) Options {
	root := cfg.Prefix("PIPE_").MayString("DATA_DIR", "data")
	sc := cfg.Prefix("CORE_SCRAPE_")
	o := Options{
		RawRoot:         sc.MayString("RAW_ROOT", root),
		StartYear:       sc.MustInt("START_YEAR"),
		EndYear:         sc.MustInt("END_YEAR"),
		FetchTimeout:    sc.MayDuration("FETCH_TIMEOUT", 60*time.Second),
		DownloadTimeout: sc.MayDuration("DOWNLOAD_TIMEOUT", 5*time.Minute),
		MonthBudget:     sc.MayDuration("MONTH_BUDGET", 0),
		MaxRetries:      sc.MayInt("MAX_RETRIES", 3),
		RetryDelay:      sc.MayDuration("RETRY_DELAY", 2*time.Second),
		Delay:           sc.MayDuration("DELAY", 0),
	}
	if err := validate.Struct(o); err != nil {
		panic(err)
	}
	return o
}
