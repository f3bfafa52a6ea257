package module

import (
	"time"

	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/config"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/validate"
)

// Options holds configuration options for the extract stage
type Options struct {
	RawRoot     string `validate:"required"`
	ExtractRoot string `validate:"required"`

	Start time.Time `validate:"required"`
	End   time.Time `validate:"required,gtefield=Start"`

	FetchTimeout time.Duration `validate:"min=0"`
	MaxRetries   int           `validate:"min=1"`
	RetryDelay   time.Duration `validate:"min=0"`
	FetchDelay   time.Duration `validate:"min=0"`

	Datasets []string `validate:"dive,dataset_id"`
}

// FromConfig reads the extract options with the CORE_EXTRACT_ prefix.
// Both roots default to the shared PIPE_DATA_DIR; the day range is
// required and panics when absent or malformed, since running without
// one would silently extract nothing
func FromConfig(cfg config.Conf) Options {
	root := cfg.Prefix("PIPE_").MayString("DATA_DIR", "data")
	ex := cfg.Prefix("CORE_EXTRACT_")

	start, err := time.Parse("2006-01-02", ex.MustString("START"))
	if err != nil {
		panic("CORE_EXTRACT_START must be YYYY-MM-DD: " + err.Error())
	}
	end, err := time.Parse("2006-01-02", ex.MustString("END"))
	if err != nil {
		panic("CORE_EXTRACT_END must be YYYY-MM-DD: " + err.Error())
	}

	o := Options{
		RawRoot:      ex.MayString("RAW_ROOT", root),
		ExtractRoot:  ex.MayString("EXTRACT_ROOT", root),
		Start:        start,
		End:          end,
		FetchTimeout: ex.MayDuration("FETCH_TIMEOUT", 30*time.Second),
		MaxRetries:   ex.MayInt("MAX_RETRIES", 3),
		RetryDelay:   ex.MayDuration("RETRY_DELAY", 2*time.Second),
		FetchDelay:   ex.MayDuration("FETCH_DELAY", 0),
		Datasets:     ex.MayCSV("DATASETS", nil),
	}
	if err := validate.Struct(o); err != nil {
		panic(err)
	}
	return o
}
