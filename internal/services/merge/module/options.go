package module

import (
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/config"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/validate"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/services/merge/repo"
)

// Options holds configuration options for the merge stage
type Options struct {
	ExtractRoot string `validate:"required"`
	MergedRoot  string `validate:"required"`
	FlushEvery  int    `validate:"min=1"`
	Strict      bool
}

// FromConfig reads the merge options with the CORE_MERGE_ prefix. Both
// roots default to the shared PIPE_DATA_DIR and can be pointed elsewhere
// independently
func FromConfig(cfg config.Conf) Options {
	root := cfg.Prefix("PIPE_").MayString("DATA_DIR", "data")
	mg := cfg.Prefix("CORE_MERGE_")
	o := Options{
		ExtractRoot: mg.MayString("EXTRACT_ROOT", root),
		MergedRoot:  mg.MayString("MERGED_ROOT", root),
		FlushEvery:  mg.MayInt("FLUSH_EVERY", repo.DefaultFlushEvery),
		Strict:      mg.MayBool("STRICT", false),
	}
	if err := validate.Struct(o); err != nil {
		panic(err)
	}
	return o
}
