package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/core/version"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/modkit"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/modkit/module"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/config"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/logger"
	extractmod "github.com/qmanhbeo/uk-procurement-data-pipeline/internal/services/extract/module"
)

func mustSetEnv(k, v string) {
	if v != "" {
		_ = os.Setenv(k, v)
	}
}

func main() {
	var (
		fStart    = flag.String("start", "", "inclusive first day, YYYY-MM-DD")
		fEnd      = flag.String("end", "", "inclusive last day, YYYY-MM-DD")
		fDatasets = flag.String("datasets", "", "comma-separated dataset ids (default: all)")
		fDataDir  = flag.String("data-dir", "", "pipeline data root (default: $PIPE_DATA_DIR or ./data)")
		fDelay    = flag.String("fetch-delay", "", "politeness pause between release fetches, e.g. 500ms")
	)
	flag.Parse()

	l := logger.Get()
	bi := version.Info()
	l.Info().Str("service", bi.Service).Str("version", bi.Version).Str("commit", bi.Commit).Msg("procpipe-extract starting")

	if *fStart == "" || *fEnd == "" {
		l.Fatal().Msg("must provide -start and -end (YYYY-MM-DD)")
	}
	start, err := time.Parse("2006-01-02", *fStart)
	if err != nil {
		l.Fatal().Err(err).Msg("bad -start")
	}
	end, err := time.Parse("2006-01-02", *fEnd)
	if err != nil {
		l.Fatal().Err(err).Msg("bad -end")
	}
	if end.Before(start) {
		l.Fatal().Str("start", *fStart).Str("end", *fEnd).Msg("-end before -start")
	}

	// Surface flags to the module's FromConfig
	mustSetEnv("PIPE_DATA_DIR", *fDataDir)
	mustSetEnv("CORE_EXTRACT_START", *fStart)
	mustSetEnv("CORE_EXTRACT_END", *fEnd)
	mustSetEnv("CORE_EXTRACT_DATASETS", *fDatasets)
	mustSetEnv("CORE_EXTRACT_FETCH_DELAY", *fDelay)

	root := config.New()
	deps := modkit.Deps{Cfg: root, Log: *l}

	ex := extractmod.New(deps)
	module.Register(ex.Name(), ex.Ports())
	runner := module.MustPortsOf[extractmod.Ports](ex).Runner

	sums, err := runner.RunAll(context.Background())
	if err != nil {
		l.Fatal().Err(err).Msg("extract failed")
	}
	for _, sum := range sums {
		if sum.Partial() {
			os.Exit(3)
		}
	}
}
