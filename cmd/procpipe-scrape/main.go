package main

import (
	"context"
	"flag"
	"os"
	"strconv"

	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/core/version"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/modkit"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/modkit/module"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/config"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/logger"
	scrapemod "github.com/qmanhbeo/uk-procurement-data-pipeline/internal/services/scrape/module"
)

func mustSetEnv(k, v string) {
	if v != "" {
		_ = os.Setenv(k, v)
	}
}

func main() {
	var (
		fStartYear = flag.Int("start-year", 0, "first year to scan, e.g. 2021")
		fEndYear   = flag.Int("end-year", 0, "last year to scan, inclusive")
		fDataDir   = flag.String("data-dir", "", "pipeline data root (default: $PIPE_DATA_DIR or ./data)")
		fDelay     = flag.String("delay", "", "politeness pause between downloads, e.g. 2s")
	)
	flag.Parse()

	l := logger.Get()
	bi := version.Info()
	l.Info().Str("service", bi.Service).Str("version", bi.Version).Str("commit", bi.Commit).Msg("procpipe-scrape starting")

	if *fStartYear == 0 || *fEndYear == 0 {
		l.Fatal().Msg("must provide -start-year and -end-year")
	}
	if *fEndYear < *fStartYear {
		l.Fatal().Int("start", *fStartYear).Int("end", *fEndYear).Msg("-end-year before -start-year")
	}

	// Surface flags to the module's FromConfig
	mustSetEnv("PIPE_DATA_DIR", *fDataDir)
	mustSetEnv("CORE_SCRAPE_START_YEAR", strconv.Itoa(*fStartYear))
	mustSetEnv("CORE_SCRAPE_END_YEAR", strconv.Itoa(*fEndYear))
	mustSetEnv("CORE_SCRAPE_DELAY", *fDelay)

	root := config.New()
	deps := modkit.Deps{Cfg: root, Log: *l}

	sc := scrapemod.New(deps)
	module.Register(sc.Name(), sc.Ports())
	runner := module.MustPortsOf[scrapemod.Ports](sc).Runner

	sums, err := runner.Run(context.Background())
	if err != nil {
		l.Fatal().Err(err).Msg("scrape failed")
	}
	for _, sum := range sums {
		if sum.Partial() {
			os.Exit(3)
		}
	}
}
