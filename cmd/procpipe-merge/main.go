package main

import (
	"context"
	"flag"
	"os"

	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/core/version"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/modkit"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/modkit/module"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/config"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/logger"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/services/merge/domain"
	mergemod "github.com/qmanhbeo/uk-procurement-data-pipeline/internal/services/merge/module"
)

func mustSetEnv(k, v string) {
	if v != "" {
		_ = os.Setenv(k, v)
	}
}

func main() {
	var (
		fDataset = flag.String("dataset", "", "merge only this dataset id (default: all)")
		fDataDir = flag.String("data-dir", "", "pipeline data root (default: $PIPE_DATA_DIR or ./data)")
		fStrict  = flag.Bool("strict", false, "promote the first recoverable anomaly to a fatal error")
	)
	flag.Parse()

	l := logger.Get()
	bi := version.Info()
	l.Info().Str("service", bi.Service).Str("version", bi.Version).Str("commit", bi.Commit).Msg("procpipe-merge starting")

	// Surface flags to the module's FromConfig
	mustSetEnv("PIPE_DATA_DIR", *fDataDir)
	mustSetEnv("CORE_MERGE_STRICT", map[bool]string{true: "1", false: ""}[*fStrict])

	root := config.New()
	deps := modkit.Deps{Cfg: root, Log: *l}

	mg := mergemod.New(deps)
	module.Register(mg.Name(), mg.Ports())
	runner := module.MustPortsOf[mergemod.Ports](mg).Runner

	ctx := context.Background()
	var sums []domain.RunSummary
	if *fDataset != "" {
		sum, err := runner.RunDataset(ctx, *fDataset)
		if err != nil {
			l.Fatal().Err(err).Msg("merge failed")
		}
		sums = append(sums, sum)
	} else {
		var err error
		sums, err = runner.RunAll(ctx)
		if err != nil {
			l.Fatal().Err(err).Msg("merge failed")
		}
	}

	for _, sum := range sums {
		if sum.Partial() {
			os.Exit(3)
		}
	}
}
