// Package module wires the scrape service behind its public port
package module

import (
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/adapters/govuk"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/core/catalog"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/modkit"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/services/scrape/domain"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/services/scrape/guardrails"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/services/scrape/service"
)

// Ports defines the scrape module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the scrape module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the scrape module. It wires the data.gov.uk client
// into the service using config from deps.Cfg
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	cat, err := catalog.Load()
	if err != nil {
		panic(err)
	}

	svc := service.New(
		cat,
		govuk.NewClient(govuk.Options{
			Timeout:         opts.FetchTimeout,
			DownloadTimeout: opts.DownloadTimeout,
			MaxRetries:      opts.MaxRetries,
			RetryDelay:      opts.RetryDelay,
		}),
		service.Config{
			RawRoot:   opts.RawRoot,
			StartYear: opts.StartYear,
			EndYear:   opts.EndYear,
			Delay:     opts.Delay,
			Timeouts: guardrails.Timeouts{
				Month:    opts.MonthBudget,
				Fetch:    opts.FetchTimeout,
				Download: opts.DownloadTimeout,
			},
		},
	)

	m := &Module{deps: deps}
	m.ports = Ports{Runner: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "scrape" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
