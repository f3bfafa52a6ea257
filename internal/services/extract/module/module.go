// Package module wires the extract service behind its public port
package module

import (
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/adapters/ocds"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/core/catalog"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/modkit"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/services/extract/domain"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/services/extract/repo"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/services/extract/service"
)

// Ports defines the extract module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the extract module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the extract module. It wires the OCDS release client
// and the xlsx day writer into the service using config from deps.Cfg
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	cat, err := catalog.Load()
	if err != nil {
		panic(err)
	}

	svc := service.New(
		cat,
		ocds.NewClient(ocds.Options{
			Timeout:    opts.FetchTimeout,
			MaxRetries: opts.MaxRetries,
			RetryDelay: opts.RetryDelay,
		}),
		repo.XLSXWriter{},
		service.Config{
			RawRoot:     opts.RawRoot,
			ExtractRoot: opts.ExtractRoot,
			Start:       opts.Start,
			End:         opts.End,
			FetchDelay:  opts.FetchDelay,
			Datasets:    opts.Datasets,
		},
	)

	m := &Module{deps: deps}
	m.ports = Ports{Runner: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "extract" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
