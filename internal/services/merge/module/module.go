// Package module wires the merge service behind its public port
package module

import (
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/adapters/tabular"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/core/catalog"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/modkit"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/services/merge/domain"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/services/merge/repo"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/services/merge/service"
)

// Ports defines the merge module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the merge module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the merge module
// It wires the filesystem locator, the tabular opener, and the CSV sink
// into the service using config from deps.Cfg
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	cat, err := catalog.Load()
	if err != nil {
		panic(err)
	}

	svc := service.New(
		cat,
		service.FSLocator{},
		tabularOpener{},
		repo.CSVFactory{FlushEvery: opts.FlushEvery},
		service.Config{
			ExtractRoot: opts.ExtractRoot,
			MergedRoot:  opts.MergedRoot,
			Strict:      opts.Strict,
		},
	)

	m := &Module{deps: deps}
	m.ports = Ports{Runner: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "merge" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// tabularOpener binds the tabular adapter to the service's opener port
type tabularOpener struct{}

func (tabularOpener) Open(path string) (domain.Table, error) {
	t, err := tabular.Open(path)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (tabularOpener) Header(path string) ([]string, error) {
	return tabular.Header(path)
}
