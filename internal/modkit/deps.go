// Package modkit provides module wiring and core deps
package modkit

import (
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/config"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/logger"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
}

// ZeroOK returns true when deps are safe to use with zero values in tests
func (d Deps) ZeroOK() bool { return true }
