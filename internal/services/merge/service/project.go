package service

import (
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/services/merge/domain"
)

// projection maps one file's header positions onto schema positions
type projection struct {
	schema  domain.Schema
	target  []int    // file column i -> schema index, -1 = dropped
	dropped []string // file columns the schema does not know
}

// buildProjection resolves a file header against the unified schema.
// Dropped columns can only appear for files that were excluded from the
// schema pass, since the schema is otherwise a full union
func buildProjection(schema domain.Schema, header []string) projection {
	p := projection{schema: schema, target: make([]int, len(header))}
	for i, name := range header {
		if idx, ok := schema.Index(name); ok {
			p.target[i] = idx
		} else {
			p.target[i] = -1
			p.dropped = append(p.dropped, name)
		}
	}
	return p
}

// apply returns row projected onto the schema: schema order, values
// copied verbatim, columns absent from the file as explicit empty
// strings. Pure; no IO
func (p projection) apply(row []string) []string {
	out := make([]string, p.schema.Len())
	for i, v := range row {
		if i >= len(p.target) {
			break
		}
		if t := p.target[i]; t >= 0 {
			out[t] = v
		}
	}
	return out
}
