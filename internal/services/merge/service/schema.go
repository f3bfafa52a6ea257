package service

import (
	"context"

	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/logger"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/services/merge/domain"
)

// reconcile performs the header-only pass over every located file and
// builds the unified schema: the first readable file's columns in their
// original order, then columns new to later files in order of first
// appearance. A file whose header cannot be read is excluded from the
// union and recorded; the row pass still attempts it later
func (s *Service) reconcile(ctx context.Context, files []domain.ExtractFile, sum *domain.RunSummary) domain.Schema {
	var cols []string
	seen := make(map[string]struct{}, 64)

	for _, f := range files {
		hdr, err := s.Opener.Header(f.Path)
		if err != nil {
			sum.Anomalies.SchemaReadFailures++
			sum.Anomalies.Record(f.Base, "header unreadable: "+err.Error())
			logger.C(ctx).Warn().
				Str("file", f.Base).
				Err(err).
				Msg("merge: header read failed, file excluded from schema")
			continue
		}
		for _, c := range hdr {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			cols = append(cols, c)
		}
	}
	return domain.NewSchema(cols)
}
