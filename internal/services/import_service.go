package services

import (
	"context"

	"golang.org/x/sync/singleflight"

	"infinite-experiment/gazetteer/internal/importer"
	"infinite-experiment/gazetteer/internal/logging"
)

// Runner is the part of *importer.Importer the service needs.
type Runner interface {
	Run(ctx context.Context, path string) (*importer.ImportResult, error)
}

// ImportService triggers imports from the admin API. Concurrent triggers
// share one run and its result.
type ImportService struct {
	runner     Runner
	sourcePath string
	geo        *GeoService
	group      singleflight.Group
}

func NewImportService(runner Runner, sourcePath string, geo *GeoService) *ImportService {
	return &ImportService{runner: runner, sourcePath: sourcePath, geo: geo}
}

// Import runs the configured source through the importer. The run is
// detached from ctx so a disconnecting client cannot abort it halfway;
// the returned shared flag reports whether another caller started it.
func (svc *ImportService) Import(ctx context.Context) (*importer.ImportResult, bool, error) {
	v, err, shared := svc.group.Do(svc.sourcePath, func() (interface{}, error) {
		result, err := svc.runner.Run(context.WithoutCancel(ctx), svc.sourcePath)
		if err != nil {
			return nil, err
		}
		if svc.geo != nil {
			svc.geo.FlushCache()
		}
		logging.Info("Admin import finished", "run_id", result.RunID.String(), "locations", result.Locations)
		return result, nil
	})
	if err != nil {
		return nil, shared, err
	}
	return v.(*importer.ImportResult), shared, nil
}
