package api

import (
	"time"

	"gorm.io/gorm"

	"infinite-experiment/gazetteer/internal/common"
	"infinite-experiment/gazetteer/internal/config"
	"infinite-experiment/gazetteer/internal/db/repositories"
	"infinite-experiment/gazetteer/internal/importer"
	"infinite-experiment/gazetteer/internal/metrics"
	"infinite-experiment/gazetteer/internal/services"
)

type Repositories struct {
	Country  *repositories.CountryRepository
	State    *repositories.StateRepository
	City     *repositories.CityRepository
	Location *repositories.LocationRepository
}

type Services struct {
	Cache  common.CacheInterface
	Geo    *services.GeoService
	Import *services.ImportService
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	Metrics  *metrics.MetricsRegistry
}

// InitDependencies wires repositories and services over the destination
// database. cache may be nil, in which case an in-memory cache is used.
func InitDependencies(gdb *gorm.DB, cfg *config.Configuration, cache common.CacheInterface, metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {
	repos := &Repositories{
		Country:  repositories.NewCountryRepository(gdb),
		State:    repositories.NewStateRepository(gdb),
		City:     repositories.NewCityRepository(gdb),
		Location: repositories.NewLocationRepository(gdb),
	}

	if cache == nil {
		cache = common.NewCacheService(cfg.Cache.TTLSeconds, cfg.Cache.TTLSeconds*2)
	}
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second

	geoSvc := services.NewGeoService(repos.Country, repos.State, repos.City, repos.Location, cache, ttl, metricsReg)
	imp := importer.New(gdb, importer.WithMetrics(metricsReg))

	return &Dependencies{
		Repo: repos,
		Services: &Services{
			Cache:  cache,
			Geo:    geoSvc,
			Import: services.NewImportService(imp, cfg.SourceDBPath, geoSvc),
		},
		Metrics: metricsReg,
	}, nil
}
