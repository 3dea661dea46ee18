package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/geo/s2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlib "gorm.io/gorm"

	"infinite-experiment/gazetteer/internal/common"
	"infinite-experiment/gazetteer/internal/db/dbtest"
	"infinite-experiment/gazetteer/internal/db/repositories"
	"infinite-experiment/gazetteer/internal/importer"
	"infinite-experiment/gazetteer/internal/metrics"
	"infinite-experiment/gazetteer/internal/models/dtos"
	gormModels "infinite-experiment/gazetteer/internal/models/gorm"
	"infinite-experiment/gazetteer/internal/source/sourcetest"
)

// setupGeoService loads the basic fixture through the importer.
func setupGeoService(t *testing.T) (*GeoService, *gormlib.DB) {
	t.Helper()
	db := dbtest.Open(t)

	_, err := importer.New(db).Run(context.Background(), sourcetest.Write(t, sourcetest.Basic()))
	require.NoError(t, err)

	svc := NewGeoService(
		repositories.NewCountryRepository(db),
		repositories.NewStateRepository(db),
		repositories.NewCityRepository(db),
		repositories.NewLocationRepository(db),
		common.NewCacheService(60, 120),
		time.Minute,
		metrics.NewMetricsRegistry(prometheus.NewRegistry()),
	)
	return svc, db
}

func cityID(t *testing.T, db *gormlib.DB, name string) uint {
	t.Helper()
	var id uint
	require.NoError(t, db.Raw("SELECT id FROM cities WHERE name = ?", name).Scan(&id).Error)
	return id
}

func TestListZipCodesByCityID(t *testing.T) {
	svc, db := setupGeoService(t)
	ctx := context.Background()

	page, err := svc.ListZipCodes(ctx, dtos.LocationFilter{City: "10000"})
	require.NoError(t, err)
	assert.Empty(t, page.Results, "unknown id must not fall back to a name match")
	assert.Zero(t, page.Total)

	id := cityID(t, db, "Springfield")
	page, err = svc.ListZipCodes(ctx, dtos.LocationFilter{City: uintString(id)})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	for _, v := range page.Results {
		assert.Equal(t, "Springfield", v.CityName)
	}

	page, err = svc.ListZipCodes(ctx, dtos.LocationFilter{City: "CHIC"})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "60601", page.Results[0].ZipCode)
	assert.Equal(t, 100, page.PageSize)
}

func uintString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func TestGetCountryCachesAndNotFound(t *testing.T) {
	svc, db := setupGeoService(t)
	ctx := context.Background()

	var id uint
	require.NoError(t, db.Raw("SELECT id FROM countries LIMIT 1").Scan(&id).Error)

	country, err := svc.GetCountry(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "United States", country.Name)

	// served from cache until flushed
	require.NoError(t, db.Exec("UPDATE countries SET name = 'Renamed'").Error)
	country, err = svc.GetCountry(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "United States", country.Name)

	svc.FlushCache()
	country, err = svc.GetCountry(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", country.Name)

	_, err = svc.GetCountry(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNearby(t *testing.T) {
	svc, _ := setupGeoService(t)
	ctx := context.Background()

	resp, err := svc.Nearby(ctx, dtos.NearbyParams{Latitude: 39.80, Longitude: -89.64, RadiusKm: 10, Limit: 10})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "62701", resp.Results[0].ZipCode)
	assert.Zero(t, resp.Results[0].DistanceKm)
	assert.Equal(t, "62702", resp.Results[1].ZipCode)
	assert.InDelta(t, 2.4, resp.Results[1].DistanceKm, 0.3)

	resp, err = svc.Nearby(ctx, dtos.NearbyParams{Latitude: 39.80, Longitude: -89.64, RadiusKm: 300, Limit: 1})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)

	_, err = svc.Nearby(ctx, dtos.NearbyParams{Latitude: 95, Longitude: 0, RadiusKm: 10, Limit: 10})
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestBoundingBoxWrapsAntimeridian(t *testing.T) {
	box := boundingBox(0, 179.9, 50)
	assert.Greater(t, box.MinLon, box.MaxLon)

	polar := boundingBox(89.99, 10, 50)
	assert.Equal(t, -180.0, polar.MinLon)
	assert.Equal(t, 180.0, polar.MaxLon)
}

func TestBoundingBoxCoversCircleAtHighLatitude(t *testing.T) {
	const lat, lon, radius = 80.0, 0.0, 500.0
	box := boundingBox(lat, lon, radius)
	center := s2.LatLngFromDegrees(lat, lon)

	// the circle's widest point sits poleward of the center latitude
	edge := s2.LatLngFromDegrees(79.85, -25.90)
	require.LessOrEqual(t, center.Distance(edge).Radians()*earthRadiusKm, radius)
	assert.LessOrEqual(t, box.MinLon, -25.90)

	missed := 0
	for la := box.MinLat; la <= box.MaxLat; la += 0.05 {
		for lo := -60.0; lo <= 60.0; lo += 0.05 {
			if center.Distance(s2.LatLngFromDegrees(la, lo)).Radians()*earthRadiusKm > radius {
				continue
			}
			if lo < box.MinLon || lo > box.MaxLon {
				missed++
			}
		}
	}
	assert.Zero(t, missed)
}

func TestNearbyFindsEdgePointAtHighLatitude(t *testing.T) {
	svc, db := setupGeoService(t)

	var state gormModels.State
	require.NoError(t, db.First(&state).Error)
	city := gormModels.City{Name: "Longyearbyen", StateID: state.ID}
	require.NoError(t, db.Create(&city).Error)
	lat, lon := 79.85, -25.90
	require.NoError(t, db.Create(&gormModels.Location{
		ZipCode: "9170", CityID: city.ID, StateID: state.ID, CountryID: state.CountryID,
		Latitude: &lat, Longitude: &lon,
	}).Error)

	resp, err := svc.Nearby(context.Background(), dtos.NearbyParams{Latitude: 80, Longitude: 0, RadiusKm: 500, Limit: 10})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "9170", resp.Results[0].ZipCode)
	assert.InDelta(t, 500, resp.Results[0].DistanceKm, 1)
}

type fakeRunner struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (f *fakeRunner) Run(ctx context.Context, path string) (*importer.ImportResult, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &importer.ImportResult{RunID: uuid.New(), Locations: 3}, nil
}

func TestImportServiceSharesConcurrentRuns(t *testing.T) {
	runner := &fakeRunner{release: make(chan struct{})}
	svc := NewImportService(runner, "allcountries.sqlite3", nil)

	var wg sync.WaitGroup
	results := make([]*importer.ImportResult, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, _, err := svc.Import(context.Background())
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}

	// let both callers reach the group before the run finishes
	time.Sleep(50 * time.Millisecond)
	close(runner.release)
	wg.Wait()

	assert.EqualValues(t, 1, runner.calls.Load())
	assert.Equal(t, results[0].RunID, results[1].RunID)
}

func TestImportServiceReturnsRunnerError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewImportService(&fakeRunner{err: boom}, "x", nil)

	_, _, err := svc.Import(context.Background())
	assert.ErrorIs(t, err, boom)
}
