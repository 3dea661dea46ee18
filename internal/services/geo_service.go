package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang/geo/s2"

	"infinite-experiment/gazetteer/internal/common"
	"infinite-experiment/gazetteer/internal/constants"
	"infinite-experiment/gazetteer/internal/db/repositories"
	"infinite-experiment/gazetteer/internal/metrics"
	"infinite-experiment/gazetteer/internal/models/dtos"
	"infinite-experiment/gazetteer/internal/models/gorm"
)

const (
	earthRadiusKm = 6371.0088

	// nearbyCandidateCap bounds how many bounding-box rows are ranked. Rows
	// come back closest first, so the cap only trims the far edge of a dense
	// box.
	nearbyCandidateCap = 10000
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidParams  = errors.New("invalid parameters")
	ErrPageOutOfRange = repositories.ErrPageOutOfRange
)

// Listing is one page of results before it is shaped for the response.
type Listing[T any] struct {
	Results  []T
	Total    int64
	Page     int
	PageSize int
}

// GeoService serves the read API over countries, states, cities and
// locations, caching single-entity lookups and the country list.
type GeoService struct {
	Countries *repositories.CountryRepository
	States    *repositories.StateRepository
	Cities    *repositories.CityRepository
	Locations *repositories.LocationRepository

	cache    common.CacheInterface
	ttl      time.Duration
	metrics  *metrics.MetricsRegistry
	validate *validator.Validate
}

func NewGeoService(
	countries *repositories.CountryRepository,
	states *repositories.StateRepository,
	cities *repositories.CityRepository,
	locations *repositories.LocationRepository,
	cache common.CacheInterface,
	ttl time.Duration,
	m *metrics.MetricsRegistry,
) *GeoService {
	return &GeoService{
		Countries: countries,
		States:    states,
		Cities:    cities,
		Locations: locations,
		cache:     cache,
		ttl:       ttl,
		metrics:   m,
		validate:  validator.New(),
	}
}

// cached reads key under prefix from the cache or loads it. Errors,
// including ErrNotFound, are never cached.
func cached[T any](svc *GeoService, prefix constants.CachePrefix, key string, load func() (T, error)) (T, error) {
	missed := false
	val, err := common.GetOrSet(svc.cache, string(prefix)+key, svc.ttl, func() (T, error) {
		missed = true
		return load()
	})
	if err == nil && svc.metrics != nil {
		if missed {
			svc.metrics.CacheMissesTotal.WithLabelValues(string(prefix)).Inc()
		} else {
			svc.metrics.CacheHitsTotal.WithLabelValues(string(prefix)).Inc()
		}
	}
	return val, err
}

func found[T any](v *T, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrNotFound
	}
	return v, nil
}

func listing[T any](results []T, total int64, err error, page, pageSize int) (*Listing[T], error) {
	if err != nil {
		return nil, err
	}
	return &Listing[T]{Results: results, Total: total, Page: page, PageSize: pageSize}, nil
}

func (svc *GeoService) GetCountry(ctx context.Context, id uint) (*gorm.Country, error) {
	return cached(svc, constants.CachePrefixCountry, strconv.FormatUint(uint64(id), 10), func() (*gorm.Country, error) {
		return found(svc.Countries.FindByID(ctx, id))
	})
}

// ListCountries is cached per distinct query; the list is small and hot.
func (svc *GeoService) ListCountries(ctx context.Context, filter dtos.CountryFilter) (*Listing[gorm.Country], error) {
	filter.Page, filter.PageSize = repositories.NormalizePage(filter.Page, filter.PageSize)
	key := fmt.Sprintf("%d:%d:%s:%s", filter.Page, filter.PageSize, filter.Search, filter.Ordering)

	return cached(svc, constants.CachePrefixCountries, key, func() (*Listing[gorm.Country], error) {
		results, total, err := svc.Countries.List(ctx, filter)
		return listing(results, total, err, filter.Page, filter.PageSize)
	})
}

func (svc *GeoService) GetState(ctx context.Context, id uint) (*gorm.State, error) {
	return cached(svc, constants.CachePrefixState, strconv.FormatUint(uint64(id), 10), func() (*gorm.State, error) {
		return found(svc.States.FindByID(ctx, id))
	})
}

func (svc *GeoService) ListStates(ctx context.Context, filter dtos.StateFilter) (*Listing[gorm.State], error) {
	filter.Page, filter.PageSize = repositories.NormalizePage(filter.Page, filter.PageSize)
	results, total, err := svc.States.List(ctx, filter)
	return listing(results, total, err, filter.Page, filter.PageSize)
}

func (svc *GeoService) GetCity(ctx context.Context, id uint) (*gorm.City, error) {
	return cached(svc, constants.CachePrefixCity, strconv.FormatUint(uint64(id), 10), func() (*gorm.City, error) {
		return found(svc.Cities.FindByID(ctx, id))
	})
}

func (svc *GeoService) ListCities(ctx context.Context, filter dtos.CityFilter) (*Listing[gorm.City], error) {
	filter.Page, filter.PageSize = repositories.NormalizePage(filter.Page, filter.PageSize)
	results, total, err := svc.Cities.List(ctx, filter)
	return listing(results, total, err, filter.Page, filter.PageSize)
}

func (svc *GeoService) GetLocation(ctx context.Context, id uint) (*dtos.LocationView, error) {
	return cached(svc, constants.CachePrefixLocation, strconv.FormatUint(uint64(id), 10), func() (*dtos.LocationView, error) {
		return found(svc.Locations.FindByID(ctx, id))
	})
}

func (svc *GeoService) ListLocations(ctx context.Context, filter dtos.LocationFilter) (*Listing[dtos.LocationView], error) {
	filter.Page, filter.PageSize = repositories.NormalizePage(filter.Page, filter.PageSize)
	results, total, err := svc.Locations.List(ctx, filter, repositories.LocationOrdering)
	return listing(results, total, err, filter.Page, filter.PageSize)
}

// ListZipCodes is ListLocations with a city-or-id city filter. An integer
// is taken as a city id: the name of the city referenced by a location with
// that id becomes an exact-name filter, and an unknown id yields an empty
// page rather than a literal name match. Anything else is a contains match.
func (svc *GeoService) ListZipCodes(ctx context.Context, filter dtos.LocationFilter) (*Listing[dtos.LocationView], error) {
	filter.Page, filter.PageSize = repositories.NormalizePage(filter.Page, filter.PageSize)

	if filter.City != "" {
		if cityID, err := strconv.ParseUint(filter.City, 10, 64); err == nil {
			name, ok, err := svc.Locations.CityNameByLocationCityID(ctx, uint(cityID))
			if err != nil {
				return nil, err
			}
			if !ok {
				return &Listing[dtos.LocationView]{Results: []dtos.LocationView{}, Page: filter.Page, PageSize: filter.PageSize}, nil
			}
			filter.City, filter.CityExact = "", name
		}
	}

	results, total, err := svc.Locations.List(ctx, filter, repositories.ZipCodeOrdering)
	return listing(results, total, err, filter.Page, filter.PageSize)
}

// Nearby returns located rows within RadiusKm of the point, closest first.
// A bounding box narrows candidates in SQL; exact distances are computed on
// the sphere.
func (svc *GeoService) Nearby(ctx context.Context, params dtos.NearbyParams) (*dtos.NearbyResponse, error) {
	if err := svc.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}

	box := boundingBox(params.Latitude, params.Longitude, params.RadiusKm)
	candidates, err := svc.Locations.WithinBox(ctx, box, params.Latitude, params.Longitude, nearbyCandidateCap)
	if err != nil {
		return nil, err
	}

	center := s2.LatLngFromDegrees(params.Latitude, params.Longitude)
	results := make([]dtos.NearbyLocation, 0, len(candidates))
	for _, c := range candidates {
		ll := s2.LatLngFromDegrees(*c.Latitude, *c.Longitude)
		dist := center.Distance(ll).Radians() * earthRadiusKm
		if dist > params.RadiusKm {
			continue
		}
		results = append(results, dtos.NearbyLocation{LocationView: c, DistanceKm: math.Round(dist*1000) / 1000})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].DistanceKm != results[j].DistanceKm {
			return results[i].DistanceKm < results[j].DistanceKm
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > params.Limit {
		results = results[:params.Limit]
	}

	return &dtos.NearbyResponse{
		Latitude:  params.Latitude,
		Longitude: params.Longitude,
		RadiusKm:  params.RadiusKm,
		Results:   results,
	}, nil
}

// boundingBox returns a lat/lon rectangle containing every point within
// radiusKm of (lat, lon). Near the poles it widens to all longitudes.
func boundingBox(lat, lon, radiusKm float64) repositories.Box {
	dLat := radiusKm / earthRadiusKm * 180 / math.Pi
	box := repositories.Box{
		MinLat: math.Max(-90, lat-dLat),
		MaxLat: math.Min(90, lat+dLat),
		MinLon: -180,
		MaxLon: 180,
	}

	cosLat := math.Cos(lat * math.Pi / 180)
	if box.MinLat == -90 || box.MaxLat == 90 || cosLat < 1e-9 {
		return box
	}
	// widest longitude offset of the circle, reached poleward of the center
	ratio := math.Sin(radiusKm/earthRadiusKm) / cosLat
	if ratio >= 1 {
		return box
	}
	dLon := math.Asin(ratio) * 180 / math.Pi

	box.MinLon, box.MaxLon = lon-dLon, lon+dLon
	if box.MinLon < -180 {
		box.MinLon += 360
	}
	if box.MaxLon > 180 {
		box.MaxLon -= 360
	}
	return box
}

// FlushCache drops every cached lookup. Called after an import.
func (svc *GeoService) FlushCache() {
	svc.cache.DeletePrefix(string(constants.CachePrefixRoot))
}
