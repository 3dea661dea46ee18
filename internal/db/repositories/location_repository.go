package repositories

import (
	"context"
	"math"

	gormlib "gorm.io/gorm"
	"gorm.io/gorm/clause"

	"infinite-experiment/gazetteer/internal/constants"
	"infinite-experiment/gazetteer/internal/models/dtos"
	"infinite-experiment/gazetteer/internal/models/gorm"
)

const locationViewColumns = `
	locations.id, locations.zip_code, locations.latitude, locations.longitude,
	locations.city_id, locations.state_id, locations.country_id,
	cities.name AS city_name, states.name AS state_name, countries.name AS country_name`

// LocationOrdering is accepted by the locations list.
var LocationOrdering = Ordering{
	"zip_code": "locations.zip_code",
	"city":     "cities.name",
	"state":    "states.name",
}

// ZipCodeOrdering is accepted by the zipcodes list.
var ZipCodeOrdering = Ordering{
	"zip_code": "locations.zip_code",
	"city":     "cities.name",
}

// Box is a latitude/longitude rectangle. When MinLon > MaxLon the box
// crosses the antimeridian.
type Box struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// LocationRepository handles location table reads
type LocationRepository struct {
	db *gormlib.DB
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *gormlib.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) joined(ctx context.Context) *gormlib.DB {
	return r.db.WithContext(ctx).
		Model(&gorm.Location{}).
		Joins("JOIN cities ON cities.id = locations.city_id").
		Joins("JOIN states ON states.id = locations.state_id").
		Joins("JOIN countries ON countries.id = locations.country_id")
}

// FindByID returns nil, nil when no location has the id
func (r *LocationRepository) FindByID(ctx context.Context, id uint) (*dtos.LocationView, error) {
	var views []dtos.LocationView

	err := r.joined(ctx).
		Select(locationViewColumns).
		Where("locations.id = ?", id).
		Limit(1).
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, nil
	}

	return &views[0], nil
}

// List applies the name filters and search, ordered by the given ordering
func (r *LocationRepository) List(ctx context.Context, filter dtos.LocationFilter, ordering Ordering) ([]dtos.LocationView, int64, error) {
	build := func() *gormlib.DB {
		q := r.joined(ctx)
		if filter.CityExact != "" {
			q = q.Where("cities.name = ?", filter.CityExact)
		} else if filter.City != "" {
			q = q.Where(likeExpr("cities.name"), likeContains(filter.City))
		}
		if filter.State != "" {
			q = q.Where(likeExpr("states.name"), likeContains(filter.State))
		}
		if filter.Country != "" {
			q = q.Where(likeExpr("countries.name"), likeContains(filter.Country))
		}
		if filter.ZipCode != "" {
			q = q.Where(likeExpr("locations.zip_code"), likeContains(filter.ZipCode))
		}
		if filter.Search != "" {
			expr, args := anyLike(filter.Search, "locations.zip_code", "cities.name", "states.name", "countries.name")
			q = q.Where(expr, args...)
		}
		return q
	}
	list := func(q *gormlib.DB) *gormlib.DB {
		return q.Select(locationViewColumns).Order(ordering.Clause(filter.Ordering, "zip_code", "locations.id"))
	}

	return paginate[dtos.LocationView](build, list, filter.Page, filter.PageSize)
}

// CityNameByLocationCityID returns the name of the city referenced by any
// location with the given city id, and false if no location references it.
func (r *LocationRepository) CityNameByLocationCityID(ctx context.Context, cityID uint) (string, bool, error) {
	var names []string

	err := r.db.WithContext(ctx).Raw(constants.SelectCityNameByLocationCityID, cityID).Scan(&names).Error
	if err != nil {
		return "", false, err
	}
	if len(names) == 0 {
		return "", false, nil
	}

	return names[0], true, nil
}

// WithinBox returns located rows inside box, at most limit of them, nearest
// to (lat, lon) first by a planar approximation. Callers compute exact
// distances themselves.
func (r *LocationRepository) WithinBox(ctx context.Context, box Box, lat, lon float64, limit int) ([]dtos.LocationView, error) {
	q := r.joined(ctx).
		Select(locationViewColumns).
		Where("locations.latitude IS NOT NULL AND locations.longitude IS NOT NULL").
		Where("locations.latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat)

	if box.MinLon <= box.MaxLon {
		q = q.Where("locations.longitude BETWEEN ? AND ?", box.MinLon, box.MaxLon)
	} else {
		q = q.Where("(locations.longitude >= ? OR locations.longitude <= ?)", box.MinLon, box.MaxLon)
	}

	views := make([]dtos.LocationView, 0)
	if err := q.Order(planarDistance(lat, lon)).Limit(limit).Scan(&views).Error; err != nil {
		return nil, err
	}
	return views, nil
}

// planarDistance orders by squared equirectangular distance from (lat, lon),
// with the longitude difference wrapped across the antimeridian. The id
// tiebreak lives in the same expression because gorm drops an OrderBy
// expression once plain columns are merged into it.
func planarDistance(lat, lon float64) clause.OrderBy {
	const dLon = "CASE WHEN ABS(locations.longitude - ?) > 180 THEN 360 - ABS(locations.longitude - ?) ELSE ABS(locations.longitude - ?) END"
	k := math.Cos(lat * math.Pi / 180)
	return clause.OrderBy{Expression: clause.Expr{
		SQL:                "(locations.latitude - ?) * (locations.latitude - ?) + (" + dLon + ") * (" + dLon + ") * ?, locations.id ASC",
		Vars:               []any{lat, lat, lon, lon, lon, lon, lon, lon, k * k},
		WithoutParentheses: true,
	}}
}
