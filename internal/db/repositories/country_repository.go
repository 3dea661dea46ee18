package repositories

import (
	"context"
	"errors"

	gormlib "gorm.io/gorm"

	"infinite-experiment/gazetteer/internal/models/dtos"
	"infinite-experiment/gazetteer/internal/models/gorm"
)

var countryOrdering = Ordering{
	"name":   "countries.name",
	"alpha2": "countries.alpha2",
	"alpha3": "countries.alpha3",
}

// CountryRepository handles country table reads
type CountryRepository struct {
	db *gormlib.DB
}

// NewCountryRepository creates a new country repository
func NewCountryRepository(db *gormlib.DB) *CountryRepository {
	return &CountryRepository{db: db}
}

// FindByID returns nil, nil when no country has the id
func (r *CountryRepository) FindByID(ctx context.Context, id uint) (*gorm.Country, error) {
	var country gorm.Country

	err := r.db.WithContext(ctx).First(&country, id).Error
	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &country, nil
}

// List searches name, alpha2 and alpha3
func (r *CountryRepository) List(ctx context.Context, filter dtos.CountryFilter) ([]gorm.Country, int64, error) {
	build := func() *gormlib.DB {
		q := r.db.WithContext(ctx).Model(&gorm.Country{})
		if filter.Search != "" {
			expr, args := anyLike(filter.Search, "countries.name", "countries.alpha2", "countries.alpha3")
			q = q.Where(expr, args...)
		}
		return q
	}
	list := func(q *gormlib.DB) *gormlib.DB {
		return q.Order(countryOrdering.Clause(filter.Ordering, "name", "countries.id"))
	}

	return paginate[gorm.Country](build, list, filter.Page, filter.PageSize)
}

// Count returns total number of countries
func (r *CountryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&gorm.Country{}).Count(&count).Error
	return count, err
}
