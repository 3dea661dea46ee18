package repositories

import (
	"context"
	"errors"
	"strings"

	gormlib "gorm.io/gorm"

	"infinite-experiment/gazetteer/internal/models/dtos"
	"infinite-experiment/gazetteer/internal/models/gorm"
)

var cityOrdering = Ordering{
	"name": "cities.name",
}

// CityRepository handles city table reads
type CityRepository struct {
	db *gormlib.DB
}

// NewCityRepository creates a new city repository
func NewCityRepository(db *gormlib.DB) *CityRepository {
	return &CityRepository{db: db}
}

// FindByID returns nil, nil when no city has the id
func (r *CityRepository) FindByID(ctx context.Context, id uint) (*gorm.City, error) {
	var city gorm.City

	err := r.db.WithContext(ctx).First(&city, id).Error
	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &city, nil
}

// cityRank scores a city name against whitespace-separated search terms:
// 3 if it equals any term, 2 if it starts with one, 1 if it contains one,
// 0 otherwise. Matching is case-insensitive.
func cityRank(search string) (string, []any, bool) {
	terms := strings.Fields(search)
	if len(terms) == 0 {
		return "", nil, false
	}

	var exact, prefix, contains []string
	var exactArgs, prefixArgs, containsArgs []any
	for _, term := range terms {
		exact = append(exact, "LOWER(cities.name) = ?")
		exactArgs = append(exactArgs, strings.ToLower(term))

		prefix = append(prefix, likeExpr("cities.name"))
		prefixArgs = append(prefixArgs, likePrefix(term))

		contains = append(contains, likeExpr("cities.name"))
		containsArgs = append(containsArgs, likeContains(term))
	}

	expr := "CASE" +
		" WHEN " + strings.Join(exact, " OR ") + " THEN 3" +
		" WHEN " + strings.Join(prefix, " OR ") + " THEN 2" +
		" WHEN " + strings.Join(contains, " OR ") + " THEN 1" +
		" ELSE 0 END"

	args := make([]any, 0, len(exactArgs)*3)
	args = append(args, exactArgs...)
	args = append(args, prefixArgs...)
	args = append(args, containsArgs...)
	return expr, args, true
}

// List filters by state and country. With a search, non-matching cities
// are excluded and results are ordered by rank, then name.
func (r *CityRepository) List(ctx context.Context, filter dtos.CityFilter) ([]gorm.City, int64, error) {
	rank, rankArgs, ranked := cityRank(filter.Search)

	build := func() *gormlib.DB {
		q := r.db.WithContext(ctx).Model(&gorm.City{})
		if filter.StateID != 0 {
			q = q.Where("cities.state_id = ?", filter.StateID)
		}
		if filter.CountryID != 0 {
			q = q.Joins("JOIN states ON states.id = cities.state_id").
				Where("states.country_id = ?", filter.CountryID)
		}
		if ranked {
			q = q.Where("("+rank+") > 0", rankArgs...)
		}
		return q
	}
	list := func(q *gormlib.DB) *gormlib.DB {
		if ranked {
			return q.Select("cities.*, ("+rank+") AS match_rank", rankArgs...).
				Order("match_rank DESC, cities.name ASC, cities.id ASC")
		}
		return q.Select("cities.*").Order(cityOrdering.Clause(filter.Ordering, "name", "cities.id"))
	}

	return paginate[gorm.City](build, list, filter.Page, filter.PageSize)
}
