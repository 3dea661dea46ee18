package repositories

import (
	"context"
	"errors"

	gormlib "gorm.io/gorm"

	"infinite-experiment/gazetteer/internal/models/dtos"
	"infinite-experiment/gazetteer/internal/models/gorm"
)

var stateOrdering = Ordering{
	"name":         "states.name",
	"abbreviation": "states.abbreviation",
}

// StateRepository handles state table reads
type StateRepository struct {
	db *gormlib.DB
}

// NewStateRepository creates a new state repository
func NewStateRepository(db *gormlib.DB) *StateRepository {
	return &StateRepository{db: db}
}

// FindByID returns nil, nil when no state has the id
func (r *StateRepository) FindByID(ctx context.Context, id uint) (*gorm.State, error) {
	var state gorm.State

	err := r.db.WithContext(ctx).First(&state, id).Error
	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &state, nil
}

// List filters by country id and searches name, abbreviation and the
// country's name
func (r *StateRepository) List(ctx context.Context, filter dtos.StateFilter) ([]gorm.State, int64, error) {
	build := func() *gormlib.DB {
		q := r.db.WithContext(ctx).
			Model(&gorm.State{}).
			Joins("JOIN countries ON countries.id = states.country_id")
		if filter.CountryID != 0 {
			q = q.Where("states.country_id = ?", filter.CountryID)
		}
		if filter.Search != "" {
			expr, args := anyLike(filter.Search, "states.name", "states.abbreviation", "countries.name")
			q = q.Where(expr, args...)
		}
		return q
	}
	list := func(q *gormlib.DB) *gormlib.DB {
		return q.Select("states.*").Order(stateOrdering.Clause(filter.Ordering, "name", "states.id"))
	}

	return paginate[gorm.State](build, list, filter.Page, filter.PageSize)
}
