package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlib "gorm.io/gorm"

	"infinite-experiment/gazetteer/internal/db/dbtest"
	"infinite-experiment/gazetteer/internal/models/dtos"
	"infinite-experiment/gazetteer/internal/models/gorm"
)

type seeded struct {
	us, ca            gorm.Country
	illinois, ontario gorm.State
	cities            map[string]gorm.City
}

func ptr(v float64) *float64 { return &v }

func seed(t *testing.T, db *gormlib.DB) seeded {
	t.Helper()
	s := seeded{cities: map[string]gorm.City{}}

	s.us = gorm.Country{Name: "United States", Alpha2: "US", Alpha3: "USA"}
	s.ca = gorm.Country{Name: "Canada", Alpha2: "CA", Alpha3: "CAN"}
	require.NoError(t, db.Create(&s.us).Error)
	require.NoError(t, db.Create(&s.ca).Error)

	s.illinois = gorm.State{Name: "Illinois", Abbreviation: "IL", CountryID: s.us.ID}
	s.ontario = gorm.State{Name: "Ontario", Abbreviation: "ON", CountryID: s.ca.ID}
	require.NoError(t, db.Create(&s.illinois).Error)
	require.NoError(t, db.Create(&s.ontario).Error)

	for _, c := range []struct {
		name  string
		state gorm.State
	}{
		{"West Springfield", s.illinois},
		{"Springfield Gardens", s.illinois},
		{"Springfield", s.illinois},
		{"Chicago", s.illinois},
		{"Toronto", s.ontario},
	} {
		city := gorm.City{Name: c.name, StateID: c.state.ID}
		require.NoError(t, db.Create(&city).Error)
		s.cities[c.name] = city
	}

	locations := []gorm.Location{
		{ZipCode: "62701", CityID: s.cities["Springfield"].ID, StateID: s.illinois.ID, CountryID: s.us.ID, Latitude: ptr(39.80), Longitude: ptr(-89.64)},
		{ZipCode: "62702", CityID: s.cities["Springfield"].ID, StateID: s.illinois.ID, CountryID: s.us.ID, Latitude: ptr(39.82), Longitude: ptr(-89.65)},
		{ZipCode: "60601", CityID: s.cities["Chicago"].ID, StateID: s.illinois.ID, CountryID: s.us.ID, Latitude: ptr(41.88), Longitude: ptr(-87.62)},
		{ZipCode: "M5H", CityID: s.cities["Toronto"].ID, StateID: s.ontario.ID, CountryID: s.ca.ID},
	}
	require.NoError(t, db.Create(&locations).Error)
	return s
}

func names(cities []gorm.City) []string {
	out := make([]string, len(cities))
	for i, c := range cities {
		out[i] = c.Name
	}
	return out
}

func TestCitySearchRanksExactThenPrefixThenContains(t *testing.T) {
	db := dbtest.Open(t)
	seed(t, db)
	repo := NewCityRepository(db)

	cities, total, err := repo.List(context.Background(), dtos.CityFilter{
		ListParams: dtos.ListParams{Search: "SPRINGFIELD"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, []string{"Springfield", "Springfield Gardens", "West Springfield"}, names(cities))
}

func TestCitySearchMultipleTermsOr(t *testing.T) {
	db := dbtest.Open(t)
	seed(t, db)
	repo := NewCityRepository(db)

	cities, _, err := repo.List(context.Background(), dtos.CityFilter{
		ListParams: dtos.ListParams{Search: "toronto gardens"},
	})
	require.NoError(t, err)
	// exact beats contains
	assert.Equal(t, []string{"Toronto", "Springfield Gardens"}, names(cities))
}

func TestCityFilters(t *testing.T) {
	db := dbtest.Open(t)
	s := seed(t, db)
	repo := NewCityRepository(db)
	ctx := context.Background()

	cities, total, err := repo.List(ctx, dtos.CityFilter{CountryID: s.ca.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, []string{"Toronto"}, names(cities))

	cities, _, err = repo.List(ctx, dtos.CityFilter{StateID: s.illinois.ID, ListParams: dtos.ListParams{Ordering: "-name"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"West Springfield", "Springfield Gardens", "Springfield", "Chicago"}, names(cities))
}

func TestCountrySearchAndOrdering(t *testing.T) {
	db := dbtest.Open(t)
	seed(t, db)
	repo := NewCountryRepository(db)
	ctx := context.Background()

	countries, total, err := repo.List(ctx, dtos.CountryFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "Canada", countries[0].Name)

	countries, _, err = repo.List(ctx, dtos.CountryFilter{ListParams: dtos.ListParams{Search: "usa"}})
	require.NoError(t, err)
	require.Len(t, countries, 1)
	assert.Equal(t, "United States", countries[0].Name)

	countries, _, err = repo.List(ctx, dtos.CountryFilter{ListParams: dtos.ListParams{Ordering: "-alpha2"}})
	require.NoError(t, err)
	assert.Equal(t, "US", countries[0].Alpha2)
}

func TestCountryFindByIDMissing(t *testing.T) {
	db := dbtest.Open(t)
	country, err := NewCountryRepository(db).FindByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, country)
}

func TestStateSearchIncludesCountryName(t *testing.T) {
	db := dbtest.Open(t)
	s := seed(t, db)
	repo := NewStateRepository(db)

	states, _, err := repo.List(context.Background(), dtos.StateFilter{ListParams: dtos.ListParams{Search: "canada"}})
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, s.ontario.ID, states[0].ID)

	states, _, err = repo.List(context.Background(), dtos.StateFilter{CountryID: s.us.ID})
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, "IL", states[0].Abbreviation)
}

func TestPaginationOutOfRangeAndClamp(t *testing.T) {
	db := dbtest.Open(t)
	seed(t, db)
	repo := NewLocationRepository(db)
	ctx := context.Background()

	page, size := NormalizePage(0, 5000)
	assert.Equal(t, 1, page)
	assert.Equal(t, 1000, size)

	views, total, err := repo.List(ctx, dtos.LocationFilter{ListParams: dtos.ListParams{Page: 2, PageSize: 3}}, LocationOrdering)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, views, 1)
	assert.Equal(t, "M5H", views[0].ZipCode)

	_, _, err = repo.List(ctx, dtos.LocationFilter{ListParams: dtos.ListParams{Page: 3, PageSize: 3}}, LocationOrdering)
	assert.ErrorIs(t, err, ErrPageOutOfRange)

	views, total, err = repo.List(ctx, dtos.LocationFilter{ListParams: dtos.ListParams{Page: 1, PageSize: 3}, Country: "atlantis"}, LocationOrdering)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, views)
}

func TestLocationFiltersAndNames(t *testing.T) {
	db := dbtest.Open(t)
	seed(t, db)
	repo := NewLocationRepository(db)
	ctx := context.Background()

	views, total, err := repo.List(ctx, dtos.LocationFilter{
		ListParams: dtos.ListParams{Page: 1, PageSize: 10, Ordering: "-zip_code"},
		City:       "spring",
		State:      "illi",
	}, LocationOrdering)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, views, 2)
	assert.Equal(t, "62702", views[0].ZipCode)
	assert.Equal(t, "Springfield", views[0].CityName)
	assert.Equal(t, "Illinois", views[0].StateName)
	assert.Equal(t, "United States", views[0].CountryName)

	views, _, err = repo.List(ctx, dtos.LocationFilter{
		ListParams: dtos.ListParams{Page: 1, PageSize: 10},
		CityExact:  "Springfield Gardens",
	}, ZipCodeOrdering)
	require.NoError(t, err)
	assert.Empty(t, views)

	views, _, err = repo.List(ctx, dtos.LocationFilter{ListParams: dtos.ListParams{Page: 1, PageSize: 10, Search: "ontario"}}, LocationOrdering)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "M5H", views[0].ZipCode)
	assert.Nil(t, views[0].Latitude)
}

func TestCityNameByLocationCityID(t *testing.T) {
	db := dbtest.Open(t)
	s := seed(t, db)
	repo := NewLocationRepository(db)
	ctx := context.Background()

	name, ok, err := repo.CityNameByLocationCityID(ctx, s.cities["Chicago"].ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Chicago", name)

	// a city with no locations is not found even though the city exists
	_, ok, err = repo.CityNameByLocationCityID(ctx, s.cities["West Springfield"].ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWithinBox(t *testing.T) {
	db := dbtest.Open(t)
	seed(t, db)
	repo := NewLocationRepository(db)

	views, err := repo.WithinBox(context.Background(), Box{MinLat: 39, MaxLat: 40, MinLon: -90, MaxLon: -89}, 39.80, -89.64, 10)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "62701", views[0].ZipCode)

	views, err = repo.WithinBox(context.Background(), Box{MinLat: 39, MaxLat: 42, MinLon: 170, MaxLon: -88}, 41.88, -87.62, 10)
	require.NoError(t, err)
	assert.Len(t, views, 2)
}

func TestWithinBoxReturnsNearestFirstUnderLimit(t *testing.T) {
	db := dbtest.Open(t)
	seed(t, db)
	repo := NewLocationRepository(db)
	box := Box{MinLat: 39, MaxLat: 42, MinLon: -90, MaxLon: -87}

	// 62702 has the higher id, so an id-ordered limit would drop it
	views, err := repo.WithinBox(context.Background(), box, 39.83, -89.66, 1)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "62702", views[0].ZipCode)

	views, err = repo.WithinBox(context.Background(), box, 41.80, -87.70, 3)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, []string{"60601", "62702", "62701"}, []string{views[0].ZipCode, views[1].ZipCode, views[2].ZipCode})
}

func TestDeletingCountryCascades(t *testing.T) {
	db := dbtest.Open(t)
	s := seed(t, db)

	require.NoError(t, db.Delete(&gorm.Country{}, s.us.ID).Error)

	var n int64
	require.NoError(t, db.Model(&gorm.State{}).Where("country_id = ?", s.us.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&gorm.City{}).Where("state_id = ?", s.illinois.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&gorm.Location{}).Where("country_id = ?", s.us.ID).Count(&n).Error)
	assert.Zero(t, n)

	// the other country's rows are untouched
	require.NoError(t, db.Model(&gorm.Location{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestLocationRejectsUnknownCity(t *testing.T) {
	db := dbtest.Open(t)
	s := seed(t, db)

	err := db.Create(&gorm.Location{ZipCode: "00000", CityID: 9999, StateID: s.illinois.ID, CountryID: s.us.ID}).Error
	assert.Error(t, err)
}
