package importer

import (
	"go.uber.org/zap"

	gormModels "infinite-experiment/gazetteer/internal/models/gorm"
	"infinite-experiment/gazetteer/internal/source"
)

// Tier names used in logs, metrics and DroppedCounts.
const (
	TierCountries = "countries"
	TierStates    = "states"
	TierCities    = "cities"
	TierLocations = "locations"
)

// sourceCityKey identifies a city by name and source state id. Matching is
// case-sensitive.
type sourceCityKey struct {
	name    string
	stateID int64
}

// persistedCityKey identifies an inserted city by name and destination
// state id.
type persistedCityKey struct {
	name    string
	stateID uint
}

// DroppedCounts is the number of source rows skipped per tier because a
// parent reference could not be resolved.
type DroppedCounts struct {
	States    int `json:"states"`
	Cities    int `json:"cities"`
	Locations int `json:"locations"`
}

// Total returns the number of dropped rows across all tiers.
func (d DroppedCounts) Total() int {
	return d.States + d.Cities + d.Locations
}

// Normalizer turns flat source rows into the Country, State, City and
// Location graph. It keeps the source id to entity maps for one run and is
// not safe for concurrent use.
//
// Countries and states are mapped to pointers, so ids filled in by the
// insert are visible to the next tier without a lookup.
type Normalizer struct {
	log *zap.SugaredLogger

	countries map[int64]*gormModels.Country
	states    map[int64]*gormModels.State
	citySeen  map[sourceCityKey]struct{}
	cityIDs   map[persistedCityKey]uint

	dropped DroppedCounts
}

// NewNormalizer returns an empty normalizer that warns through log.
func NewNormalizer(log *zap.SugaredLogger) *Normalizer {
	return &Normalizer{
		log:       log,
		countries: make(map[int64]*gormModels.Country),
		states:    make(map[int64]*gormModels.State),
		citySeen:  make(map[sourceCityKey]struct{}),
		cityIDs:   make(map[persistedCityKey]uint),
	}
}

// Dropped returns the per-tier drop counts so far.
func (n *Normalizer) Dropped() DroppedCounts {
	return n.dropped
}

// Countries creates one Country per source row. Rows are not deduplicated;
// two source rows with the same name become two countries.
func (n *Normalizer) Countries(rows []source.CountryRow) []*gormModels.Country {
	out := make([]*gormModels.Country, 0, len(rows))
	for _, row := range rows {
		c := &gormModels.Country{
			Name:   row.Name.String,
			Alpha2: row.Alpha2.String,
			Alpha3: row.Alpha3.String,
		}
		n.countries[row.ID] = c
		out = append(out, c)
	}
	return out
}

// States resolves each row's country through the country map. Countries
// must already be inserted so their ids are set.
func (n *Normalizer) States(rows []source.StateRow) []*gormModels.State {
	out := make([]*gormModels.State, 0, len(rows))
	for _, row := range rows {
		country, ok := n.countries[row.CountryID.Int64]
		if !row.CountryID.Valid || !ok {
			n.dropped.States++
			n.log.Warnw("Country not found for state",
				"state", row.Name.String,
				"source_state_id", row.ID,
				"source_country_id", row.CountryID.Int64,
			)
			continue
		}

		s := &gormModels.State{
			Name:         row.Name.String,
			Abbreviation: row.Abbr.String,
			CountryID:    country.ID,
		}
		n.states[row.ID] = s
		out = append(out, s)
	}
	return out
}

// City returns the City for a distinct (city, state_id) pair, or false if
// the state is unknown or the pair was already seen this run.
func (n *Normalizer) City(pair source.CityPairRow) (*gormModels.City, bool) {
	state, ok := n.states[pair.StateID]
	if !ok {
		n.dropped.Cities++
		n.log.Warnw("State not found for city",
			"city", pair.City,
			"source_state_id", pair.StateID,
		)
		return nil, false
	}

	key := sourceCityKey{name: pair.City, stateID: pair.StateID}
	if _, seen := n.citySeen[key]; seen {
		return nil, false
	}
	n.citySeen[key] = struct{}{}

	return &gormModels.City{Name: pair.City, StateID: state.ID}, true
}

// IndexCity records a persisted city so Location can resolve it.
func (n *Normalizer) IndexCity(c gormModels.City) {
	n.cityIDs[persistedCityKey{name: c.Name, stateID: c.StateID}] = c.ID
}

// Location resolves a zip row's state and city. The country is always
// copied from the resolved state.
func (n *Normalizer) Location(row source.ZipRow) (*gormModels.Location, bool) {
	state, ok := n.states[row.StateID]
	if !ok {
		n.dropped.Locations++
		n.log.Warnw("State not found for location",
			"zip_code", row.Code,
			"city", row.City,
			"source_state_id", row.StateID,
		)
		return nil, false
	}

	cityID, ok := n.cityIDs[persistedCityKey{name: row.City, stateID: state.ID}]
	if !ok {
		n.dropped.Locations++
		n.log.Warnw("City not found for location",
			"zip_code", row.Code,
			"city", row.City,
			"source_state_id", row.StateID,
		)
		return nil, false
	}

	return &gormModels.Location{
		CityID:    cityID,
		StateID:   state.ID,
		CountryID: state.CountryID,
		ZipCode:   row.Code,
		Latitude:  nullableFloat(row.Lat.Float64, row.Lat.Valid),
		Longitude: nullableFloat(row.Lon.Float64, row.Lon.Valid),
	}, true
}

func nullableFloat(v float64, valid bool) *float64 {
	if !valid {
		return nil
	}
	return &v
}
