package dtos

// ListParams are the query parameters shared by every list endpoint.
type ListParams struct {
	Page     int
	PageSize int
	Search   string
	Ordering string
}

// CountryFilter narrows the country list.
type CountryFilter struct {
	ListParams
}

// StateFilter narrows the state list. Zero ids mean no filter.
type StateFilter struct {
	ListParams
	CountryID uint
}

// CityFilter narrows the city list. Search is ranked.
type CityFilter struct {
	ListParams
	StateID   uint
	CountryID uint
}

// LocationFilter narrows the location and zipcode lists. Name filters are
// case-insensitive contains matches; CityExact, when set, is an exact match
// on city name and replaces City.
type LocationFilter struct {
	ListParams
	City      string
	CityExact string
	State     string
	Country   string
	ZipCode   string
}

// NearbyParams are the validated inputs of a radius search.
type NearbyParams struct {
	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`
	RadiusKm  float64 `validate:"gt=0,lte=500"`
	Limit     int     `validate:"gte=1,lte=1000"`
}
