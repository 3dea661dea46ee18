package dtos

// APIResponse is the envelope every endpoint responds with.
type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ResponseTime string `json:"response_time"`
	Data         any    `json:"data,omitempty"`
}

// Page is one page of a list endpoint. Next and Previous are absolute
// request URLs, or null at either end.
type Page[T any] struct {
	Count      int64   `json:"count"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalPages int     `json:"total_pages"`
	Next       *string `json:"next"`
	Previous   *string `json:"previous"`
	Results    []T     `json:"results"`
}

// LocationView is a location with its parents' names flattened in.
type LocationView struct {
	ID          uint     `json:"id"`
	ZipCode     string   `json:"zip_code"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	CityID      uint     `json:"city"`
	StateID     uint     `json:"state"`
	CountryID   uint     `json:"country"`
	CityName    string   `json:"city_name"`
	StateName   string   `json:"state_name"`
	CountryName string   `json:"country_name"`
}

// NearbyLocation is a LocationView with its great-circle distance from the
// query point.
type NearbyLocation struct {
	LocationView
	DistanceKm float64 `json:"distance_km"`
}

// NearbyResponse lists locations within a radius, closest first.
type NearbyResponse struct {
	Latitude  float64          `json:"lat"`
	Longitude float64          `json:"lon"`
	RadiusKm  float64          `json:"radius_km"`
	Results   []NearbyLocation `json:"results"`
}
