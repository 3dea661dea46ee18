package api

import (
	"net/http"
	"strconv"
	"time"

	"infinite-experiment/gazetteer/internal/common"
	"infinite-experiment/gazetteer/internal/constants"
	"infinite-experiment/gazetteer/internal/models/dtos"
)

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

// ListCountries handles GET /api/countries
func (h *Handlers) ListCountries() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		params, err := listParams(r)
		if err != nil {
			common.RespondError(w, initTime, err, "", http.StatusNotFound)
			return
		}

		listing, err := h.deps.Services.Geo.ListCountries(r.Context(), dtos.CountryFilter{ListParams: params})
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "", toPage(r, listing))
	}
}

// GetCountry handles GET /api/countries/{id}
func (h *Handlers) GetCountry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r)
		if err != nil {
			common.RespondError(w, initTime, err, "", http.StatusBadRequest)
			return
		}

		country, err := h.deps.Services.Geo.GetCountry(r.Context(), id)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "", country)
	}
}

// ListStates handles GET /api/states?country=
func (h *Handlers) ListStates() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		params, err := listParams(r)
		if err != nil {
			common.RespondError(w, initTime, err, "", http.StatusNotFound)
			return
		}
		countryID, err := idFilter(r, "country")
		if err != nil {
			common.RespondError(w, initTime, err, "", http.StatusBadRequest)
			return
		}

		listing, err := h.deps.Services.Geo.ListStates(r.Context(), dtos.StateFilter{ListParams: params, CountryID: countryID})
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "", toPage(r, listing))
	}
}

// GetState handles GET /api/states/{id}
func (h *Handlers) GetState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r)
		if err != nil {
			common.RespondError(w, initTime, err, "", http.StatusBadRequest)
			return
		}

		state, err := h.deps.Services.Geo.GetState(r.Context(), id)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "", state)
	}
}

// ListCities handles GET /api/cities?state=&country=&search=
func (h *Handlers) ListCities() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		params, err := listParams(r)
		if err != nil {
			common.RespondError(w, initTime, err, "", http.StatusNotFound)
			return
		}
		stateID, err := idFilter(r, "state")
		if err != nil {
			common.RespondError(w, initTime, err, "", http.StatusBadRequest)
			return
		}
		countryID, err := idFilter(r, "country")
		if err != nil {
			common.RespondError(w, initTime, err, "", http.StatusBadRequest)
			return
		}

		listing, err := h.deps.Services.Geo.ListCities(r.Context(), dtos.CityFilter{
			ListParams: params,
			StateID:    stateID,
			CountryID:  countryID,
		})
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "", toPage(r, listing))
	}
}

// GetCity handles GET /api/cities/{id}
func (h *Handlers) GetCity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r)
		if err != nil {
			common.RespondError(w, initTime, err, "", http.StatusBadRequest)
			return
		}

		city, err := h.deps.Services.Geo.GetCity(r.Context(), id)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "", city)
	}
}

func locationFilter(r *http.Request) (dtos.LocationFilter, error) {
	params, err := listParams(r)
	if err != nil {
		return dtos.LocationFilter{}, err
	}
	q := r.URL.Query()
	return dtos.LocationFilter{
		ListParams: params,
		City:       q.Get("city"),
		State:      q.Get("state"),
		Country:    q.Get("country"),
		ZipCode:    q.Get("zip_code"),
	}, nil
}

// ListLocations handles GET /api/locations
func (h *Handlers) ListLocations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		filter, err := locationFilter(r)
		if err != nil {
			common.RespondError(w, initTime, err, "", http.StatusNotFound)
			return
		}

		listing, err := h.deps.Services.Geo.ListLocations(r.Context(), filter)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "", toPage(r, listing))
	}
}

// ListZipCodes handles GET /api/zipcodes; city may be a name or a city id
func (h *Handlers) ListZipCodes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		filter, err := locationFilter(r)
		if err != nil {
			common.RespondError(w, initTime, err, "", http.StatusNotFound)
			return
		}

		listing, err := h.deps.Services.Geo.ListZipCodes(r.Context(), filter)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "", toPage(r, listing))
	}
}

// GetLocation handles GET /api/locations/{id} and /api/zipcodes/{id}
func (h *Handlers) GetLocation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r)
		if err != nil {
			common.RespondError(w, initTime, err, "", http.StatusBadRequest)
			return
		}

		location, err := h.deps.Services.Geo.GetLocation(r.Context(), id)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "", location)
	}
}

// NearbyLocations handles GET /api/locations/nearby?lat=&lon=&radius_km=&limit=
func (h *Handlers) NearbyLocations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		q := r.URL.Query()

		lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
		lon, lonErr := strconv.ParseFloat(q.Get("lon"), 64)
		if latErr != nil || lonErr != nil {
			common.RespondError(w, initTime, nil, constants.MsgInvalidNearby, http.StatusBadRequest)
			return
		}

		params := dtos.NearbyParams{Latitude: lat, Longitude: lon, RadiusKm: 25, Limit: 50}
		if raw := q.Get("radius_km"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				common.RespondError(w, initTime, nil, constants.MsgInvalidNearby, http.StatusBadRequest)
				return
			}
			params.RadiusKm = v
		}
		if raw := q.Get("limit"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				common.RespondError(w, initTime, nil, constants.MsgInvalidNearby, http.StatusBadRequest)
				return
			}
			params.Limit = v
		}

		resp, err := h.deps.Services.Geo.Nearby(r.Context(), params)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "", resp)
	}
}
