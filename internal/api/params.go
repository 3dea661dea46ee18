package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"infinite-experiment/gazetteer/internal/common"
	"infinite-experiment/gazetteer/internal/constants"
	"infinite-experiment/gazetteer/internal/models/dtos"
	"infinite-experiment/gazetteer/internal/services"
)

var (
	errInvalidID     = errors.New(constants.MsgInvalidID)
	errInvalidPage   = errors.New(constants.MsgInvalidPage)
	errInvalidFilter = errors.New(constants.MsgInvalidFilter)
)

// pathID reads the {id} URL parameter.
func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}

// listParams reads page, page_size, search and ordering. A malformed
// page is an error; a malformed page_size falls back to the default.
func listParams(r *http.Request) (dtos.ListParams, error) {
	q := r.URL.Query()
	p := dtos.ListParams{
		Page:     1,
		Search:   q.Get("search"),
		Ordering: q.Get("ordering"),
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return p, errInvalidPage
		}
		p.Page = page
	}
	if raw := q.Get("page_size"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil && size > 0 {
			p.PageSize = size
		}
	}
	return p, nil
}

// idFilter reads an optional integer filter; absent means 0.
func idFilter(r *http.Request, name string) (uint, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errInvalidFilter
	}
	return uint(id), nil
}

func pageURL(r *http.Request, page int) *string {
	u := url.URL{Scheme: "http", Host: r.Host, Path: r.URL.Path}
	if r.TLS != nil {
		u.Scheme = "https"
	}

	q := r.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()

	s := u.String()
	return &s
}

// toPage shapes a listing into the paginated response body.
func toPage[T any](r *http.Request, l *services.Listing[T]) dtos.Page[T] {
	totalPages := common.TotalPages(l.Total, l.PageSize)
	page := dtos.Page[T]{
		Count:      l.Total,
		Page:       l.Page,
		PageSize:   l.PageSize,
		TotalPages: totalPages,
		Results:    l.Results,
	}
	if page.Results == nil {
		page.Results = []T{}
	}
	if l.Page < totalPages {
		page.Next = pageURL(r, l.Page+1)
	}
	if l.Page > 1 {
		page.Previous = pageURL(r, l.Page-1)
	}
	return page
}
