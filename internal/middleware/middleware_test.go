package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/gazetteer/internal/auth"
	"infinite-experiment/gazetteer/internal/constants"
	"infinite-experiment/gazetteer/internal/metrics"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "abc", seen)
}

func TestRateLimiterRejectsAfterBurst(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	h := rl.Middleware(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestAdminMiddlewareChain(t *testing.T) {
	secret := "s3cret"
	h := AdminAuthMiddleware(secret)(IsAdminMiddleware()(http.HandlerFunc(okHandler)))

	call := func(header string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	admin, _ := auth.IssueToken(secret, "ops", constants.RoleAdmin, time.Hour)
	reader, _ := auth.IssueToken(secret, "bob", constants.RoleReader, time.Hour)
	forged, _ := auth.IssueToken("wrong", "ops", constants.RoleAdmin, time.Hour)

	assert.Equal(t, http.StatusNoContent, call("Bearer "+admin))
	assert.Equal(t, http.StatusForbidden, call("Bearer "+reader))
	assert.Equal(t, http.StatusUnauthorized, call("Bearer "+forged))
	assert.Equal(t, http.StatusUnauthorized, call(""))

	disabled := AdminAuthMiddleware("")(http.HandlerFunc(okHandler))
	rec := httptest.NewRecorder()
	disabled.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(MetricsMiddleware(reg))
	r.Get("/api/countries/{id}", okHandler)

	for _, path := range []string{"/api/countries/1", "/api/countries/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	var m dto.Metric
	require.NoError(t, reg.HTTPRequestsTotal.WithLabelValues("/api/countries/{id}", http.MethodGet, "204").Write(&m))
	assert.Equal(t, 2.0, m.GetCounter().GetValue())
}
