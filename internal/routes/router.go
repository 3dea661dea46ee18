package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"

	"infinite-experiment/gazetteer/internal/api"
	"infinite-experiment/gazetteer/internal/config"
	"infinite-experiment/gazetteer/internal/logging"
	"infinite-experiment/gazetteer/internal/middleware"
)

// RegisterRoutes builds the HTTP router. healthDB is pinged by the health
// check.
func RegisterRoutes(deps *api.Dependencies, healthDB *sqlx.DB, cfg *config.Configuration, upSince time.Time) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	logging.Info("Router initialized with metrics and logging middleware")
	// health check
	r.Get("/healthCheck", api.HealthCheckHandler(healthDB, upSince))

	handlers := api.NewHandlers(deps)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	RegisterAPIRoutes(r, handlers, deps, limiter, cfg.AdminJWTSecret)

	return r
}
