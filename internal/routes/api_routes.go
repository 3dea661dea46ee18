package routes

import (
	"github.com/go-chi/chi/v5"

	"infinite-experiment/gazetteer/internal/api"
	"infinite-experiment/gazetteer/internal/middleware"
)

// RegisterAPIRoutes registers the read API and the admin routes
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers, deps *api.Dependencies, limiter *middleware.RateLimiter, adminSecret string) {

	// Public read API
	r.Route("/api", func(public chi.Router) {
		public.Use(middleware.InFlightMiddleware(deps.Metrics, "api"))
		public.Use(limiter.Middleware)

		public.Get("/countries", handlers.ListCountries())
		public.Get("/countries/{id}", handlers.GetCountry())

		public.Get("/states", handlers.ListStates())
		public.Get("/states/{id}", handlers.GetState())

		public.Get("/cities", handlers.ListCities())
		public.Get("/cities/{id}", handlers.GetCity())

		public.Get("/locations", handlers.ListLocations())
		public.Get("/locations/nearby", handlers.NearbyLocations())
		public.Get("/locations/{id}", handlers.GetLocation())

		public.Get("/zipcodes", handlers.ListZipCodes())
		public.Get("/zipcodes/{id}", handlers.GetLocation())

		// Admin routes
		public.Route("/v1/admin", func(admin chi.Router) {
			admin.Use(middleware.AdminAuthMiddleware(adminSecret))
			admin.Use(middleware.IsAdminMiddleware())
			admin.Post("/import", handlers.TriggerImport())
		})
	})
}
