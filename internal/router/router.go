package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	authHandler *handler.AuthHandler,
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	activityHandler *handler.ActivityHandler,
	analyticsHandler *handler.AnalyticsHandler,
	auth middleware.Authenticator,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Apply middleware in order: Recovery -> Logging -> CORS -> RequestMeta -> Session
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	r.Use(middleware.RequestMeta)
	r.Use(middleware.Session(auth, logger))

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Get("/categories", productHandler.ListCategories)
		r.Get("/products", productHandler.List)

		// low-stock must register before {id} so chi does not treat it as an ID
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/products/low-stock", productHandler.LowStock)
		})
		r.Get("/products/{id}", productHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/auth/me", authHandler.Me)

			r.Post("/orders", orderHandler.Create)
			r.Get("/orders", orderHandler.List)
			r.Get("/orders/{id}", orderHandler.Get)
			r.Delete("/orders/{id}/cancel", orderHandler.Cancel)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Post("/categories", productHandler.CreateCategory)
			r.Post("/products", productHandler.Create)
			r.Put("/products/{id}", productHandler.Update)
			r.Delete("/products/{id}", productHandler.Delete)

			r.Get("/orders/admin/all", orderHandler.ListAll)
			r.Patch("/orders/{id}/status", orderHandler.UpdateStatus)

			r.Get("/activity", activityHandler.List)
			r.Get("/analytics/daily-sales", analyticsHandler.DailySales)
		})
	})

	return r
}
