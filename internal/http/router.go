package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tixgate/event-ticketing-backend/internal/domain"
	"github.com/tixgate/event-ticketing-backend/internal/observability"
	"github.com/tixgate/event-ticketing-backend/internal/rateLimit"
)

func SetupRouter(h *Handlers, logger observability.Logger, rl *rateLimit.RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)
	r.Use(MetricsMiddleware)

	r.Get("/v1/healthz", h.Healthz)
	r.Get("/v1/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Post("/v1/auth/register", h.Register)
	r.Post("/v1/auth/login", h.Login)

	r.Get("/v1/events", h.ListEvents)
	r.Get("/v1/events/{id}", h.GetEvent)
	r.Get("/v1/events/{id}/ratings", h.ListEventRatings)
	r.Get("/v1/categories", h.ListCategories)
	r.Get("/v1/locations", h.ListLocations)
	r.Get("/v1/promotions", h.ListPromotions)
	r.Get("/v1/promotions/{id}", h.GetPromotion)

	// Authenticated routes.
	r.Group(func(r chi.Router) {
		r.Use(JWTMiddleware(h.cfg.JWTSecret))
		r.Use(RateLimitMiddleware(rl))

		r.With(IdempotencyKeyRequired).Post("/v1/purchases", h.Purchase)
		r.Get("/v1/transactions", h.ListMyTransactions)
		r.Get("/v1/transactions/{id}", h.GetTransaction)
		r.Get("/v1/transactions/{id}/tickets", h.GetTransactionTickets)
		r.Post("/v1/transactions/{id}/proof", h.UploadPaymentProof)

		r.Post("/v1/events/{id}/ratings", h.CreateRating)
		r.Put("/v1/ratings/{id}", h.UpdateRating)
		r.Delete("/v1/ratings/{id}", h.DeleteRating)

		// Organizer-only management surface.
		r.Group(func(r chi.Router) {
			r.Use(RequireRole(domain.RoleOrganizer))

			r.Post("/v1/events", h.CreateEvent)
			r.Put("/v1/events/{id}", h.UpdateEvent)
			r.Delete("/v1/events/{id}", h.DeleteEvent)

			r.Post("/v1/categories", h.CreateCategory)
			r.Delete("/v1/categories/{id}", h.DeleteCategory)
			r.Post("/v1/locations", h.CreateLocation)
			r.Delete("/v1/locations/{id}", h.DeleteLocation)

			r.Post("/v1/promotions", h.CreatePromotion)
			r.Put("/v1/promotions/{id}", h.UpdatePromotion)
			r.Delete("/v1/promotions/{id}", h.DeletePromotion)

			r.Post("/v1/transactions/{id}/confirm", h.ConfirmPayment)
		})
	})

	return r
}
