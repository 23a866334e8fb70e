package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", h.HealthCheck)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", h.GetDashboard)
			r.Post("/refresh", h.RefreshDashboard)
			r.Post("/reset", h.ResetDashboard)
			r.Route("/filters", func(r chi.Router) {
				r.Put("/date-range", h.SetDateRange)
				r.Put("/account", h.SetSelectedAccount)
				r.Put("/email", h.SetSelectedEmail)
			})
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.ListAccounts)
			r.Post("/", h.CreateAccount)
			r.Get("/compare", h.CompareAccounts)
			r.Route("/{accountID}", func(r chi.Router) {
				r.Get("/", h.GetAccount)
				r.Put("/", h.UpdateAccount)
				r.Delete("/", h.DeleteAccount)
				r.Get("/webhook", h.GetAccountWebhook)
			})
		})

		r.Route("/emails", func(r chi.Router) {
			r.Get("/", h.ListEmails)
			r.Get("/search/suggestions", h.SearchEmailSuggestions)
			r.Get("/{emailID}", h.GetEmail)
		})

		r.Get("/events", h.GetEvents)
	})

	return r
}
