package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers, health *HealthChecker, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", health.HandleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.ListCustomers)
			r.Post("/", h.CreateCustomer)
			r.Get("/{id}", h.GetCustomer)
			r.Put("/{id}", h.UpdateCustomer)
			r.Delete("/{id}", h.DeleteCustomer)
		})

		r.Route("/segments", func(r chi.Router) {
			r.Get("/", h.ListSegments)
			r.Post("/", h.CreateSegment)
			r.Get("/{id}", h.GetSegment)
			r.Put("/{id}", h.UpdateSegment)
			r.Delete("/{id}", h.DeleteSegment)
			r.Get("/{id}/customers", h.GetSegmentCustomers)
			r.Get("/{id}/preview", h.PreviewSegment)
			r.Post("/{id}/export", h.ExportSegment)
		})

		r.Route("/flows", func(r chi.Router) {
			r.Get("/", h.ListFlows)
			r.Post("/", h.CreateFlow)
			r.Get("/{id}", h.GetFlow)
			r.Put("/{id}", h.UpdateFlow)
			r.Delete("/{id}", h.DeleteFlow)
			r.Get("/{id}/steps/{step}/render", h.RenderFlowStep)
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", h.ListCampaigns)
			r.Post("/", h.CreateCampaign)
			r.Get("/{id}", h.GetCampaign)
			r.Put("/{id}", h.UpdateCampaign)
			r.Delete("/{id}", h.DeleteCampaign)
			r.Post("/{id}/enroll", h.EnrollCampaign)
			r.Get("/{id}/enrolled_customers", h.GetEnrolledCustomers)
		})

		r.Post("/generate", h.GenerateProposal)
	})

	return r
}
