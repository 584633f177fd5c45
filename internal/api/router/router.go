// Package router wires the HTTP surface: public availability and booking
// endpoints, and JWT-protected admin endpoints.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/reservly/booking-platform/internal/booking"
	"github.com/reservly/booking-platform/internal/business"
	"github.com/reservly/booking-platform/internal/catalog"
	httpmiddleware "github.com/reservly/booking-platform/internal/http/middleware"
	"github.com/reservly/booking-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	BookingHandler  *booking.Handler
	CatalogHandler  *catalog.Handler
	ProfileHandler  *business.Handler
	AdminAuthSecret string
	MetricsHandler  http.Handler

	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (health checks, metrics)
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Tenant-scoped API routes
	if cfg.BookingHandler != nil {
		r.Group(func(tenant chi.Router) {
			tenant.Use(requireTenantID)

			tenant.Get("/availability", cfg.BookingHandler.GetAvailability)
			tenant.Route("/appointments", func(r chi.Router) {
				r.Post("/", cfg.BookingHandler.CreateAppointment)
				r.Get("/{appointmentID}", cfg.BookingHandler.GetAppointment)
				r.Delete("/{appointmentID}", cfg.BookingHandler.CancelAppointment)
			})
		})
	}

	// Admin routes (protected by JWT)
	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))

			admin.Route("/tenants/{tenantID}", func(tenantAdmin chi.Router) {
				if cfg.CatalogHandler != nil {
					tenantAdmin.Post("/branches", cfg.CatalogHandler.CreateBranch)
					tenantAdmin.Get("/branches", cfg.CatalogHandler.ListBranches)
					tenantAdmin.Get("/branches/{branchID}/employees", cfg.CatalogHandler.ListEmployees)
					tenantAdmin.Post("/services", cfg.CatalogHandler.CreateService)
					tenantAdmin.Get("/services", cfg.CatalogHandler.ListServices)
					tenantAdmin.Post("/employees", cfg.CatalogHandler.CreateEmployee)
					tenantAdmin.Post("/clients", cfg.CatalogHandler.CreateClient)
					tenantAdmin.Put("/employees/{employeeID}/exceptions/{date}", cfg.CatalogHandler.UpsertException)
				}
				if cfg.ProfileHandler != nil {
					tenantAdmin.Get("/profile", cfg.ProfileHandler.GetProfile)
					tenantAdmin.Put("/profile", cfg.ProfileHandler.PutProfile)
				}
			})
		})
	}

	return r
}
