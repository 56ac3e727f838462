package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wolfman30/seo-expert-api/internal/health"
	httpmiddleware "github.com/wolfman30/seo-expert-api/internal/http/middleware"
	"github.com/wolfman30/seo-expert-api/internal/leads"
	"github.com/wolfman30/seo-expert-api/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	HealthHandler      *health.Handler
	LeadsHandler       *leads.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// LeadLimiter throttles lead submission per client (optional)
	LeadLimiter httpmiddleware.Limiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/", cfg.HealthHandler.Root)
	r.Get("/test", cfg.HealthHandler.TestDatabase)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Get("/schema", cfg.LeadsHandler.Schema)
	r.Get("/leads", cfg.LeadsHandler.ListLeads)
	r.Group(func(submit chi.Router) {
		if cfg.LeadLimiter != nil {
			submit.Use(httpmiddleware.RateLimit(cfg.LeadLimiter, cfg.Logger))
		}
		submit.Post("/lead", cfg.LeadsHandler.CreateLead)
	})

	return r
}
