package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/medbook-ai/scheduling-agent/internal/chat"
	httpmiddleware "github.com/medbook-ai/scheduling-agent/internal/http/middleware"
	"github.com/medbook-ai/scheduling-agent/internal/scheduling"
	"github.com/medbook-ai/scheduling-agent/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger            *logging.Logger
	ChatHandler       *chat.Handler
	SchedulingHandler *scheduling.Handler
	MetricsHandler    http.Handler
	AdminAuthSecret   string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Conversational entrypoint
	if cfg.ChatHandler != nil {
		r.Post("/chat", cfg.ChatHandler.Chat)
	}

	// Direct engine surface, same operations the agent's tools call
	if cfg.SchedulingHandler != nil {
		r.Route("/calendly", func(r chi.Router) {
			r.Get("/availability", cfg.SchedulingHandler.GetAvailability)
			r.Post("/book", cfg.SchedulingHandler.BookAppointment)
		})
	}

	// Admin routes (protected by HMAC JWT)
	if cfg.SchedulingHandler != nil && cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/appointments", cfg.SchedulingHandler.ListAppointments)
		})
	}

	return r
}
