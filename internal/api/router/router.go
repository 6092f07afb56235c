// Package router wires the HTTP surface onto a chi mux.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/healthcareplus/clinic-assistant/internal/http/handlers"
	httpmiddleware "github.com/healthcareplus/clinic-assistant/internal/http/middleware"
	"github.com/healthcareplus/clinic-assistant/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *handlers.ChatHandler
	AppointmentHandler *handlers.AppointmentHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/", handlers.Health)

	if cfg.ChatHandler != nil {
		r.Post("/chat", cfg.ChatHandler.Chat)
		r.Post("/reset", cfg.ChatHandler.Reset)
	}
	if cfg.AppointmentHandler != nil {
		r.Post("/schedule_appointment", cfg.AppointmentHandler.Schedule)
		r.Post("/save_appointment", cfg.AppointmentHandler.Save)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}
