package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Availability AvailabilityService
	Appointments AppointmentService
	Messaging    MessagingService
	Health       *HealthHandler
	// Metrics serves /metrics; promhttp.Handler() when nil.
	Metrics            http.Handler
	Logger             *zap.Logger
	RateLimitPerSecond int
	CORSAllowedOrigins []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health endpoints
	if cfg.Health != nil {
		r.Get("/health/live", cfg.Health.Liveness)
		r.Get("/health/ready", cfg.Health.Readiness)
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	r.Handle("/metrics", metrics)

	r.Group(func(r chi.Router) {
		if cfg.RateLimitPerSecond > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimitPerSecond, time.Second))
		}

		// Availability and slot endpoints
		r.Get("/practitioners/{id}/availability", getAvailabilityHandler(cfg.Availability, log))
		r.Put("/practitioners/{id}/availability", setAvailabilityHandler(cfg.Availability, log))
		r.Get("/practitioners/{id}/slots", listSlotsHandler(cfg.Appointments, log))

		// Appointment endpoints
		r.Post("/appointments", bookAppointmentHandler(cfg.Appointments, log))
		r.Get("/appointments", listAppointmentsHandler(cfg.Appointments, log))
		r.Get("/appointments/{id}", getAppointmentHandler(cfg.Appointments, log))
		r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Appointments, log))
		r.Post("/appointments/{id}/complete", completeAppointmentHandler(cfg.Appointments, log))

		// Messaging endpoints
		if cfg.Messaging != nil {
			r.Get("/conversations", listConversationsHandler(cfg.Messaging, log))
			r.Get("/conversations/{counterpart}/messages", threadHandler(cfg.Messaging, log))
			r.Post("/conversations/{counterpart}/read", markReadHandler(cfg.Messaging, log))
			r.Post("/messages", sendMessageHandler(cfg.Messaging, log))
		}
	})

	return r
}
