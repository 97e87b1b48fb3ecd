package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	Service SchedulingService
	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Logger  zerolog.Logger
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Availability endpoints
	r.Get("/professionals/{id}/availability", listAvailabilityHandler(cfg.Service))
	r.Post("/professionals/{id}/availability", createAvailabilityHandler(cfg.Service))

	// Appointment endpoints
	r.Post("/appointments", bookAppointmentHandler(cfg.Service))
	r.Get("/appointments", listAppointmentsHandler(cfg.Service))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Service))
	r.Post("/appointments/{id}/reschedule", rescheduleHandler(cfg.Service))
	r.Post("/appointments/{id}/clinic-reschedule", clinicRescheduleHandler(cfg.Service))
	r.Post("/appointments/{id}/confirm", transitionHandler(cfg.Service.Confirm))
	r.Post("/appointments/{id}/check-in", transitionHandler(cfg.Service.CheckIn))
	r.Post("/appointments/{id}/complete", transitionHandler(cfg.Service.Complete))
	r.Post("/appointments/{id}/no-show", transitionHandler(cfg.Service.MarkNoShow))
	r.Post("/appointments/{id}/cancel", cancelHandler(cfg.Service))

	return r
}
