package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hackgods/clinic-local-store/internal/clinic"
	"github.com/hackgods/clinic-local-store/internal/preferences"
	"github.com/hackgods/clinic-local-store/internal/session"
)

type RouterConfig struct {
	Clinic       *clinic.Service
	Session      *session.Store
	Preferences  *preferences.Store
	Dependencies []Dependency
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(middleware.Recoverer)

	health := NewHealthHandler(cfg.Dependencies, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Get("/doctors", listDoctorsHandler(cfg.Clinic))
	r.Get("/doctors/{id}/appointments", doctorAppointmentsHandler(cfg.Clinic))

	r.Route("/appointments", func(r chi.Router) {
		r.Get("/", listAppointmentsHandler(cfg.Clinic))
		r.Post("/", createAppointmentHandler(cfg.Clinic))
		r.Patch("/{id}", updateAppointmentHandler(cfg.Clinic))
		r.Delete("/{id}", deleteAppointmentHandler(cfg.Clinic))
	})

	r.Route("/session", func(r chi.Router) {
		r.Get("/", getSessionHandler(cfg.Session))
		r.Put("/", putSessionHandler(cfg.Session))
		r.Post("/search-history", addSearchTermHandler(cfg.Clinic))
		r.Delete("/search-history", clearSearchHistoryHandler(cfg.Clinic))
		r.Put("/last-page", setLastPageHandler(cfg.Session))
	})

	r.Route("/preferences", func(r chi.Router) {
		r.Get("/", getPreferencesHandler(cfg.Preferences))
		r.Put("/", putPreferencesHandler(cfg.Preferences))
		r.Patch("/{key}", setPreferenceHandler(cfg.Preferences))
	})

	return r
}
