package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the availability API. metricsHandler is optional; pass
// promhttp.Handler() to expose /metrics.
func NewRouter(s *Server, metricsHandler http.Handler, requestTimeout time.Duration) http.Handler {
	if requestTimeout <= 0 {
		requestTimeout = 10 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/v1/providers/{providerID}", func(r chi.Router) {
		r.Get("/availability", s.GetAvailability)
		r.Get("/availability/check", s.CheckSlot)

		r.Route("/schedule", func(r chi.Router) {
			r.Get("/", s.GetSchedule)
			r.Put("/", s.PutSchedule)
			r.Put("/exceptions", s.PutException)
			r.Delete("/exceptions", s.DeleteException)
			r.Put("/settings", s.PutSettings)
		})
	})

	return r
}
