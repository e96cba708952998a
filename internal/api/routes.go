package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardstats/cardstats/internal/errors"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(securityHeadersMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, errors.NewNotFoundError("route", r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())

	r.Route("/stats", func(r chi.Router) {
		r.Get("/", s.handleOverview)
		r.Get("/first-found/most", s.handleMostFirst)
		r.Get("/first-found/least", s.handleLeastFirst)
		r.Get("/last-found/most", s.handleMostLast)
		r.Get("/last-found/least", s.handleLeastLast)
		r.Get("/daily", s.handleDaily)
		r.Get("/weekly", s.handleWeekly)
	})

	r.Route("/rankings", func(r chi.Router) {
		r.Post("/", s.handleSubmitRanking)
		r.Get("/", s.handleListRankings)
	})

	return r
}
